package search

import (
	"bytes"
	"datasources-client/internal/api"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Params identify a search. Two searches are the same search when their JSON
// encodings are equal, so field order here is part of the cache key.
type Params struct {
	LocationID       string   `json:"location_id"`
	RecordCategories []string `json:"record_categories,omitempty"`
}

func (p Params) cacheKey() (string, error) {
	key, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(key), nil
}

// ID is an identifier the API sometimes sends as a number and sometimes as a string.
type ID string

func (i *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		err := json.Unmarshal(data, &s)
		if err != nil {
			return err
		}
		*i = ID(s)
		return nil
	}
	var n json.Number
	err := json.Unmarshal(data, &n)
	if err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*i = ID(n.String())
	return nil
}

// Same compares two ids numerically when both are integers, textually otherwise.
func (i ID) Same(other string) bool {
	a := strings.TrimSpace(string(i))
	b := strings.TrimSpace(other)
	an, aerr := strconv.ParseInt(a, 10, 64)
	bn, berr := strconv.ParseInt(b, 10, 64)
	if aerr == nil && berr == nil {
		return an == bn
	}
	return a == b
}

type Record struct {
	ID             ID     `json:"id"`
	DataSourceName string `json:"data_source_name"`
	Description    string `json:"description"`
	RecordType     string `json:"record_type"`
	SourceURL      string `json:"source_url"`
	AgencyName     string `json:"agency_name"`
	Jurisdiction   string `json:"jurisdiction_type"`
}

type ResultGroup struct {
	Count   int      `json:"count"`
	Results []Record `json:"results"`
}

// Results is the body of a search response, grouped by jurisdiction
// (federal, state, county, locality).
type Results struct {
	Count int                    `json:"count"`
	Data  map[string]ResultGroup `json:"data"`
}

func DecodeResults(res *api.Response) (Results, error) {
	return api.Decode[Results](res)
}

// FollowedSearch is a location the signed in user follows.
type FollowedSearch struct {
	LocationID   ID     `json:"location_id"`
	StateName    string `json:"state_name"`
	CountyName   string `json:"county_name"`
	LocalityName string `json:"locality_name"`
}

type followedPage struct {
	Metadata struct {
		Count int `json:"count"`
	} `json:"metadata"`
	Data []FollowedSearch `json:"data"`
}

func DecodeFollowed(res *api.Response) ([]FollowedSearch, error) {
	page, err := api.Decode[followedPage](res)
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

// FollowLookup is the outcome of looking up a single followed search.
type FollowLookup int

const (
	FollowUnknown FollowLookup = iota
	// FollowUnauthenticated means nobody is signed in, no request was made.
	FollowUnauthenticated
	// FollowLookupFailed means the followed searches could not be fetched.
	FollowLookupFailed
	FollowNotFound
	FollowFound
)

func (l FollowLookup) String() string {
	switch l {
	case FollowUnauthenticated:
		return "unauthenticated"
	case FollowLookupFailed:
		return "lookup failed"
	case FollowNotFound:
		return "not found"
	case FollowFound:
		return "found"
	}
	return "unknown"
}
