package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

var (
	// ErrUnauthenticated is returned by wrappers that need an access token when
	// nobody is signed in.
	ErrUnauthenticated = errors.New("not signed in")
	// ErrNoUser is returned by wrappers that need the current user's id when no
	// user profile is loaded.
	ErrNoUser = errors.New("no user loaded")
)

// Authorization is the value of the `Authorization` header for one request.
// The zero value sends no header.
type Authorization struct {
	header string
}

// NoAuth sends no `Authorization` header.
func NoAuth() Authorization {
	return Authorization{}
}

// Bearer sends `Authorization: Bearer <token>`.
func Bearer(token string) Authorization {
	return Authorization{header: "Bearer " + token}
}

// AdminBasic sends the configured administrative key as `Authorization: Basic <key>`.
// The key is sent as-is, the API does not expect a base64 user:password pair.
func (c *Client) AdminBasic() Authorization {
	return Authorization{header: "Basic " + c.apiKey}
}

// Header returns the rendered header value.
func (a Authorization) Header() string {
	return a.header
}

type Request struct {
	Method string
	// Path is relative to the client's base url, ex. `/auth/login`.
	Path  string
	Auth  Authorization
	Query url.Values
	// Body is marshalled to JSON when non-nil.
	Body any
}

// Response is the raw response handed back by the wrappers that do not fold
// their results into a store.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into out.
func (r *Response) Decode(out any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("decode response: empty body")
	}
	err := json.Unmarshal(r.Body, out)
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Decode is a generic helper around (*Response).Decode.
func Decode[T any](r *Response) (T, error) {
	var out T
	err := r.Decode(&out)
	return out, err
}
