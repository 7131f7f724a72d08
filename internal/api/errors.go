package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ResponseError is returned for every response outside of the 2xx range.
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the best human readable explanation found in the body.
	Message  string
	Response *Response
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// StatusCode returns the status code of err if it is (or wraps) a *ResponseError,
// 0 otherwise.
func StatusCode(err error) int {
	var resErr *ResponseError
	if errors.As(err, &resErr) {
		return resErr.StatusCode
	}
	return 0
}

func newResponseError(method, path string, res *Response) *ResponseError {
	return &ResponseError{
		Method:     method,
		Path:       path,
		StatusCode: res.StatusCode,
		Message:    errorMessage(res),
		Response:   res,
	}
}

// errorMessage looks for a `message` (or `error`) field in a JSON body, then for the
// <title> of an HTML error page (what proxies in front of the API return), and falls
// back to the status text.
func errorMessage(res *Response) string {
	contentType := res.Header.Get("Content-Type")

	if len(res.Body) > 0 && !strings.Contains(contentType, "text/html") {
		var body struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(res.Body, &body) == nil {
			if body.Message != "" {
				return body.Message
			}
			if body.Error != "" {
				return body.Error
			}
		}
	}

	if strings.Contains(contentType, "text/html") {
		doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body))
		if err == nil {
			title := strings.TrimSpace(doc.Find("title").First().Text())
			if title != "" {
				return title
			}
		}
	}

	text := http.StatusText(res.StatusCode)
	if text == "" {
		return "unexpected status"
	}
	return text
}
