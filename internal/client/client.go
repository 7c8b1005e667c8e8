// Package client is the consumer side of the search proxy: it issues
// searches, classifies failures into user-facing messages, and tracks the
// loading/result/error state of a search form.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/codyseavey/tcg-search/internal/models"
)

const defaultTimeout = 30 * time.Second

type ErrorKind string

const (
	// KindNoResponse means the request never got an answer: the user's
	// connection or the proxy itself is down.
	KindNoResponse ErrorKind = "no_response"
	// KindServer means the proxy answered with an error status.
	KindServer     ErrorKind = "server"
	KindUnexpected ErrorKind = "unexpected"
)

// Error is a classified search failure
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage(), e.Err)
	}
	return e.UserMessage()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown to the user for this failure
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindNoResponse:
		return "No response from the server. Check your connection and try again."
	case KindServer:
		if e.Message != "" {
			return fmt.Sprintf("Server error (%d): %s", e.Status, e.Message)
		}
		return fmt.Sprintf("Server error (%d)", e.Status)
	default:
		return "Something went wrong while searching. Please try again."
	}
}

// ProxyClient calls the search proxy over HTTP
type ProxyClient struct {
	client *resty.Client
}

func NewProxyClient(baseURL string, timeout time.Duration) *ProxyClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")
	return &ProxyClient{client: client}
}

type errorEnvelope struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Status int    `json:"status"`
}

// Search runs q against the proxy. Every error it returns is an *Error.
func (c *ProxyClient) Search(ctx context.Context, q models.SearchQuery) (*models.CardSearchResult, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(q.Values()).
		Get("/api/search")
	if err != nil {
		return nil, &Error{Kind: KindNoResponse, Err: err}
	}

	if resp.IsError() {
		var env errorEnvelope
		if err := json.Unmarshal(resp.Body(), &env); err != nil || env.Error == "" {
			return nil, &Error{Kind: KindServer, Status: resp.StatusCode(), Message: resp.Status()}
		}
		return nil, &Error{Kind: KindServer, Status: resp.StatusCode(), Message: env.Error}
	}
	if !resp.IsSuccess() {
		return nil, &Error{Kind: KindUnexpected, Status: resp.StatusCode(), Message: resp.Status()}
	}

	var result models.CardSearchResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, &Error{Kind: KindUnexpected, Status: resp.StatusCode(), Err: err}
	}
	return &result, nil
}
