package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/codyseavey/tcg-search/internal/models"
)

// ErrorKind classifies why a search could not be answered
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindRateLimited   ErrorKind = "rate_limited"
	KindAuth          ErrorKind = "auth"
	KindUpstream      ErrorKind = "upstream"
	KindTimeout       ErrorKind = "timeout"
	KindConfiguration ErrorKind = "configuration"
)

// maxErrorBodyLen bounds how much of an upstream error body is kept for diagnostics
const maxErrorBodyLen = 256

var (
	ErrMissingCredential = errors.New("pricetracker API key is not configured")
	ErrUnknownProvider   = errors.New("provider must be 'tcg' or 'pricetracker'")
)

// SearchError is returned for every failed search. Status is the HTTP status
// the proxy answers with; for upstream failures it is the upstream status.
type SearchError struct {
	Kind     ErrorKind
	Status   int
	Provider models.ProviderName
	Message  string
	Body     string // truncated upstream body, credential redacted
	Err      error
}

func (e *SearchError) Error() string {
	msg := e.Message
	if e.Provider != "" {
		msg = fmt.Sprintf("%s: %s", e.Provider, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// AsSearchError extracts a *SearchError from err, if there is one.
func AsSearchError(err error) (*SearchError, bool) {
	var se *SearchError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsTransient reports whether err is worth retrying: an upstream 5xx or a
// timeout. Rate limits, auth problems and bad input are not.
func IsTransient(err error) bool {
	se, ok := AsSearchError(err)
	if !ok {
		return false
	}
	switch se.Kind {
	case KindTimeout:
		return true
	case KindUpstream:
		return se.Status >= http.StatusInternalServerError
	default:
		return false
	}
}

func validationError(err error) *SearchError {
	return &SearchError{
		Kind:    KindValidation,
		Status:  http.StatusBadRequest,
		Message: err.Error(),
		Err:     err,
	}
}

// classifyStatus maps a non-2xx upstream status onto a SearchError. The
// caller decides separately whether a 404 is an empty success.
func classifyStatus(provider models.ProviderName, status int, body []byte, secret string) *SearchError {
	se := &SearchError{
		Status:   status,
		Provider: provider,
		Body:     truncateBody(body, secret),
	}

	switch {
	case status == http.StatusNotFound:
		se.Kind = KindNotFound
		se.Message = "no cards matched the query"
	case status == http.StatusTooManyRequests:
		se.Kind = KindRateLimited
		se.Message = "upstream rate limit reached, try again later"
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		se.Kind = KindAuth
		se.Message = "upstream rejected the API credential"
	default:
		se.Kind = KindUpstream
		se.Message = fmt.Sprintf("upstream returned status %d", status)
	}
	return se
}

func truncateBody(body []byte, secret string) string {
	s := string(body)
	if secret != "" {
		s = strings.ReplaceAll(s, secret, "[redacted]")
	}
	if len(s) > maxErrorBodyLen {
		cut := maxErrorBodyLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}
