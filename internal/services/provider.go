package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/codyseavey/tcg-search/internal/models"
)

// DefaultUpstreamTimeout bounds a single upstream attempt
const DefaultUpstreamTimeout = 8 * time.Second

// Provider is one external card data source
type Provider interface {
	Name() models.ProviderName
	// MaxLimit is the largest result count the provider will be asked for.
	MaxLimit() int
	Search(ctx context.Context, q models.SearchQuery) (ProviderResponse, error)
}

// ProviderResponse is an upstream payload tagged with the provider that
// produced it. The concrete types are *TCGResponse and *PriceTrackerResponse.
type ProviderResponse interface {
	Provider() models.ProviderName
	// Raw returns the upstream body exactly as it was received.
	Raw() []byte
	// Cards normalizes the payload into the shared card shape.
	Cards() ([]models.Card, error)

	isProviderResponse()
}

// transportError turns a failed round trip into a gateway timeout. Network
// failures are reported the same way since no upstream answer was received.
func transportError(provider models.ProviderName, err error) *SearchError {
	msg := "upstream unreachable"
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		msg = "upstream request timed out"
	}
	return &SearchError{
		Kind:     KindTimeout,
		Status:   http.StatusGatewayTimeout,
		Provider: provider,
		Message:  msg,
		Err:      err,
	}
}
