package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/codyseavey/tcg-search/internal/metrics"
	"github.com/codyseavey/tcg-search/internal/models"
)

const (
	pokemonPriceTrackerBaseURL  = "https://www.pokemonpricetracker.com/api/v2"
	pokemonPriceTrackerMaxLimit = 20
	// DefaultPriceTrackerDailyLimit matches the free tier quota
	DefaultPriceTrackerDailyLimit = 100
)

// PokemonPriceTrackerService searches the keyed price tracker API. Its
// quota is tiny, so requests are also metered locally.
type PokemonPriceTrackerService struct {
	client     *resty.Client
	apiKey     string
	timeout    time.Duration
	dailyLimit int
	limiter    *rate.Limiter
}

func NewPokemonPriceTrackerService(apiKey string, dailyLimit int, timeout time.Duration) *PokemonPriceTrackerService {
	return newPokemonPriceTrackerService(pokemonPriceTrackerBaseURL, apiKey, dailyLimit, timeout)
}

func newPokemonPriceTrackerService(baseURL, apiKey string, dailyLimit int, timeout time.Duration) *PokemonPriceTrackerService {
	if dailyLimit <= 0 {
		dailyLimit = DefaultPriceTrackerDailyLimit
	}
	if timeout <= 0 {
		timeout = DefaultUpstreamTimeout
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")

	metrics.PriceTrackerQuotaLimit.Set(float64(dailyLimit))
	metrics.PriceTrackerQuotaRemaining.Set(float64(dailyLimit))

	return &PokemonPriceTrackerService{
		client:     client,
		apiKey:     apiKey,
		timeout:    timeout,
		dailyLimit: dailyLimit,
		// Refill evenly across the day, with the whole daily quota as burst.
		limiter: rate.NewLimiter(rate.Every(24*time.Hour/time.Duration(dailyLimit)), dailyLimit),
	}
}

func (s *PokemonPriceTrackerService) Name() models.ProviderName {
	return models.ProviderPriceTracker
}

func (s *PokemonPriceTrackerService) MaxLimit() int {
	return pokemonPriceTrackerMaxLimit
}

// GetDailyLimit returns the configured daily request ceiling
func (s *PokemonPriceTrackerService) GetDailyLimit() int {
	return s.dailyLimit
}

// GetRequestsRemaining returns how many requests the local budget still allows
func (s *PokemonPriceTrackerService) GetRequestsRemaining() int {
	remaining := int(s.limiter.Tokens())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *PokemonPriceTrackerService) Search(ctx context.Context, q models.SearchQuery) (ProviderResponse, error) {
	if s.apiKey == "" {
		return nil, &SearchError{
			Kind:     KindConfiguration,
			Status:   http.StatusInternalServerError,
			Provider: models.ProviderPriceTracker,
			Message:  "server is missing its pricetracker credential",
			Err:      ErrMissingCredential,
		}
	}

	if !s.limiter.Allow() {
		return nil, &SearchError{
			Kind:     KindRateLimited,
			Status:   http.StatusTooManyRequests,
			Provider: models.ProviderPriceTracker,
			Message:  "daily pricetracker request budget exhausted",
		}
	}
	metrics.PriceTrackerQuotaRemaining.Set(float64(s.GetRequestsRemaining()))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.apiKey).
		SetQueryParamsFromValues(priceTrackerParams(q)).
		Get("/cards")
	if err != nil {
		return nil, transportError(models.ProviderPriceTracker, err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, classifyStatus(models.ProviderPriceTracker, resp.StatusCode(), resp.Body(), s.apiKey)
	}

	return &PriceTrackerResponse{body: resp.Body()}, nil
}

// priceTrackerParams maps the query onto the upstream dialect. It happens to
// share parameter names with the proxy, minus the provider selector.
func priceTrackerParams(q models.SearchQuery) url.Values {
	params := q.Values()
	params.Del("provider")
	params.Set("limit", strconv.Itoa(q.Limit))
	return params
}

// PriceTrackerResponse is a payload from the keyed price tracker API
type PriceTrackerResponse struct {
	body []byte
}

func NewPriceTrackerResponse(body []byte) *PriceTrackerResponse {
	return &PriceTrackerResponse{body: body}
}

func (r *PriceTrackerResponse) Provider() models.ProviderName { return models.ProviderPriceTracker }
func (r *PriceTrackerResponse) Raw() []byte                   { return r.body }
func (r *PriceTrackerResponse) isProviderResponse()           {}

type pptSearchResponse struct {
	Data []pptCard `json:"data"`
}

type pptCard struct {
	Prices       *pptPrices        `json:"prices"`
	PriceHistory []pptHistoryPoint `json:"priceHistory"`
	ID           string            `json:"id"`
	TCGPlayerID  string            `json:"tcgPlayerId"`
	Name         string            `json:"name"`
	SetName      string            `json:"setName"`
	SetID        string            `json:"setId"`
	CardNumber   string            `json:"cardNumber"`
	Rarity       string            `json:"rarity"`
	ImageURL     string            `json:"imageUrl"`
	ImageCdnUrl  string            `json:"imageCdnUrl"`
}

type pptPrices struct {
	Market      *float64 `json:"market"`
	Low         *float64 `json:"low"`
	High        *float64 `json:"high"`
	LastUpdated string   `json:"lastUpdated"`
}

type pptHistoryPoint struct {
	Date   string  `json:"date"`
	Market float64 `json:"market"`
}

func (r *PriceTrackerResponse) Cards() ([]models.Card, error) {
	var searchResp pptSearchResponse
	if err := json.Unmarshal(r.body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode price tracker response: %w", err)
	}

	cards := make([]models.Card, len(searchResp.Data))
	for i, pc := range searchResp.Data {
		cards[i] = convertPriceTrackerCard(pc)
	}
	return cards, nil
}

func convertPriceTrackerCard(pc pptCard) models.Card {
	id := pc.TCGPlayerID
	if id == "" {
		id = pc.ID
	}

	// Use the best available image
	imageURL := pc.ImageURL
	if pc.ImageCdnUrl != "" {
		imageURL = pc.ImageCdnUrl
	}

	card := models.Card{
		ID:            id,
		Provider:      models.ProviderPriceTracker,
		Name:          pc.Name,
		SetID:         pc.SetID,
		SetName:       pc.SetName,
		Number:        pc.CardNumber,
		Rarity:        pc.Rarity,
		ImageURL:      imageURL,
		ImageURLLarge: pc.ImageCdnUrl,
	}

	history := convertPriceHistory(pc.PriceHistory)
	if pc.Prices == nil && len(history) == 0 {
		return card
	}

	prices := &models.Prices{History: history}
	if pc.Prices != nil {
		prices.Market = pc.Prices.Market
		prices.Low = pc.Prices.Low
		prices.High = pc.Prices.High
		prices.UpdatedAt = pc.Prices.LastUpdated
	}
	if prices.Market == nil && prices.Low == nil && prices.High == nil && len(prices.History) == 0 {
		return card
	}
	card.Prices = prices
	return card
}

func convertPriceHistory(points []pptHistoryPoint) []models.PricePoint {
	if len(points) == 0 {
		return nil
	}
	history := make([]models.PricePoint, 0, len(points))
	for _, p := range points {
		date, err := time.Parse(time.RFC3339, p.Date)
		if err != nil {
			date, err = time.Parse("2006-01-02", p.Date)
			if err != nil {
				continue
			}
		}
		history = append(history, models.PricePoint{Date: date, Market: p.Market})
	}
	return history
}
