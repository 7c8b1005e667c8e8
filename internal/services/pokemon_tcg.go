package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/codyseavey/tcg-search/internal/models"
)

const (
	pokemonTCGBaseURL  = "https://api.pokemontcg.io/v2"
	pokemonTCGMaxLimit = 20
)

// PokemonTCGService searches the open Pokemon TCG API. It needs no
// credential; an optional key only raises the upstream's own quota.
type PokemonTCGService struct {
	client  *resty.Client
	apiKey  string
	timeout time.Duration
}

func NewPokemonTCGService(apiKey string, timeout time.Duration) *PokemonTCGService {
	return newPokemonTCGService(pokemonTCGBaseURL, apiKey, timeout)
}

func newPokemonTCGService(baseURL, apiKey string, timeout time.Duration) *PokemonTCGService {
	if timeout <= 0 {
		timeout = DefaultUpstreamTimeout
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")

	return &PokemonTCGService{
		client:  client,
		apiKey:  apiKey,
		timeout: timeout,
	}
}

func (s *PokemonTCGService) Name() models.ProviderName {
	return models.ProviderTCG
}

func (s *PokemonTCGService) MaxLimit() int {
	return pokemonTCGMaxLimit
}

// Search runs a name-prefix query. Price and rarity filters are not part
// of this provider's dialect and are ignored.
func (s *PokemonTCGService) Search(ctx context.Context, q models.SearchQuery) (ProviderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req := s.client.R().
		SetContext(ctx).
		SetQueryParam("q", buildTCGQuery(q)).
		SetQueryParam("pageSize", strconv.Itoa(q.Limit))
	if s.apiKey != "" {
		req.SetHeader("X-Api-Key", s.apiKey)
	}

	resp, err := req.Get("/cards")
	if err != nil {
		return nil, transportError(models.ProviderTCG, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		// Nothing matched; the open API treats this as an empty page.
		return &TCGResponse{body: []byte(`{"data":[]}`)}, nil
	case resp.StatusCode() < 200 || resp.StatusCode() > 299:
		return nil, classifyStatus(models.ProviderTCG, resp.StatusCode(), resp.Body(), s.apiKey)
	}

	return &TCGResponse{body: resp.Body()}, nil
}

// buildTCGQuery wraps the term in a name-prefix match expression.
func buildTCGQuery(q models.SearchQuery) string {
	var parts []string
	if q.Term != "" {
		term := strings.ReplaceAll(q.Term, `"`, "")
		if strings.ContainsAny(term, " \t") {
			parts = append(parts, fmt.Sprintf(`name:"%s*"`, term))
		} else {
			parts = append(parts, fmt.Sprintf("name:%s*", term))
		}
	}
	if q.SetID != "" {
		parts = append(parts, "set.id:"+q.SetID)
	}
	return strings.Join(parts, " ")
}

// TCGResponse is a payload from the open Pokemon TCG API
type TCGResponse struct {
	body []byte
}

func NewTCGResponse(body []byte) *TCGResponse {
	return &TCGResponse{body: body}
}

func (r *TCGResponse) Provider() models.ProviderName { return models.ProviderTCG }
func (r *TCGResponse) Raw() []byte                   { return r.body }
func (r *TCGResponse) isProviderResponse()           {}

type pokemonSearchResponse struct {
	Data []pokemonCard `json:"data"`
}

type pokemonCard struct {
	TCGPlayer  *pokemonTCGPrice   `json:"tcgplayer"`
	Cardmarket *pokemonCardmarket `json:"cardmarket"`
	Set        pokemonSet         `json:"set"`
	Images     pokemonImages      `json:"images"`
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Number     string             `json:"number"`
	Rarity     string             `json:"rarity"`
}

type pokemonSet struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type pokemonImages struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

type pokemonTCGPrice struct {
	Prices    map[string]pokemonPriceSet `json:"prices"`
	URL       string                     `json:"url"`
	UpdatedAt string                     `json:"updatedAt"`
}

type pokemonPriceSet struct {
	Low    *float64 `json:"low"`
	Mid    *float64 `json:"mid"`
	High   *float64 `json:"high"`
	Market *float64 `json:"market"`
}

type pokemonCardmarket struct {
	Prices    pokemonCardmarketPrices `json:"prices"`
	UpdatedAt string                  `json:"updatedAt"`
}

type pokemonCardmarketPrices struct {
	AverageSellPrice *float64 `json:"averageSellPrice"`
	TrendPrice       *float64 `json:"trendPrice"`
}

func (r *TCGResponse) Cards() ([]models.Card, error) {
	var searchResp pokemonSearchResponse
	if err := json.Unmarshal(r.body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode pokemon tcg response: %w", err)
	}

	cards := make([]models.Card, len(searchResp.Data))
	for i, pc := range searchResp.Data {
		cards[i] = convertPokemonCard(pc)
	}
	return cards, nil
}

func convertPokemonCard(pc pokemonCard) models.Card {
	card := models.Card{
		ID:            pc.ID,
		Provider:      models.ProviderTCG,
		Name:          pc.Name,
		SetID:         pc.Set.ID,
		SetName:       pc.Set.Name,
		Number:        pc.Number,
		Rarity:        pc.Rarity,
		ImageURL:      pc.Images.Small,
		ImageURLLarge: pc.Images.Large,
	}

	if pc.TCGPlayer == nil && pc.Cardmarket == nil {
		return card
	}

	prices := &models.Prices{}
	if pc.TCGPlayer != nil && len(pc.TCGPlayer.Prices) > 0 {
		prices.TCGPlayer = make(map[models.PriceVariant]models.VariantPrice, len(pc.TCGPlayer.Prices))
		for variant, p := range pc.TCGPlayer.Prices {
			prices.TCGPlayer[models.PriceVariant(variant)] = models.VariantPrice{
				Low:    p.Low,
				Mid:    p.Mid,
				High:   p.High,
				Market: p.Market,
			}
		}
		prices.UpdatedAt = pc.TCGPlayer.UpdatedAt
	}
	if pc.Cardmarket != nil {
		cm := pc.Cardmarket.Prices
		if cm.AverageSellPrice != nil || cm.TrendPrice != nil {
			prices.Cardmarket = &models.CardmarketPrices{
				AverageSellPrice: cm.AverageSellPrice,
				TrendPrice:       cm.TrendPrice,
			}
		}
		if prices.UpdatedAt == "" {
			prices.UpdatedAt = pc.Cardmarket.UpdatedAt
		}
	}

	if prices.TCGPlayer == nil && prices.Cardmarket == nil {
		return card
	}
	card.Prices = prices
	return card
}
