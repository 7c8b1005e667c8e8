package models

type ProviderName string

const (
	ProviderTCG          ProviderName = "tcg"
	ProviderPriceTracker ProviderName = "pricetracker"
)

// Valid reports whether p names a known provider.
func (p ProviderName) Valid() bool {
	return p == ProviderTCG || p == ProviderPriceTracker
}

// Card is the provider-independent shape returned by the search proxy and
// stored verbatim in the collection.
type Card struct {
	ID            string       `json:"id"`
	Provider      ProviderName `json:"provider"`
	Name          string       `json:"name"`
	SetID         string       `json:"set_id,omitempty"`
	SetName       string       `json:"set_name"`
	Number        string       `json:"number"`
	Rarity        string       `json:"rarity"`
	ImageURL      string       `json:"image_url"`
	ImageURLLarge string       `json:"image_url_large,omitempty"`
	Prices        *Prices      `json:"prices,omitempty"` // nil when the provider had no price block
}

type CardSearchResult struct {
	Cards    []Card       `json:"data"`
	Provider ProviderName `json:"provider"`
	Cache    string       `json:"cache"`
}
