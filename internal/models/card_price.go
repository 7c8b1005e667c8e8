package models

import "time"

// PriceVariant is a TCGplayer printing key as used by the open card API
type PriceVariant string

const (
	VariantNormal             PriceVariant = "normal"
	VariantHolofoil           PriceVariant = "holofoil"
	VariantReverseHolofoil    PriceVariant = "reverseHolofoil"
	Variant1stEditionHolofoil PriceVariant = "1stEditionHolofoil"
	Variant1stEditionNormal   PriceVariant = "1stEditionNormal"
	VariantUnlimitedHolofoil  PriceVariant = "unlimitedHolofoil"
)

// AllPriceVariants returns the variants in the order they are consulted
// when resolving a card's price.
func AllPriceVariants() []PriceVariant {
	return []PriceVariant{
		VariantNormal,
		VariantHolofoil,
		VariantReverseHolofoil,
		Variant1stEditionHolofoil,
		Variant1stEditionNormal,
		VariantUnlimitedHolofoil,
	}
}

// Prices holds whatever price data a provider returned. Every amount is a
// pointer: a missing price is not the same thing as a price of zero.
type Prices struct {
	Market     *float64                      `json:"market,omitempty"`
	Low        *float64                      `json:"low,omitempty"`
	High       *float64                      `json:"high,omitempty"`
	TCGPlayer  map[PriceVariant]VariantPrice `json:"tcgplayer,omitempty"`
	Cardmarket *CardmarketPrices             `json:"cardmarket,omitempty"`
	History    []PricePoint                  `json:"history,omitempty"`
	UpdatedAt  string                        `json:"updated_at,omitempty"`
}

type VariantPrice struct {
	Low    *float64 `json:"low,omitempty"`
	Mid    *float64 `json:"mid,omitempty"`
	High   *float64 `json:"high,omitempty"`
	Market *float64 `json:"market,omitempty"`
}

type CardmarketPrices struct {
	AverageSellPrice *float64 `json:"average_sell_price,omitempty"`
	TrendPrice       *float64 `json:"trend_price,omitempty"`
}

type PricePoint struct {
	Date   time.Time `json:"date"`
	Market float64   `json:"market"`
}

// ResolvePrice returns the first available price for the card: the direct
// market price, then TCGplayer variants in AllPriceVariants order, then the
// Cardmarket average sell and trend prices. ok is false when the card has
// no usable price at all.
func (c Card) ResolvePrice() (price float64, ok bool) {
	p := c.Prices
	if p == nil {
		return 0, false
	}
	if p.Market != nil {
		return *p.Market, true
	}
	for _, v := range AllPriceVariants() {
		if vp, found := p.TCGPlayer[v]; found && vp.Market != nil {
			return *vp.Market, true
		}
	}
	if cm := p.Cardmarket; cm != nil {
		if cm.AverageSellPrice != nil {
			return *cm.AverageSellPrice, true
		}
		if cm.TrendPrice != nil {
			return *cm.TrendPrice, true
		}
	}
	return 0, false
}

// Float returns a pointer to v. Handy for building price blocks.
func Float(v float64) *float64 {
	return &v
}
