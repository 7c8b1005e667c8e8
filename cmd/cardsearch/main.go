// cardsearch runs a card search against a running proxy and prints the
// results with their resolved prices.
//
// Usage: cardsearch -q=<term> [-set=<id>] [-provider=tcg|pricetracker] [-limit=12]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/codyseavey/tcg-search/internal/client"
	"github.com/codyseavey/tcg-search/internal/models"
)

func main() {
	_ = godotenv.Load()

	defaultURL := os.Getenv("PROXY_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}

	proxyURL := flag.String("url", defaultURL, "Base URL of the search proxy")
	term := flag.String("q", "", "Card name to search for")
	setID := flag.String("set", "", "Set identifier")
	provider := flag.String("provider", string(models.ProviderTCG), "Provider: tcg or pricetracker")
	limit := flag.Int("limit", models.DefaultSearchLimit, "Maximum number of results")
	rarity := flag.String("rarity", "", "Rarity filter (pricetracker only)")
	minPrice := flag.Float64("min-price", -1, "Minimum price (pricetracker only)")
	maxPrice := flag.Float64("max-price", -1, "Maximum price (pricetracker only)")
	flag.Parse()

	if *term == "" && *setID == "" {
		flag.Usage()
		os.Exit(2)
	}

	q := models.SearchQuery{
		Term:     *term,
		SetID:    *setID,
		Provider: models.ProviderName(*provider),
		Limit:    *limit,
		Rarity:   *rarity,
	}
	if *minPrice >= 0 {
		q.MinPrice = minPrice
	}
	if *maxPrice >= 0 {
		q.MaxPrice = maxPrice
	}

	session := client.NewSearchSession(client.NewProxyClient(*proxyURL, 30*time.Second), func(s client.SearchState) {
		if s.Loading {
			log.Printf("Searching %s for %q...", s.Query.Provider, s.Query.Term)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	state := session.Submit(ctx, q)
	switch {
	case state.Err != nil:
		fmt.Fprintln(os.Stderr, state.Err.UserMessage())
		os.Exit(1)
	case state.Notice != "":
		fmt.Println(state.Notice)
		return
	}

	for _, card := range state.Cards {
		price := "no price"
		if p, ok := card.ResolvePrice(); ok {
			price = fmt.Sprintf("$%.2f", p)
		}
		fmt.Printf("%-14s %-28s %-24s %-6s %s\n", card.ID, card.Name, card.SetName, card.Number, price)
	}
	if state.CacheHit {
		fmt.Println("(served from cache)")
	}
}
