package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type searchParams struct {
	Query string `json:"query" jsonschema:"description=The search query string"`
}

type stockParams struct {
	Ticker string `json:"ticker" jsonschema:"description=The stock ticker symbol (e.g. GOOGL)"`
}

type weatherParams struct {
	City string `json:"city" jsonschema:"description=The city name to get weather for"`
}

type emailParams struct {
	To   string `json:"to" jsonschema:"description=The recipient email address"`
	Body string `json:"body" jsonschema:"description=The email body content"`
}

// registerExampleTools adds the example tools. These are mocks that show
// the expected shape of real integrations; a production deployment would
// back them with search, market data, weather, and mail providers.
func registerExampleTools(reg *Registry) error {
	if err := reg.Register(&Tool{
		Name:        "web_search",
		Description: "Performs a web search for the given query.",
		Schema:      reflectSchema(&searchParams{}),
		Origin:      OriginLocal,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			var p searchParams
			if err := decodeArgs(args, &p); err != nil {
				return "", err
			}
			if strings.TrimSpace(p.Query) == "" {
				return "", fmt.Errorf("missing required argument %q", "query")
			}
			return fmt.Sprintf("Search results for: %s\n1. Result A for %s...\n2. Result B for %s...",
				p.Query, p.Query, p.Query), nil
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&Tool{
		Name:        "get_stock_price",
		Description: "Retrieves the current stock price for a given ticker.",
		Schema:      reflectSchema(&stockParams{}),
		Origin:      OriginLocal,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			var p stockParams
			if err := decodeArgs(args, &p); err != nil {
				return "", err
			}
			if strings.TrimSpace(p.Ticker) == "" {
				return "", fmt.Errorf("missing required argument %q", "ticker")
			}
			return fmt.Sprintf("%.2f", 150.00), nil
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&Tool{
		Name:        "get_weather",
		Description: "Return current weather data for a given city.",
		Schema:      reflectSchema(&weatherParams{}),
		Origin:      OriginLocal,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			var p weatherParams
			if err := decodeArgs(args, &p); err != nil {
				return "", err
			}
			if strings.TrimSpace(p.City) == "" {
				return "", fmt.Errorf("missing required argument %q", "city")
			}
			payload, err := json.Marshal(map[string]any{
				"city":          p.City,
				"temperature_c": 21.5,
				"condition":     "Partly Cloudy",
			})
			if err != nil {
				return "", err
			}
			return string(payload), nil
		},
	}); err != nil {
		return err
	}

	return reg.Register(&Tool{
		Name:        "send_email",
		Description: "Sends an email to the given recipient.",
		Schema:      reflectSchema(&emailParams{}),
		Origin:      OriginLocal,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			var p emailParams
			if err := decodeArgs(args, &p); err != nil {
				return "", err
			}
			if strings.TrimSpace(p.To) == "" {
				return "", fmt.Errorf("missing required argument %q", "to")
			}
			return fmt.Sprintf("Email sent to %s (mock).", p.To), nil
		},
	})
}
