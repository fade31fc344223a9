package tools

import (
	"context"
	"fmt"
	"time"
)

type greetParams struct {
	Name string `json:"name" jsonschema:"description=The user's name to greet"`
}

type reverseParams struct {
	Text string `json:"text" jsonschema:"description=The text to reverse"`
}

type timeParams struct{}

// registerDemoTools adds the demonstration tools.
func registerDemoTools(reg *Registry) error {
	if err := reg.Register(&Tool{
		Name:        "greet_user",
		Description: "Greets the user by name with a friendly message.",
		Schema:      reflectSchema(&greetParams{}),
		Origin:      OriginLocal,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			var p greetParams
			if err := decodeArgs(args, &p); err != nil {
				return "", err
			}
			if p.Name == "" {
				return "", fmt.Errorf("missing required argument %q", "name")
			}
			return fmt.Sprintf("Hello, %s! Welcome to the agent.", p.Name), nil
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&Tool{
		Name:        "reverse_text",
		Description: "Reverses the given text string.",
		Schema:      reflectSchema(&reverseParams{}),
		Origin:      OriginLocal,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			var p reverseParams
			if err := decodeArgs(args, &p); err != nil {
				return "", err
			}
			runes := []rune(p.Text)
			for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
				runes[i], runes[j] = runes[j], runes[i]
			}
			return string(runes), nil
		},
	}); err != nil {
		return err
	}

	return reg.Register(&Tool{
		Name:        "current_time",
		Description: "Returns the current date and time in UTC.",
		Schema:      reflectSchema(&timeParams{}),
		Origin:      OriginLocal,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return time.Now().UTC().Format(time.RFC3339), nil
		},
	})
}
