package llm

import "context"

const (
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// providerOrder is the order fallback providers are tried in.
var providerOrder = []string{ProviderClaude, ProviderGemini, ProviderOpenAI}

// Completion is the raw text one provider call produced.
type Completion struct {
	Text         string
	ModelVersion string
}

type Provider interface {
	Complete(ctx context.Context, prompt string) (*Completion, error)
	Name() string
}

func IsKnownProvider(name string) bool {
	for _, p := range providerOrder {
		if p == name {
			return true
		}
	}
	return false
}

// Chain returns the providers a summarization should try, selected first.
// With fallback enabled the remaining configured providers follow in
// providerOrder, each at most once.
func Chain(selected string, providers map[string]Provider, fallback bool) []Provider {
	var chain []Provider
	if p, ok := providers[selected]; ok {
		chain = append(chain, p)
	}
	if !fallback {
		return chain
	}
	for _, name := range providerOrder {
		if name == selected {
			continue
		}
		if p, ok := providers[name]; ok {
			chain = append(chain, p)
		}
	}
	return chain
}
