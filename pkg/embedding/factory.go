package embedding

import "fmt"

func NewEmbeddingProvider(providerType, apiKey, baseURL, model string) (EmbeddingProvider, error) {
	switch providerType {
	case "ollama":
		return NewOllamaProvider(baseURL, model), nil
	case "gemini":
		if apiKey == "" {
			return nil, fmt.Errorf("gemini embedding provider requires an API key")
		}
		return NewGeminiProvider(apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
