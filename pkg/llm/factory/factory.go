package factory

import (
	"fmt"

	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/llm/groq"
	"ai-research-be/pkg/llm/ollama"
)

func NewLLMProvider(providerType, modelName, groqKey, groqBaseURL, ollamaBaseURL string) (llm.LLMProvider, error) {
	switch providerType {
	case "groq":
		if groqKey == "" {
			return nil, fmt.Errorf("groq provider requires an API key")
		}
		return groq.NewGroqProvider(groqKey, groqBaseURL, modelName), nil
	case "ollama":
		if ollamaBaseURL == "" {
			ollamaBaseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
