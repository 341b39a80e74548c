package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/meridian/internal/common"
	"github.com/ternarybob/meridian/internal/interfaces"
)

// NewLLMService creates the configured provider implementation.
func NewLLMService(cfg *common.Config, logger arbor.ILogger) (interfaces.LLMService, error) {
	logger.Info().Str("provider", string(cfg.LLM.DefaultProvider)).Msg("Initializing LLM service")

	switch cfg.LLM.DefaultProvider {
	case common.LLMProviderClaude:
		return NewClaudeService(&cfg.Claude, logger)

	case common.LLMProviderGemini:
		return NewGeminiService(&cfg.Gemini, logger)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.DefaultProvider)
	}
}
