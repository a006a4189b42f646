package llm

import (
	"github.com/lueurxax/shruggbot/internal/platform/observability"
)

// recordUsage records request and token metrics for one provider call.
func recordUsage(provider ProviderName, model, status string, promptTokens, completionTokens int) {
	observability.LLMRequests.WithLabelValues(string(provider), model, status).Inc()

	if promptTokens > 0 {
		observability.LLMTokens.WithLabelValues(string(provider), model, tokenKindPrompt).Add(float64(promptTokens))
	}

	if completionTokens > 0 {
		observability.LLMTokens.WithLabelValues(string(provider), model, tokenKindCompletion).Add(float64(completionTokens))
	}
}

// callStatus maps a finished call to its metric status label.
func callStatus(result FunctionCallResult) string {
	if !result.Called {
		return StatusNoCall
	}

	return StatusSuccess
}
