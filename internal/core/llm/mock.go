package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
)

const (
	mockModel    = "mock"
	mockMaxScore = 10
)

// mockProvider answers every call deterministically without network access.
type mockProvider struct{}

// NewMockProvider creates a new mock LLM provider.
func NewMockProvider() *mockProvider {
	return &mockProvider{}
}

// Name returns the provider identifier.
func (p *mockProvider) Name() ProviderName {
	return ProviderMock
}

// IsAvailable returns true as mock is always available.
func (p *mockProvider) IsAvailable() bool {
	return true
}

// Priority returns the provider priority.
func (p *mockProvider) Priority() int {
	return PriorityMock
}

// CallFunction implements Provider interface. The arguments carry a canned
// reaction and a score derived from the user prompt, so equal prompts give
// equal answers.
func (p *mockProvider) CallFunction(_ context.Context, req FunctionCallRequest, _ string) (FunctionCallResult, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(req.UserPrompt))

	args, err := json.Marshal(map[string]any{
		"reaction": fmt.Sprintf("Ah yes. %s Truly the pinnacle of civilization.", req.UserPrompt),
		"score":    int(h.Sum32()%mockMaxScore) + 1,
	})
	if err != nil {
		return FunctionCallResult{}, fmt.Errorf("encoding mock arguments: %w", err)
	}

	recordUsage(ProviderMock, mockModel, StatusSuccess, 0, 0)

	return FunctionCallResult{
		Called:    true,
		Name:      req.Function.Name,
		Arguments: string(args),
		Model:     mockModel,
	}, nil
}
