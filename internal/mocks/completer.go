package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/templui/storyloom/internal/genai"
)

// Mock genai.Completer
type Completer struct {
	mock.Mock
}

func (m *Completer) Complete(ctx context.Context, prompt string, params genai.SamplingParams) (string, error) {
	args := m.Called(ctx, prompt, params)
	return args.String(0), args.Error(1)
}
