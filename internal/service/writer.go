package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/templui/storyloom/internal/genai"
	"github.com/templui/storyloom/internal/metrics"
)

const (
	storyPromptTemplate = `Write a creative and engaging short story based on this prompt: "%s". Make it approximately 300-500 words with vivid descriptions, compelling characters, and an interesting plot. Focus on storytelling quality and emotional engagement.`

	grammarPromptTemplate = "Please check the following text for grammar, spelling, punctuation, and style issues. Provide corrections and suggestions for improvement. Format your response clearly with explanations for each correction:\n\n\"%s\""

	plotTwistPromptTemplate = "Based on this story: \"%s\"\n\nSuggest 3-5 creative and unexpected plot twists that could enhance the narrative. Each twist should be surprising yet logical within the story's context. Explain how each twist could be implemented and its potential impact on the story."
)

// Sampling shared by every writer operation; only the temperature varies.
func samplingParams(temperature float64) genai.SamplingParams {
	return genai.SamplingParams{
		Temperature:     temperature,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 1024,
	}
}

// WriterService turns user input into fixed prompts for the generative text
// service. Requests are never retried.
type WriterService struct {
	completer genai.Completer
}

func NewWriterService(completer genai.Completer) *WriterService {
	return &WriterService{completer: completer}
}

func (s *WriterService) GenerateStory(ctx context.Context, prompt string) (string, error) {
	return s.complete(ctx, "story", "prompt", prompt, storyPromptTemplate, 0.7)
}

func (s *WriterService) CheckGrammar(ctx context.Context, text string) (string, error) {
	return s.complete(ctx, "grammar", "text", text, grammarPromptTemplate, 0.3)
}

func (s *WriterService) SuggestPlotTwists(ctx context.Context, story string) (string, error) {
	return s.complete(ctx, "plot_twists", "story", story, plotTwistPromptTemplate, 0.8)
}

func (s *WriterService) complete(ctx context.Context, operation, field, input, template string, temperature float64) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", NewValidationError(field, "is required")
	}

	text, err := s.completer.Complete(ctx, fmt.Sprintf(template, input), samplingParams(temperature))
	metrics.WriterRequest(operation, err)
	if err != nil {
		return "", fmt.Errorf("%s: %w", operation, err)
	}
	return text, nil
}
