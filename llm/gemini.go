package llm

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/mempirate/faqex/log"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// Gemini is a Client backed by the Google Gemini API.
type Gemini struct {
	log    zerolog.Logger
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Gemini client")
	}

	return &Gemini{
		log:    log.NewLogger("gemini"),
		client: client,
		model:  model,
	}, nil
}

func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	g.log.Debug().Str("model", g.model).Int("promptLen", len(prompt)).Msg("Sending completion request")

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		// Extraction should be deterministic.
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to generate content")
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("model returned an empty response")
	}

	return text, nil
}
