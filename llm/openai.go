package llm

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/mempirate/faqex/log"
)

const DefaultOpenAIModel = openai.ChatModelGPT4oMini

// OpenAI is a Client backed by the OpenAI chat completions API.
type OpenAI struct {
	log    zerolog.Logger
	client *openai.Client
	model  openai.ChatModel
}

func NewOpenAI(apiKey, model string) *OpenAI {
	chatModel := openai.ChatModel(model)
	if chatModel == "" {
		chatModel = DefaultOpenAIModel
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &OpenAI{
		log:    log.NewLogger("openai"),
		client: client,
		model:  chatModel,
	}
}

func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	o.log.Debug().Str("model", string(o.model)).Int("promptLen", len(prompt)).Msg("Sending completion request")

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model:       openai.F(o.model),
		Temperature: openai.F(0.0),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to create chat completion")
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
