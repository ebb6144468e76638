package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"promptdesk/internal/config"
	"promptdesk/internal/models"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// Failure signals the orchestrator converts into user-facing notices.
var (
	ErrUnavailable = errors.New("model client not configured")
	ErrEmptyAnswer = errors.New("model returned an empty answer")
)

// Generator invokes the configured external model. A nil Generator is a
// valid degraded state: Generate reports ErrUnavailable.
type Generator struct {
	chatModel model.ToolCallingChatModel
	provider  string
}

// NewGenerator builds the chat model for the configured provider.
func NewGenerator(ctx context.Context, cfg *config.Config) (*Generator, error) {
	provider := cfg.BasicConfig.Provider
	provCfg, ok := cfg.Providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: provider %s not configured", ErrUnavailable, provider)
	}
	if provCfg.APIKey == "" {
		return nil, fmt.Errorf("%w: missing api key for %s", ErrUnavailable, provider)
	}
	modelType := provCfg.Model

	var (
		chatModel model.ToolCallingChatModel
		err       error
	)
	switch provider {
	case "gemini":
		if modelType == "" {
			modelType = "gemini-1.5-flash"
		}
		client, cerr := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: provCfg.APIKey,
		})
		if cerr != nil {
			return nil, fmt.Errorf("new gemini client: %w", cerr)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  modelType,
		})
	case "openai":
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: provCfg.BaseURL,
			Model:   modelType,
			APIKey:  provCfg.APIKey,
		})
	case "claude":
		var baseURLPtr *string
		if provCfg.BaseURL != "" {
			baseURLPtr = &provCfg.BaseURL
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    provCfg.APIKey,
			Model:     modelType,
			BaseURL:   baseURLPtr,
			MaxTokens: 3000,
		})
	default:
		return nil, fmt.Errorf("invalid provider: %s", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s chat model: %w", provider, err)
	}
	return &Generator{chatModel: chatModel, provider: provider}, nil
}

// Generate sends the assembled parts to the model and returns the trimmed
// answer. One attempt per request; failures are terminal for the request.
func (g *Generator) Generate(ctx context.Context, parts []models.ContentPart) (string, error) {
	if g == nil || g.chatModel == nil {
		return "", ErrUnavailable
	}
	if len(parts) == 0 {
		return "", errors.New("no content to send")
	}
	out, err := g.chatModel.Generate(ctx, []*schema.Message{buildUserMessage(parts)})
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	answer := strings.TrimSpace(out.Content)
	if answer == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}

func buildUserMessage(parts []models.ContentPart) *schema.Message {
	if len(parts) == 1 && parts[0].Kind == models.PartText {
		return schema.UserMessage(parts[0].Text)
	}
	content := make([]schema.ChatMessagePart, 0, len(parts))
	for _, part := range parts {
		switch part.Kind {
		case models.PartText:
			content = append(content, schema.ChatMessagePart{
				Type: schema.ChatMessagePartTypeText,
				Text: part.Text,
			})
		case models.PartBinary:
			content = append(content, schema.ChatMessagePart{
				Type: schema.ChatMessagePartTypeImageURL,
				ImageURL: &schema.ChatMessageImageURL{
					URL:      fmt.Sprintf("data:%s;base64,%s", part.MIMEType, part.Data),
					MIMEType: part.MIMEType,
				},
			})
		}
	}
	return &schema.Message{Role: schema.User, MultiContent: content}
}
