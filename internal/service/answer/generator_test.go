package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"promptdesk/internal/config"
	"promptdesk/internal/models"
)

// fakeChatModel stands in for the provider client so pipeline behavior
// can be tested without network access.
type fakeChatModel struct {
	reply string
	err   error
	last  []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, in []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.last = in
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{Role: schema.Assistant, Content: f.reply}, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, in []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported in tests")
}

func (f *fakeChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return f, nil
}

func TestGenerateTrimsAnswer(t *testing.T) {
	fake := &fakeChatModel{reply: "  the answer \n"}
	g := &Generator{chatModel: fake, provider: "gemini"}

	answer, err := g.Generate(context.Background(), []models.ContentPart{models.TextPart("question")})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if answer != "the answer" {
		t.Fatalf("expected trimmed answer, got %q", answer)
	}
	if len(fake.last) != 1 || fake.last[0].Role != schema.User {
		t.Fatalf("expected a single user message, got %+v", fake.last)
	}
}

func TestGenerateEmptyAnswer(t *testing.T) {
	fake := &fakeChatModel{reply: "   \n\t"}
	g := &Generator{chatModel: fake, provider: "gemini"}

	if _, err := g.Generate(context.Background(), []models.ContentPart{models.TextPart("question")}); !errors.Is(err, ErrEmptyAnswer) {
		t.Fatalf("expected ErrEmptyAnswer, got %v", err)
	}
}

func TestGenerateModelFailure(t *testing.T) {
	remote := errors.New("quota exceeded")
	fake := &fakeChatModel{err: remote}
	g := &Generator{chatModel: fake, provider: "gemini"}

	if _, err := g.Generate(context.Background(), []models.ContentPart{models.TextPart("question")}); !errors.Is(err, remote) {
		t.Fatalf("expected wrapped model error, got %v", err)
	}
}

func TestGenerateUnavailable(t *testing.T) {
	var g *Generator
	if _, err := g.Generate(context.Background(), []models.ContentPart{models.TextPart("question")}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("nil generator: expected ErrUnavailable, got %v", err)
	}

	empty := &Generator{}
	if _, err := empty.Generate(context.Background(), []models.ContentPart{models.TextPart("question")}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("unconfigured generator: expected ErrUnavailable, got %v", err)
	}
}

func TestGenerateNoContent(t *testing.T) {
	g := &Generator{chatModel: &fakeChatModel{reply: "hi"}, provider: "gemini"}
	if _, err := g.Generate(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty parts")
	}
}

func TestBuildUserMessageSingleText(t *testing.T) {
	msg := buildUserMessage([]models.ContentPart{models.TextPart("hello")})
	if msg.Content != "hello" {
		t.Fatalf("expected plain content, got %q", msg.Content)
	}
	if len(msg.MultiContent) != 0 {
		t.Fatalf("single text prompt must not use multi content")
	}
}

func TestBuildUserMessageMultimodal(t *testing.T) {
	parts := []models.ContentPart{
		models.TextPart("what is in this picture"),
		models.BinaryPart("image/png", "aGVsbG8="),
	}
	msg := buildUserMessage(parts)
	if msg.Role != schema.User {
		t.Fatalf("expected user role, got %v", msg.Role)
	}
	if len(msg.MultiContent) != 2 {
		t.Fatalf("expected 2 content parts, got %d", len(msg.MultiContent))
	}
	if msg.MultiContent[0].Type != schema.ChatMessagePartTypeText {
		t.Fatalf("first part must be text, got %v", msg.MultiContent[0].Type)
	}
	img := msg.MultiContent[1]
	if img.Type != schema.ChatMessagePartTypeImageURL || img.ImageURL == nil {
		t.Fatalf("second part must be an image url, got %+v", img)
	}
	if !strings.HasPrefix(img.ImageURL.URL, "data:image/png;base64,") {
		t.Fatalf("unexpected data url: %q", img.ImageURL.URL)
	}
	if !strings.HasSuffix(img.ImageURL.URL, "aGVsbG8=") {
		t.Fatalf("payload missing from data url: %q", img.ImageURL.URL)
	}
}

func TestNewGeneratorRejectsBadConfig(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{
		BasicConfig: config.BasicConfig{Provider: "gemini"},
		Providers:   map[string]config.ProviderConfig{},
	}
	if _, err := NewGenerator(ctx, cfg); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("missing provider: expected ErrUnavailable, got %v", err)
	}

	cfg.Providers["gemini"] = config.ProviderConfig{}
	if _, err := NewGenerator(ctx, cfg); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("missing api key: expected ErrUnavailable, got %v", err)
	}

	cfg.BasicConfig.Provider = "parrot"
	cfg.Providers["parrot"] = config.ProviderConfig{APIKey: "k"}
	if _, err := NewGenerator(ctx, cfg); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
