package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"translingo/internal/lang"
	"translingo/internal/models"
)

var defaultLLMModels = map[string]string{
	"openai": "gpt-4o-mini",
	"claude": "claude-3-5-haiku-latest",
	"gemini": "gemini-2.0-flash",
}

// LLMConfig selects and authenticates the chat model behind the LLM provider.
type LLMConfig struct {
	Kind    string
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// LLM translates through a chat completion model.
type LLM struct {
	kind    string
	model   model.BaseChatModel
	timeout time.Duration
}

// NewLLM builds the chat model for cfg.Kind. Without an API key the provider
// is returned unavailable and no client is constructed.
func NewLLM(ctx context.Context, cfg LLMConfig) (*LLM, error) {
	kind := strings.ToLower(cfg.Kind)
	if kind == "" {
		kind = "openai"
	}
	if cfg.APIKey == "" {
		return &LLM{kind: kind}, nil
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultLLMModels[kind]
	}

	var (
		chatModel model.BaseChatModel
		err       error
	)
	switch kind {
	case "openai":
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: cfg.BaseURL,
			Model:   modelName,
			APIKey:  cfg.APIKey,
		})
	case "gemini":
		client, cerr := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: cfg.APIKey,
		})
		if cerr != nil {
			return nil, fmt.Errorf("new gemini client: %w", cerr)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  modelName,
		})
	case "claude":
		var baseURLPtr *string
		if cfg.BaseURL != "" {
			baseURLPtr = &cfg.BaseURL
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    cfg.APIKey,
			Model:     modelName,
			BaseURL:   baseURLPtr,
			MaxTokens: 2048,
		})
	default:
		return nil, fmt.Errorf("invalid llm kind: %s", cfg.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s chat model: %w", kind, err)
	}
	return NewLLMWithModel(kind, chatModel, cfg.Timeout), nil
}

// NewLLMWithModel wraps an already constructed chat model.
func NewLLMWithModel(kind string, chatModel model.BaseChatModel, timeout time.Duration) *LLM {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &LLM{kind: kind, model: chatModel, timeout: timeout}
}

func (l *LLM) Name() string { return "llm" }

// Kind reports the backend: openai, claude or gemini.
func (l *LLM) Kind() string { return l.kind }

func (l *LLM) Available() bool { return l.model != nil }

func (l *LLM) SupportsAutoSource() bool { return true }

func (l *LLM) Translate(ctx context.Context, req Request) (string, error) {
	if l.model == nil {
		return "", ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	resp, err := l.model.Generate(ctx, []*schema.Message{
		{Role: schema.System, Content: translationPrompt(req.Source, req.Target)},
		{Role: schema.User, Content: req.Text},
	})
	if err != nil {
		return "", fmt.Errorf("llm generate: %w", err)
	}
	if resp == nil {
		return "", ErrMissingTranslation
	}
	out := strings.TrimSpace(resp.Content)
	if out == "" {
		return "", ErrMissingTranslation
	}
	return out, nil
}

func translationPrompt(source, target string) string {
	from := "the language it is written in"
	if source != "" && source != models.AutoLanguage {
		from = lang.Name(source)
	}
	return fmt.Sprintf("You are a translation engine. Translate the user's message from %s to %s. "+
		"Reply with the translation only, without quotes, notes or explanations.", from, lang.Name(target))
}
