package fallback

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/hvacops-nlq/server/internal/nlq/model"
	logx "github.com/hvacops-nlq/server/pkg/logger"
)

// GeminiConfig holds everything needed to build the Gemini translator.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   model.FallbackModelConfig
}

// GeminiTranslator implements Translator on top of the Gemini chat model.
type GeminiTranslator struct {
	chatModel *gemini.ChatModel
	modelName string
}

func NewGeminiTranslator(ctx context.Context, cfg GeminiConfig) (*GeminiTranslator, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model.Model,
		Temperature: &cfg.Model.Temperature,
		MaxTokens:   &cfg.Model.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating fallback SQL model")
		return nil, fmt.Errorf("error creating fallback sql model: %w", err)
	}

	return &GeminiTranslator{chatModel: chatModel, modelName: cfg.Model.Model}, nil
}

// Translate sends the schema-grounded prompt and unwraps the returned SQL.
func (t *GeminiTranslator) Translate(ctx context.Context, req Request) (Result, error) {
	userPrompt, err := buildUserPrompt(req)
	if err != nil {
		return Result{}, err
	}

	out, err := t.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userPrompt),
	})
	if err != nil {
		return Result{}, fmt.Errorf("fallback sql generation: %w", err)
	}

	sql := stripMarkdownSQL(out.Content)
	if strings.TrimSpace(sql) == "" {
		return Result{}, fmt.Errorf("fallback model returned empty sql")
	}

	logx.Debug().
		Str("session_id", req.SessionID).
		Str("model", t.modelName).
		Msg("fallback sql generated")
	return Result{SQL: sql, Model: t.modelName}, nil
}
