package aitool

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"atomd/internal/domain"
)

// EinoClient adapts an eino chat model to the CompletionClient contract.
// One model is built at startup from configuration; per-request model and
// sampling overrides ride along as generate options.
type EinoClient struct {
	model  model.ToolCallingChatModel
	cfg    domain.AIConfig
	logger *zap.Logger
}

func NewEinoClient(ctx context.Context, cfg domain.AIConfig, logger *zap.Logger) (*EinoClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		envVar := strings.TrimSpace(cfg.APIKeyEnvVar)
		if envVar == "" {
			return nil, fmt.Errorf("AI API key is required: set ai.apiKey or ai.apiKeyEnvVar")
		}
		apiKey = os.Getenv(envVar)
		if apiKey == "" {
			return nil, fmt.Errorf("AI API key not found in env var %s", envVar)
		}
	}

	switch cfg.Provider {
	case "openai", "":
		modelCfg := &openai.ChatModelConfig{
			Model:  cfg.Model,
			APIKey: apiKey,
		}
		if cfg.BaseURL != "" {
			modelCfg.BaseURL = cfg.BaseURL
		}
		chatModel, err := openai.NewChatModel(ctx, modelCfg)
		if err != nil {
			return nil, fmt.Errorf("create chat model: %w", err)
		}
		return &EinoClient{model: chatModel, cfg: cfg, logger: logger.Named("ai")}, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}

func (c *EinoClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", domain.E(domain.CodeInvalidArgument, "ai completion", "prompt must not be empty", nil)
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}
	temperature := float32(req.Temperature)
	opts := []model.Option{
		model.WithMaxTokens(maxTokens),
		model.WithTemperature(temperature),
	}
	if req.Model != "" && req.Model != c.cfg.Model {
		opts = append(opts, model.WithModel(req.Model))
	}

	messages := []*schema.Message{
		schema.UserMessage(req.Prompt),
	}

	response, err := c.model.Generate(ctx, messages, opts...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// Provider failures are worth another attempt; the retry budget
		// decides how many.
		return "", domain.Transient("ai completion", "generate", err)
	}
	if response == nil || response.Content == "" {
		return "", domain.Transient("ai completion", "empty response from model", nil)
	}

	c.logTokenUsage(response)
	return response.Content, nil
}

func (c *EinoClient) logTokenUsage(response *schema.Message) {
	if response.ResponseMeta == nil || response.ResponseMeta.Usage == nil {
		return
	}
	usage := response.ResponseMeta.Usage
	if usage.TotalTokens <= 0 {
		return
	}
	c.logger.Debug("completion token usage",
		zap.String("model", c.cfg.Model),
		zap.Int("prompt_tokens", usage.PromptTokens),
		zap.Int("completion_tokens", usage.CompletionTokens),
		zap.Int("total_tokens", usage.TotalTokens),
	)
}

var _ domain.CompletionClient = (*EinoClient)(nil)
