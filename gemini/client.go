package gemini

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"go.uber.org/zap"

	"github.com/resumatch/backend/config"
	"github.com/resumatch/backend/models"
)

// retryAmendment is appended to the prompt on the single retry allowed
// after a malformed response.
const retryAmendment = "\n\nPlease ensure your response is in valid JSON format."

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Client wraps the Vertex AI Gemini client
type Client struct {
	client    *genai.Client
	generator contentGenerator
	modelName string
	logger    *zap.Logger
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.GeminiModel)

	// Lower temperature for more consistent structured outputs
	model.SetTemperature(0.2)
	model.SetTopP(0.8)
	model.SetMaxOutputTokens(4096)

	return &Client{
		client:    client,
		generator: &vertexGenerator{model: model},
		modelName: cfg.GeminiModel,
		logger:    logger,
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() error {
	return c.client.Close()
}

// vertexGenerator is the production contentGenerator backed by a
// Vertex AI generative model.
type vertexGenerator struct {
	model *genai.GenerativeModel
}

func (g *vertexGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// EvaluateFit scores a resume against a job description across four
// weighted criteria. The response must be strict JSON; a malformed
// response is retried exactly once with an amended prompt. If the retry
// also fails, the zero-valued fallback result is returned so a single
// bad evaluation never aborts a batch.
func (c *Client) EvaluateFit(ctx context.Context, resumeText, jobDescription string) (models.EvaluationResult, error) {
	prompt := buildFitPrompt(resumeText, jobDescription)

	text, err := c.generate(ctx, prompt)
	if err == nil {
		if result, perr := parseEvaluation(text); perr == nil {
			return result, nil
		} else {
			c.logger.Warn("fit evaluation response was not valid JSON, retrying",
				zap.Error(perr))
		}
	} else {
		c.logger.Warn("fit evaluation call failed, retrying", zap.Error(err))
	}

	text, err = c.generate(ctx, prompt+retryAmendment)
	if err != nil {
		c.logger.Error("fit evaluation failed after retry, using fallback", zap.Error(err))
		return models.FallbackEvaluation(), nil
	}

	result, err := parseEvaluation(text)
	if err != nil {
		c.logger.Error("fit evaluation still malformed after retry, using fallback",
			zap.Error(err))
		return models.FallbackEvaluation(), nil
	}

	return result, nil
}

// EvaluateStats produces a standalone critique of a resume: strengths,
// weaknesses and per-skill proficiency estimates. Same one-retry
// discipline as EvaluateFit; the fallback carries a single explanatory
// entry per list instead of empty arrays.
func (c *Client) EvaluateStats(ctx context.Context, resumeText string) (*models.ResumeStats, error) {
	prompt := buildStatsPrompt(resumeText)

	text, err := c.generate(ctx, prompt)
	if err == nil {
		if stats, perr := parseStats(text); perr == nil {
			return stats, nil
		} else {
			c.logger.Warn("stats response was not valid JSON, retrying", zap.Error(perr))
		}
	} else {
		c.logger.Warn("stats call failed, retrying", zap.Error(err))
	}

	text, err = c.generate(ctx, prompt+retryAmendment)
	if err != nil {
		c.logger.Error("stats evaluation failed after retry, using fallback", zap.Error(err))
		return models.FallbackResumeStats(), nil
	}

	stats, err := parseStats(text)
	if err != nil {
		c.logger.Error("stats still malformed after retry, using fallback", zap.Error(err))
		return models.FallbackResumeStats(), nil
	}

	return stats, nil
}

// PreparationResources generates interview preparation content for a
// job description. Unlike the evaluators there is no degraded fallback;
// the caller surfaces the error.
func (c *Client) PreparationResources(ctx context.Context, jobDescription string) (*models.PreparationResources, error) {
	prompt := buildPreparationPrompt(jobDescription)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		text, err = c.generate(ctx, prompt+retryAmendment)
		if err != nil {
			return nil, fmt.Errorf("failed to generate preparation resources: %w", err)
		}
	}

	resources, err := parsePreparation(text)
	if err != nil {
		text, rerr := c.generate(ctx, prompt+retryAmendment)
		if rerr != nil {
			return nil, fmt.Errorf("failed to generate preparation resources: %w", rerr)
		}
		resources, err = parsePreparation(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse preparation resources: %w", err)
		}
	}

	return resources, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	text, err := c.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}
	return cleanJSON(text), nil
}

// Helper functions

func extractText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String()
}

func cleanJSON(text string) string {
	// Remove markdown code blocks if present
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
