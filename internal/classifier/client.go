package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/dhg-platform/taxon/pkg/retry"
)

type client struct {
	genai  *genai.Client
	model  string
	logger *slog.Logger

	timeout time.Duration
	policy  retry.Policy
}

// New creates a classification client backed by the Gemini API.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (System, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &client{
		genai:   gc,
		model:   cfg.Model,
		logger:  logger.With("system", "classifier"),
		timeout: cfg.Timeout(),
		policy:  cfg.RetryPolicy(),
	}, nil
}

func (c *client) Model() string {
	return c.model
}

func (c *client) Classify(ctx context.Context, prompt string) (*RawResponse, error) {
	var raw *RawResponse

	err := retry.Do(ctx, c.policy, Retryable, func(ctx context.Context) error {
		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		start := time.Now()
		result, err := c.genai.Models.GenerateContent(
			reqCtx,
			c.model,
			genai.Text(prompt),
			nil,
		)
		latency := time.Since(start)

		if err != nil {
			mapped := mapError(err)
			c.logger.Warn("classification request failed",
				"model", c.model,
				"latency", latency,
				"error", mapped,
			)
			return mapped
		}

		text := result.Text()
		if text == "" {
			return fmt.Errorf("%w: empty completion", ErrServer)
		}

		raw = &RawResponse{
			Content: text,
			Model:   c.model,
			Latency: latency,
		}

		c.logger.Debug("classification response received",
			"model", c.model,
			"latency", latency,
			"length", len(text),
		)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return raw, nil
}

// mapError folds SDK and transport failures into the client error taxonomy.
func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
		case apiErr.Code >= 500:
			return fmt.Errorf("%w: %d %s", ErrServer, apiErr.Code, apiErr.Message)
		case apiErr.Code >= 400:
			return fmt.Errorf("%w: %d %s", ErrRequest, apiErr.Code, apiErr.Message)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrRequest, err)
}
