package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvWorkflowConcurrency      = "TAXON_WORKFLOW_CONCURRENCY"
	EnvWorkflowRatePerMinute    = "TAXON_WORKFLOW_RATE_PER_MINUTE"
	EnvWorkflowMaxContentLength = "TAXON_WORKFLOW_MAX_CONTENT_LENGTH"
	EnvWorkflowFetchBatchSize   = "TAXON_WORKFLOW_FETCH_BATCH_SIZE"
	EnvWorkflowDefaultPrompt    = "TAXON_WORKFLOW_DEFAULT_PROMPT"
)

// WorkflowConfig holds classification pipeline settings.
type WorkflowConfig struct {
	Concurrency      int    `toml:"concurrency"`
	RatePerMinute    int    `toml:"rate_per_minute"`
	MaxContentLength int    `toml:"max_content_length"`
	FetchBatchSize   int    `toml:"fetch_batch_size"`
	DefaultPrompt    string `toml:"default_prompt"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *WorkflowConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *WorkflowConfig) Merge(overlay *WorkflowConfig) {
	if overlay.Concurrency > 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.RatePerMinute > 0 {
		c.RatePerMinute = overlay.RatePerMinute
	}
	if overlay.MaxContentLength > 0 {
		c.MaxContentLength = overlay.MaxContentLength
	}
	if overlay.FetchBatchSize > 0 {
		c.FetchBatchSize = overlay.FetchBatchSize
	}
	if overlay.DefaultPrompt != "" {
		c.DefaultPrompt = overlay.DefaultPrompt
	}
}

func (c *WorkflowConfig) loadDefaults() {
	if c.Concurrency == 0 {
		c.Concurrency = 3
	}
	if c.RatePerMinute == 0 {
		c.RatePerMinute = 60
	}
	if c.MaxContentLength == 0 {
		c.MaxContentLength = 16000
	}
	if c.FetchBatchSize == 0 {
		c.FetchBatchSize = 50
	}
	if c.DefaultPrompt == "" {
		c.DefaultPrompt = "document-classification"
	}
}

func (c *WorkflowConfig) loadEnv() {
	if v := os.Getenv(EnvWorkflowConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency = n
		}
	}
	if v := os.Getenv(EnvWorkflowRatePerMinute); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RatePerMinute = n
		}
	}
	if v := os.Getenv(EnvWorkflowMaxContentLength); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxContentLength = n
		}
	}
	if v := os.Getenv(EnvWorkflowFetchBatchSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FetchBatchSize = n
		}
	}
	if v := os.Getenv(EnvWorkflowDefaultPrompt); v != "" {
		c.DefaultPrompt = v
	}
}

func (c *WorkflowConfig) validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.RatePerMinute < 1 {
		return fmt.Errorf("rate_per_minute must be positive")
	}
	if c.FetchBatchSize < 1 {
		return fmt.Errorf("fetch_batch_size must be positive")
	}
	return nil
}
