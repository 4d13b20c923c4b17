package config

import (
	"fmt"
	"os"

	"github.com/dhg-platform/taxon/pkg/formatting"
	"github.com/dhg-platform/taxon/pkg/middleware"
	"github.com/dhg-platform/taxon/pkg/pagination"
)

const (
	EnvAPIBasePath      = "TAXON_API_BASE_PATH"
	EnvAPIMaxUploadSize = "TAXON_API_MAX_UPLOAD_SIZE"
)

// corsEnv and paginationEnv bind the nested config sections to their
// TAXON_ environment variable names.
var corsEnv = &middleware.CORSEnv{
	Enabled:          "TAXON_CORS_ENABLED",
	Origins:          "TAXON_CORS_ORIGINS",
	AllowedMethods:   "TAXON_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "TAXON_CORS_ALLOWED_HEADERS",
	AllowCredentials: "TAXON_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "TAXON_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "TAXON_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "TAXON_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, upload limit, CORS, and pagination settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
}

// MaxUploadSizeBytes parses the configured upload limit, falling back to
// 50MB when the value does not parse.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 50 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults and environment overrides, then finalizes the
// nested CORS and pagination sections.
func (c *APIConfig) Finalize() error {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}

	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}
