package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sidkoko/discord-copilot/internal/config"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("DB_HOST", "test-host")
	defer os.Unsetenv("DB_HOST")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "test-host", cfg.DBHost)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, 600, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.ChunkOverlap)
	assert.Equal(t, 5, cfg.TopKRetrieval)
	assert.Equal(t, 1536, cfg.EmbeddingDimensions)
	assert.Equal(t, float32(0.5), cfg.SimilarityThreshold)
	assert.Equal(t, 200, cfg.MemoryWordBudget)
}

func TestLoadConfig_FromEnvFile(t *testing.T) {
	content := []byte("DB_HOST=loaded-from-file")
	err := os.WriteFile(".env", content, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(".env")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "loaded-from-file", cfg.DBHost)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"Valid", func(c *config.Config) {}, false},
		{"Missing DB Host", func(c *config.Config) { c.DBHost = "" }, true},
		{"Missing DB Name", func(c *config.Config) { c.DBName = "" }, true},
		{"Zero Dimensions", func(c *config.Config) { c.EmbeddingDimensions = 0 }, true},
		{"Zero Chunk Size", func(c *config.Config) { c.ChunkSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				DBHost:              "h",
				DBUser:              "u",
				DBName:              "d",
				EmbeddingDimensions: 1536,
				ChunkSize:           600,
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, config.ErrMissingRequired)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
