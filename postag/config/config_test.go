package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests the config package functionality
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	// Save original directory
	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)

	// Create temporary directory for testing
	tempDir, err := os.MkdirTemp("", "postag-config-test-*")
	require.NoError(suite.T(), err)
	suite.tempDir = tempDir

	// Change to temp directory
	err = os.Chdir(tempDir)
	require.NoError(suite.T(), err)

	// viper keeps global state between tests
	viper.Reset()
}

func (suite *ConfigTestSuite) TearDownTest() {
	// Change back to original directory
	if suite.origDir != "" {
		os.Chdir(suite.origDir)
	}

	// Clean up temporary directory
	if suite.tempDir != "" {
		os.RemoveAll(suite.tempDir)
	}
}

func (suite *ConfigTestSuite) TestLoadConfigWithDefaults() {
	// Load config without config file (should use defaults)
	cfg, err := LoadConfig("")

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), "data", cfg.Data.Dir)
	assert.Equal(suite.T(), "train.jsonl", cfg.Data.TrainFile)
	assert.Equal(suite.T(), "dev.jsonl", cfg.Data.DevFile)
	assert.Equal(suite.T(), "test.jsonl", cfg.Data.TestFile)

	assert.Equal(suite.T(), "hash", cfg.Embedding.Provider)
	assert.Equal(suite.T(), 100, cfg.Embedding.Dimensions)

	assert.Equal(suite.T(), 10, cfg.Training.Epochs)
	assert.Equal(suite.T(), 32, cfg.Training.BatchSize)
	assert.InDelta(suite.T(), 0.1, cfg.Training.LearningRate, 1e-12)
	assert.Equal(suite.T(), int64(42), cfg.Training.Seed)

	assert.False(suite.T(), cfg.Runs.Enabled)
}

func (suite *ConfigTestSuite) TestLoadConfigFromFile() {
	configYAML := `
data:
  dir: /corpora/ud-english
  trainFile: en-train.jsonl
embedding:
  provider: cache
  dimensions: 50
training:
  epochs: 3
  batchSize: 16
  learningRate: 0.05
runs:
  enabled: true
  dsn: "file::memory:?cache=shared"
`
	configPath := filepath.Join(suite.tempDir, "config.yaml")
	err := os.WriteFile(configPath, []byte(configYAML), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configPath)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), "/corpora/ud-english", cfg.Data.Dir)
	assert.Equal(suite.T(), "en-train.jsonl", cfg.Data.TrainFile)
	// Unset fields fall back to defaults
	assert.Equal(suite.T(), "dev.jsonl", cfg.Data.DevFile)

	assert.Equal(suite.T(), "cache", cfg.Embedding.Provider)
	assert.Equal(suite.T(), 50, cfg.Embedding.Dimensions)

	assert.Equal(suite.T(), 3, cfg.Training.Epochs)
	assert.Equal(suite.T(), 16, cfg.Training.BatchSize)
	assert.InDelta(suite.T(), 0.05, cfg.Training.LearningRate, 1e-12)

	assert.True(suite.T(), cfg.Runs.Enabled)
	assert.Equal(suite.T(), "file::memory:?cache=shared", cfg.Runs.DSN)
}

func (suite *ConfigTestSuite) TestSplitPaths() {
	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), filepath.Join("data", "train.jsonl"), cfg.TrainPath())
	assert.Equal(suite.T(), filepath.Join("data", "dev.jsonl"), cfg.DevPath())
	assert.Equal(suite.T(), filepath.Join("data", "test.jsonl"), cfg.TestPath())
}
