package config

import (
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/seqlab/postag/postag"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Training  TrainingConfig  `mapstructure:"training"`
	Runs      RunsConfig      `mapstructure:"runs"`
}

// DataConfig stores the location of the dataset splits.
type DataConfig struct {
	Dir       string `mapstructure:"dir"`
	TrainFile string `mapstructure:"trainFile"`
	DevFile   string `mapstructure:"devFile"`
	TestFile  string `mapstructure:"testFile"`
}

// EmbeddingConfig stores pretrained embedding settings.
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"`
	Dimensions int    `mapstructure:"dimensions"`
	CacheDir   string `mapstructure:"cacheDir"`
	VectorFile string `mapstructure:"vectorFile"`
	ModelPath  string `mapstructure:"modelPath"`
}

// TrainingConfig stores the training loop hyperparameters.
type TrainingConfig struct {
	Epochs       int     `mapstructure:"epochs"`
	BatchSize    int     `mapstructure:"batchSize"`
	LearningRate float64 `mapstructure:"learningRate"`
	Seed         int64   `mapstructure:"seed"`
	EvalWorkers  int     `mapstructure:"evalWorkers"`
	ModelPath    string  `mapstructure:"modelPath"`
}

// RunsConfig stores run-store connection details.
type RunsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("..")
		viper.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Set default values
	viper.SetDefault("data.dir", internal.DefaultDataDir)
	viper.SetDefault("data.trainFile", internal.DefaultTrainFile)
	viper.SetDefault("data.devFile", internal.DefaultDevFile)
	viper.SetDefault("data.testFile", internal.DefaultTestFile)

	viper.SetDefault("embedding.provider", "hash")
	viper.SetDefault("embedding.dimensions", 100)
	viper.SetDefault("embedding.cacheDir", internal.DefaultCacheDir)
	viper.SetDefault("embedding.vectorFile", "vectors.txt")
	viper.SetDefault("embedding.modelPath", "")

	viper.SetDefault("training.epochs", 10)
	viper.SetDefault("training.batchSize", 32)
	viper.SetDefault("training.learningRate", 0.1)
	viper.SetDefault("training.seed", 42)
	viper.SetDefault("training.evalWorkers", 4)
	viper.SetDefault("training.modelPath", internal.DefaultModelPath)

	viper.SetDefault("runs.enabled", false)
	viper.SetDefault("runs.dsn", "file:"+internal.DefaultRunsDBPath)

	viper.AutomaticEnv()                                   // Read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // e.g. training.batchSize becomes TRAINING_BATCHSIZE

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; defaults will be used. This is not an error
			// for the application to halt on.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &AppConfig, nil
}

// TrainPath returns the full path of the training split file.
func (c *Config) TrainPath() string { return filepath.Join(c.Data.Dir, c.Data.TrainFile) }

// DevPath returns the full path of the dev split file.
func (c *Config) DevPath() string { return filepath.Join(c.Data.Dir, c.Data.DevFile) }

// TestPath returns the full path of the test split file.
func (c *Config) TestPath() string { return filepath.Join(c.Data.Dir, c.Data.TestFile) }
