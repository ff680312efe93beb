package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	internal "github.com/seqlab/postag/postag"
	"github.com/seqlab/postag/postag/config"
	"github.com/seqlab/postag/postag/corpus"
	"github.com/seqlab/postag/postag/embedding"
	"github.com/seqlab/postag/postag/model"
	"github.com/seqlab/postag/postag/predict"
	"github.com/seqlab/postag/postag/runs"
	"github.com/seqlab/postag/postag/train"
	"github.com/seqlab/postag/postag/vocab"

	assert "github.com/ZanzyTHEbar/assert-lib"
)

func main() {
	var configPath string
	var interactive bool
	flag.StringVar(&configPath, "config", "", "path to config file (defaults to the standard search path)")
	flag.BoolVar(&interactive, "interactive", false, "drop into an interactive tagging prompt after training")
	flag.Parse()

	logger := internal.GetLogger()
	ctx := context.Background()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	splits, err := corpus.LoadSplits(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load dataset")
	}

	tokenSeqs := make([][]string, len(splits.Train))
	tagSeqs := make([][]string, len(splits.Train))
	for i, s := range splits.Train {
		tokenSeqs[i] = s.Tokens
		tagSeqs[i] = s.Tags
	}
	v := vocab.BuildVocabulary(tokenSeqs)
	labels := vocab.BuildLabelSet(tagSeqs)
	logger.Info().Int("vocab", v.Size()).Int("labels", labels.Size()).Msg("built vocabularies")

	provider := embedding.NewProvider(cfg.Embedding.Provider, cfg.Embedding.Dimensions, providerPath(cfg))
	table, err := embedding.BuildTable(ctx, provider, v)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build embedding table")
	}

	assertHandler := assert.NewAssertHandler()
	rows, cols := table.Dims()
	assertHandler.Assert(ctx, rows == v.Size(), "embedding table rows must match vocabulary size")
	assertHandler.Assert(ctx, cols == provider.Dimensions(), "embedding table width must match provider dimensions")
	assertHandler.Assert(ctx, labels.Size() > 0, "training split must contain at least one tag class")

	tagger, err := model.NewTagger(table, labels.Size(), cfg.Training.Seed)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize model")
	}

	var store runs.Store = runs.NoopStore{}
	if cfg.Runs.Enabled {
		sqlStore, err := runs.NewSQLiteStore(cfg.Runs.DSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open run database")
		}
		defer sqlStore.Close()
		store = sqlStore
	}

	batcher := corpus.NewBatcher(v, labels, cfg.Training.BatchSize)
	trainer := train.NewTrainer(tagger, batcher, cfg.Training, store)

	params := runs.Params{
		Epochs:       cfg.Training.Epochs,
		BatchSize:    cfg.Training.BatchSize,
		LearningRate: cfg.Training.LearningRate,
		Seed:         cfg.Training.Seed,
		Provider:     cfg.Embedding.Provider,
		Dimensions:   cfg.Embedding.Dimensions,
	}
	result, err := trainer.Run(ctx, params, splits)
	if err != nil {
		logger.Fatal().Err(err).Msg("training failed")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Training.ModelPath), 0o755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create model directory")
	}
	if err := model.Save(cfg.Training.ModelPath, tagger, v, labels); err != nil {
		logger.Fatal().Err(err).Msg("failed to save model")
	}

	logger.Info().
		Str("run", result.RunID).
		Float64("devAccuracy", result.DevAccuracy).
		Float64("testAccuracy", result.TestAccuracy).
		Dur("duration", result.Duration).
		Str("model", cfg.Training.ModelPath).
		Msg("training complete")

	if interactive {
		fmt.Println("Enter a sentence to tag (blank line to exit):")
		p := predict.NewPredictor(tagger, v, labels)
		if err := p.REPL(os.Stdin, os.Stdout); err != nil {
			logger.Fatal().Err(err).Msg("prompt failed")
		}
	}
}

// providerPath resolves the filesystem input of the configured embedding
// provider: the vector file in the cache directory for "cache", the model
// path for onnx providers.
func providerPath(cfg *config.Config) string {
	if strings.HasPrefix(strings.ToLower(cfg.Embedding.Provider), "onnx") {
		return cfg.Embedding.ModelPath
	}
	return filepath.Join(cfg.Embedding.CacheDir, cfg.Embedding.VectorFile)
}
