package main

import (
	"flag"
	"fmt"
	"os"

	internal "github.com/seqlab/postag/postag"
	"github.com/seqlab/postag/postag/config"
	"github.com/seqlab/postag/postag/model"
	"github.com/seqlab/postag/postag/predict"
)

func main() {
	var configPath string
	var modelPath string
	flag.StringVar(&configPath, "config", "", "path to config file (defaults to the standard search path)")
	flag.StringVar(&modelPath, "model", "", "path to a trained model file (overrides config)")
	flag.Parse()

	logger := internal.GetLogger()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if modelPath == "" {
		modelPath = cfg.Training.ModelPath
	}

	tagger, v, labels, err := model.Load(modelPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load model")
	}
	logger.Info().Str("model", modelPath).Int("vocab", v.Size()).Int("labels", labels.Size()).Msg("model loaded")

	fmt.Println("Enter a sentence to tag (blank line to exit):")
	p := predict.NewPredictor(tagger, v, labels)
	if err := p.REPL(os.Stdin, os.Stdout); err != nil {
		logger.Fatal().Err(err).Msg("prompt failed")
	}
}
