package corpus

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/seqlab/postag/postag/config"
)

// maxLineBytes bounds a single JSON-lines record; treebank sentences are
// short but scanner default of 64KiB is too tight for some corpora.
const maxLineBytes = 1 << 20

// LoadFile reads a JSON-lines dataset file, one object per line with
// "tokens" and "tags" fields. Blank lines are skipped. A malformed or
// misaligned record fails the whole load with its line number.
func LoadFile(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	var samples []Sample
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var s Sample
		if err := json.Unmarshal([]byte(line), &s); err != nil {
			return nil, fmt.Errorf("%s:%d: decode record: %w", path, lineNo, err)
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return samples, nil
}

// LoadSplits loads the train/dev/test splits from the configured data
// directory. Train is required; dev and test are optional and logged
// when absent.
func LoadSplits(cfg *config.Config) (*Splits, error) {
	train, err := LoadFile(cfg.TrainPath())
	if err != nil {
		return nil, err
	}

	splits := &Splits{Train: train}

	if dev, err := LoadFile(cfg.DevPath()); err == nil {
		splits.Dev = dev
	} else if errors.Is(err, os.ErrNotExist) {
		slog.Warn("Dev split not found, skipping", "path", cfg.DevPath())
	} else {
		return nil, err
	}

	if test, err := LoadFile(cfg.TestPath()); err == nil {
		splits.Test = test
	} else if errors.Is(err, os.ErrNotExist) {
		slog.Warn("Test split not found, skipping", "path", cfg.TestPath())
	} else {
		return nil, err
	}

	slog.Info("Loaded dataset splits",
		"train", len(splits.Train),
		"dev", len(splits.Dev),
		"test", len(splits.Test))

	return splits, nil
}
