package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/arloliu/squash/errs"
)

type savedResults struct {
	Results []FileResult `json:"results"`
}

// SaveResults writes the recorded results to path as indented JSON.
func (a *Analyzer) SaveResults(path string) error {
	doc, err := json.MarshalIndent(savedResults{Results: a.Results()}, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode results: %w", err)
	}

	if err := os.WriteFile(path, doc, 0o644); err != nil { //nolint: gosec
		return fmt.Errorf("could not write results: %w", err)
	}

	a.log.Info().Str("path", path).Msg("analysis results saved")

	return nil
}

// LoadResults replaces the recorded results with those saved at path.
//
// Returns:
//   - error: errs.ErrNotFound if path does not exist, decode errors otherwise
func (a *Analyzer) LoadResults(path string) error {
	doc, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", errs.ErrNotFound, err)
	}
	if err != nil {
		return fmt.Errorf("could not read results: %w", err)
	}

	var saved savedResults
	if err := json.Unmarshal(doc, &saved); err != nil {
		return fmt.Errorf("could not decode results: %w", err)
	}

	a.mu.Lock()
	a.results = saved.Results
	a.mu.Unlock()

	a.log.Info().Str("path", path).Int("files", len(saved.Results)).Msg("analysis results loaded")

	return nil
}
