// Package artifacts persists evaluation runs as timestamped JSON files
// for offline inspection.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/quantgate/quantgate/internal/agents"
	"github.com/quantgate/quantgate/internal/pipeline"
)

// EvaluationArtifact is the on-disk record of one pipeline run.
type EvaluationArtifact struct {
	RunID     string                   `json:"run_id"`
	Symbol    string                   `json:"symbol,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
	Signals   map[string]agents.Signal `json:"signals"`
	Summary   pipeline.Summary         `json:"summary"`
}

// Writer writes artifacts under a base directory, one file per run.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = filepath.Join("artifacts", "evaluations")
	}
	return &Writer{dir: dir}
}

// WriteEvaluation stamps the run with a fresh id and persists it.
// Returns the run id and the written path.
func (w *Writer) WriteEvaluation(symbol string, signals map[string]agents.Signal, summary pipeline.Summary) (string, string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", "", fmt.Errorf("ensure artifacts dir: %w", err)
	}

	artifact := EvaluationArtifact{
		RunID:     uuid.NewString(),
		Symbol:    symbol,
		CreatedAt: time.Now().UTC(),
		Signals:   signals,
		Summary:   summary,
	}

	name := fmt.Sprintf("%s-%s.json", artifact.CreatedAt.Format("20060102-150405"), artifact.RunID)
	path := filepath.Join(w.dir, name)

	payload, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", "", fmt.Errorf("write artifact %s: %w", path, err)
	}

	return artifact.RunID, path, nil
}
