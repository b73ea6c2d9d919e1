package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantgate/quantgate/internal/agents"
	"github.com/quantgate/quantgate/internal/pipeline"
)

func TestWriter_WriteEvaluation(t *testing.T) {
	dir := t.TempDir()
	writer := NewWriter(dir)

	signals := map[string]agents.Signal{
		"regime_agent": {AgentID: "regime_agent", Score: 90, Reasons: []string{"Normal regime"}},
	}
	summary := pipeline.Summary{
		OverallScore: 90,
		Decision:     pipeline.DecisionPass,
		TopReasons:   []string{"Normal regime"},
		AgentCount:   1,
	}

	runID, path, err := writer.WriteEvaluation("AAPL", signals, summary)
	require.NoError(t, err)

	_, parseErr := uuid.Parse(runID)
	assert.NoError(t, parseErr, "run id should be a uuid")
	assert.True(t, strings.HasPrefix(path, dir))
	assert.Contains(t, filepath.Base(path), runID)

	payload, err := os.ReadFile(path)
	require.NoError(t, err)

	var artifact EvaluationArtifact
	require.NoError(t, json.Unmarshal(payload, &artifact))
	assert.Equal(t, runID, artifact.RunID)
	assert.Equal(t, "AAPL", artifact.Symbol)
	assert.Equal(t, pipeline.DecisionPass, artifact.Summary.Decision)
	assert.Equal(t, 90.0, artifact.Signals["regime_agent"].Score)
	assert.False(t, artifact.CreatedAt.IsZero())
}

func TestWriter_CreatesNestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	writer := NewWriter(dir)

	_, path, err := writer.WriteEvaluation("", nil, pipeline.Summary{Decision: pipeline.DecisionPass})
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestWriter_DistinctRunIDs(t *testing.T) {
	writer := NewWriter(t.TempDir())

	id1, _, err := writer.WriteEvaluation("", nil, pipeline.Summary{})
	require.NoError(t, err)
	id2, _, err := writer.WriteEvaluation("", nil, pipeline.Summary{})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}
