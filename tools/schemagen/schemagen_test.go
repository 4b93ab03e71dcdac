package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/churn"
)

func TestGenerateSchema_MatchesEmbeddedSchema(t *testing.T) {
	t.Parallel()

	generated, err := json.Marshal(generateSchema(churn.FileMetric{}))
	require.NoError(t, err)

	embedded, err := os.ReadFile(filepath.Join("..", "..", "pkg", "report", "schema.json"))
	require.NoError(t, err)

	assert.JSONEq(t, string(embedded), string(generated))
}

func TestWriteSchema(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "schema.json")

	require.NoError(t, writeSchema(path, generateSchema(&churn.FileMetric{})))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"line_count"`)
}
