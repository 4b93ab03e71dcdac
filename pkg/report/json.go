package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/churn"
)

// RenderJSON writes metrics as a two-space indented JSON array followed by a
// newline. An empty selection renders as [].
func RenderJSON(w io.Writer, metrics []churn.FileMetric) error {
	if metrics == nil {
		metrics = []churn.FileMetric{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(metrics)
	if err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}

	return nil
}
