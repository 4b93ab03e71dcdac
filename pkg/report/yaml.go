package report

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/churn"
)

const yamlIndent = 2

// RenderYAML writes metrics as a YAML sequence with the same keys as the JSON report.
func RenderYAML(w io.Writer, metrics []churn.FileMetric) error {
	if metrics == nil {
		metrics = []churn.FileMetric{}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(yamlIndent)

	err := enc.Encode(metrics)
	if err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("close yaml encoder: %w", err)
	}

	return nil
}
