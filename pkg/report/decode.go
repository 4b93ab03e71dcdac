package report

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/churn"
)

//go:generate go run ../../tools/schemagen -o schema.json

//go:embed schema.json
var schemaJSON []byte

// ErrInvalidReport is returned when a JSON report does not match the report schema.
var ErrInvalidReport = errors.New("invalid report")

// DecodeJSON validates data against the report schema and decodes it.
func DecodeJSON(data []byte) ([]churn.FileMetric, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}

		return nil, fmt.Errorf("%w: %s", ErrInvalidReport, strings.Join(problems, "; "))
	}

	var metrics []churn.FileMetric

	err = json.Unmarshal(data, &metrics)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}

	return metrics, nil
}

// LoadJSON reads and decodes a JSON report file, compressed or not.
func LoadJSON(path string) ([]churn.FileMetric, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	return DecodeJSON(data)
}
