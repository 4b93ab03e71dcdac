// Package main generates the JSON schema of the report written by --format json.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/churn"
)

// Schema represents a JSON Schema.
type Schema struct {
	Schema               string             `json:"$schema,omitempty"`
	Title                string             `json:"title,omitempty"`
	Type                 string             `json:"type,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	MinLength            *int               `json:"minLength,omitempty"`
	Minimum              *int               `json:"minimum,omitempty"`
}

const reportTitle = "repo-analyzer report"

var output string

func main() {
	flag.StringVar(&output, "o", "pkg/report/schema.json", "Output path for the report schema")
	flag.Parse()

	err := writeSchema(output, generateSchema(churn.FileMetric{}))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing schema: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", output)
}

// generateSchema describes a JSON array of v.
func generateSchema(v any) *Schema {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return &Schema{
		Schema: "http://json-schema.org/draft-07/schema#",
		Title:  reportTitle,
		Type:   "array",
		Items:  structSchema(t),
	}
}

// structSchema closes the object: report entries carry exactly their fields.
func structSchema(t reflect.Type) *Schema {
	props := make(map[string]*Schema)

	var required []string

	for i := range t.NumField() {
		field := t.Field(i)
		jsonTag := field.Tag.Get("json")

		if jsonTag == "-" || jsonTag == "" {
			continue
		}

		parts := strings.Split(jsonTag, ",")
		jsonName := parts[0]
		isOmitempty := len(parts) > 1 && parts[1] == "omitempty"

		props[jsonName] = typeToSchema(field.Type)

		if !isOmitempty {
			required = append(required, jsonName)
		}
	}

	closed := false

	return &Schema{
		Type:                 "object",
		Required:             required,
		AdditionalProperties: &closed,
		Properties:           props,
	}
}

// typeToSchema maps field types. Strings are non-empty paths and integers are
// counts, so both get lower bounds.
func typeToSchema(t reflect.Type) *Schema {
	switch t.Kind() {
	case reflect.String:
		minLength := 1

		return &Schema{Type: "string", MinLength: &minLength}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		minimum := 0

		return &Schema{Type: "integer", Minimum: &minimum}

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}

	case reflect.Bool:
		return &Schema{Type: "boolean"}

	case reflect.Slice:
		return &Schema{Type: "array", Items: typeToSchema(t.Elem())}

	case reflect.Struct:
		return structSchema(t)

	case reflect.Ptr:
		return typeToSchema(t.Elem())

	default:
		return &Schema{Type: "object"}
	}
}

func writeSchema(path string, schema *Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	return os.WriteFile(path, append(data, '\n'), 0o644)
}
