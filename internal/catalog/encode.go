package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Encode serializes c back to its catalog file shape.
// Loading the output yields a catalog with the same definitions.
func Encode(c *Catalog, format Format) ([]byte, error) {
	file := c.File()
	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(file, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog as JSON: %w", err)
		}
		return append(out, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(file); err != nil {
			return nil, fmt.Errorf("failed to encode catalog as YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode catalog as YAML: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
