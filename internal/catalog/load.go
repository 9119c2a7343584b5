package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/career-recommender/internal/schemas"
	"github.com/jonathan/career-recommender/internal/types"
)

// Format is a catalog serialization format
type Format string

// Supported catalog formats
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var validate = validator.New()

// FormatFromPath returns the catalog format implied by the file extension of path
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported catalog extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// Load reads and validates the catalog at path
func Load(path string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "unknown format", Cause: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "failed to read file", Cause: err}
	}

	return Parse(data, format, path)
}

// Parse validates catalog data in the given format. name identifies the data in errors.
// Validation runs the JSON Schema, then struct rules, then cross references.
func Parse(data []byte, format Format, name string) (*Catalog, error) {
	doc, err := toJSON(data, format)
	if err != nil {
		return nil, &LoadError{Path: name, Reason: "malformed " + string(format), Cause: err}
	}

	if err := schemas.ValidateCatalog(doc); err != nil {
		return nil, &LoadError{Path: name, Reason: "schema validation failed", Cause: err}
	}

	var file types.CatalogFile
	if err := json.Unmarshal(doc, &file); err != nil {
		return nil, &LoadError{Path: name, Reason: "failed to decode catalog", Cause: err}
	}

	if err := validate.Struct(file); err != nil {
		return nil, &LoadError{Path: name, Reason: "invalid catalog record", Cause: err}
	}

	return New(file, name)
}

func toJSON(data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		if !json.Valid(data) {
			return nil, fmt.Errorf("invalid JSON")
		}
		return data, nil
	case FormatYAML:
		var raw interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if raw == nil {
			return nil, fmt.Errorf("empty document")
		}
		converted, err := stringKeys(raw)
		if err != nil {
			return nil, err
		}
		return json.Marshal(converted)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// stringKeys converts YAML maps into JSON-compatible maps with string keys.
func stringKeys(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			converted, err := stringKeys(item)
			if err != nil {
				return nil, err
			}
			out[k] = converted
		}
		return out, nil
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			converted, err := stringKeys(item)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = converted
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			converted, err := stringKeys(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	default:
		return val, nil
	}
}
