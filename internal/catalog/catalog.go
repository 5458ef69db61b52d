// Package catalog loads product catalogs from YAML and JSON files.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"github.com/supplelab/tierank/schema"
	"gopkg.in/yaml.v3"
)

// productValidate checks catalog records against the struct tags on schema.Product.
var productValidate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their catalog names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// document is the wrapped catalog form: {products: [...]}.
type document struct {
	Products []schema.Product `json:"products" yaml:"products"`
}

// Load expands the glob patterns, decodes every matched file and returns the
// validated products ordered by ID. Duplicate IDs across files are rejected.
func Load(patterns []string) ([]schema.Product, error) {
	files, err := ExpandPatterns(patterns)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string)
	var products []schema.Product
	for _, file := range files {
		decoded, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		for _, p := range decoded {
			if prev, ok := seen[p.ID]; ok {
				return nil, fmt.Errorf("duplicate product id %q in %s (first seen in %s)", p.ID, file, prev)
			}
			seen[p.ID] = file
			products = append(products, p)
		}
	}

	if len(products) == 0 {
		return nil, errors.New("catalog contains no products")
	}
	slices.SortFunc(products, func(a, b schema.Product) int {
		return strings.Compare(a.ID, b.ID)
	})
	return products, nil
}

// ExpandPatterns resolves doublestar globs (e.g. catalog/**/*.yaml) into a sorted,
// de-duplicated file list. A pattern matching nothing is an error.
func ExpandPatterns(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid catalog pattern %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("error evaluating pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("catalog pattern %q matched no files", pattern)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// LoadFile decodes and validates the products of one catalog file.
func LoadFile(path string) ([]schema.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var products []schema.Product
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		products, err = decodeJSON(data)
	case ".yaml", ".yml":
		products, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q for %s (want .yaml, .yml or .json)", filepath.Ext(path), path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", path, err)
	}

	for i := range products {
		if err := productValidate.Struct(products[i]); err != nil {
			return nil, fmt.Errorf("invalid product #%d (%q) in %s: %w", i+1, products[i].ID, path, err)
		}
	}
	return products, nil
}

// decodeJSON accepts either a bare product list or the wrapped document.
func decodeJSON(data []byte) ([]schema.Product, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var products []schema.Product
		err := json.Unmarshal(trimmed, &products)
		return products, err
	}
	var doc document
	err := json.Unmarshal(trimmed, &doc)
	return doc.Products, err
}

// decodeYAML accepts either a bare product list or the wrapped document.
func decodeYAML(data []byte) ([]schema.Product, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil
	}

	node := root.Content[0]
	switch node.Kind {
	case yaml.SequenceNode:
		var products []schema.Product
		err := node.Decode(&products)
		return products, err
	case yaml.MappingNode:
		var doc document
		err := node.Decode(&doc)
		return doc.Products, err
	default:
		return nil, fmt.Errorf("line %d: expected a product list or a products key", node.Line)
	}
}
