// Package schemas validates analysis output against the embedded JSON Schema.
package schemas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	rootschemas "github.com/jonathan/favor-advisor/schemas"
)

// Violation is one schema rule broken by a document.
type Violation struct {
	Field   string // dotted path, "(root)" for the document itself
	Message string
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Schema     string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d violation(s)", e.Schema, len(e.Violations))
	for _, v := range e.Violations {
		fmt.Fprintf(&sb, "\n  %s: %s", v.Field, v.Message)
	}
	return sb.String()
}

// SchemaError reports an embedded schema that cannot be read or compiled.
type SchemaError struct {
	Schema string
	Cause  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema %s: %v", e.Schema, e.Cause)
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// compiledSchema compiles an embedded schema on first use.
type compiledSchema struct {
	name   string
	once   sync.Once
	schema *gojsonschema.Schema
	err    error
}

func (c *compiledSchema) get() (*gojsonschema.Schema, error) {
	c.once.Do(func() {
		data, err := fs.ReadFile(rootschemas.FS, c.name)
		if err != nil {
			c.err = &SchemaError{Schema: c.name, Cause: err}
			return
		}
		c.schema, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			c.err = &SchemaError{Schema: c.name, Cause: err}
		}
	})
	return c.schema, c.err
}

var (
	registryMu sync.Mutex
	registry   = map[string]*compiledSchema{}
)

func lookup(name string) *compiledSchema {
	registryMu.Lock()
	defer registryMu.Unlock()
	c, ok := registry[name]
	if !ok {
		c = &compiledSchema{name: name}
		registry[name] = c
	}
	return c
}

// ValidateJSONBytes validates a JSON document against the named embedded schema.
func ValidateJSONBytes(schemaName string, data []byte) error {
	schema, err := lookup(schemaName).get()
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("failed to read JSON document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Schema: schemaName}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Violations = append(verr.Violations, Violation{Field: field, Message: desc.Description()})
	}
	return verr
}

// ValidateAnalysisResult marshals v and validates it as an analysis result.
func ValidateAnalysisResult(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis result: %w", err)
	}
	return ValidateAnalysisJSON(data)
}

// ValidateAnalysisJSON validates encoded analysis result JSON.
func ValidateAnalysisJSON(data []byte) error {
	return ValidateJSONBytes(rootschemas.AnalysisResult, data)
}

// ValidateAnalysisFile validates an analysis result file on disk.
func ValidateAnalysisFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("analysis file not found: %s", path)
	}
	if err != nil {
		return fmt.Errorf("failed to read analysis file: %w", err)
	}
	return ValidateAnalysisJSON(data)
}
