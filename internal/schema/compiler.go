package schema

import (
	"bytes"
	"context"
	"crypto/sha256"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	js "github.com/santhosh-tekuri/jsonschema/v5"
)

// Form names
const (
	FormCita = "cita"
	FormPQRS = "pqrs"
)

//go:embed forms/*.schema.json
var formFiles embed.FS

type Compiler struct {
	mu       sync.Mutex
	compiler *js.Compiler
	cache    *expirable.LRU[string, *js.Schema]
	forms    map[string]map[string]interface{}
}

// NewCompilerWithCache creates a new compiler with cache
func NewCompilerWithCache(maxSize int) *Compiler {
	c := js.NewCompiler()
	c.Draft = js.Draft7
	c.AssertFormat = true

	return &Compiler{
		compiler: c,
		cache:    expirable.NewLRU[string, *js.Schema](maxSize, nil, time.Hour),
		forms:    make(map[string]map[string]interface{}),
	}
}

// NewFormCompiler creates a compiler with the embedded form schemas registered and compiled
func NewFormCompiler(ctx context.Context) (*Compiler, error) {
	c := NewCompilerWithCache(16)

	for _, name := range []string{FormCita, FormPQRS} {
		raw, err := formFiles.ReadFile("forms/" + name + ".schema.json")
		if err != nil {
			return nil, fmt.Errorf("failed to read %s schema: %w", name, err)
		}
		if err := c.Register(ctx, name, raw); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register parses, compiles and stores a named schema
func (c *Compiler) Register(ctx context.Context, name string, raw []byte) error {
	var schema map[string]interface{}
	if err := json.Unmarshal(raw, &schema); err != nil {
		return fmt.Errorf("failed to parse %s schema: %w", name, err)
	}
	if err := c.Prepare(ctx, schema); err != nil {
		return fmt.Errorf("%s schema: %w", name, err)
	}

	c.mu.Lock()
	c.forms[name] = schema
	c.mu.Unlock()
	return nil
}

func (c *Compiler) key(schema map[string]interface{}) string {
	b, _ := json.Marshal(schema)
	return string(b)
}

// Prepare compiles and caches a schema
func (c *Compiler) Prepare(ctx context.Context, schema map[string]interface{}) error {
	_, err := c.compiled(schema)
	return err
}

func (c *Compiler) compiled(schema map[string]interface{}) (*js.Schema, error) {
	key := c.key(schema)
	if compiled, ok := c.cache.Get(key); ok {
		return compiled, nil
	}

	// js.Compiler is not safe for concurrent use
	c.mu.Lock()
	defer c.mu.Unlock()

	schemaBytes := []byte(key)
	sum := sha256.Sum256(schemaBytes)
	resourceURL := fmt.Sprintf("mem://schema/%x.json", sum[:8])
	if err := c.compiler.AddResource(resourceURL, bytes.NewReader(schemaBytes)); err != nil {
		return nil, fmt.Errorf("failed to add resource: %w", err)
	}

	compiled, err := c.compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	c.cache.Add(key, compiled)
	return compiled, nil
}

// Validate validates a value against a schema
func (c *Compiler) Validate(ctx context.Context, schema map[string]interface{}, value interface{}) error {
	compiled, err := c.compiled(schema)
	if err != nil {
		return err
	}

	// Round-trip through JSON so structs validate like decoded documents
	valueBytes, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	var valueRaw interface{}
	if err := json.Unmarshal(valueBytes, &valueRaw); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	if err := compiled.Validate(valueRaw); err != nil {
		var verr *js.ValidationError
		if errors.As(err, &verr) {
			return &FieldErrors{Fields: flatten(verr)}
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// ValidateForm validates a value against a registered form schema
func (c *Compiler) ValidateForm(ctx context.Context, name string, value interface{}) error {
	c.mu.Lock()
	schema, ok := c.forms[name]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown form schema: %s", name)
	}
	return c.Validate(ctx, schema, value)
}

// FieldErrors maps each invalid field to its first validation message
type FieldErrors struct {
	Fields map[string]string
}

func (e *FieldErrors) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var quotedName = regexp.MustCompile(`'([^']+)'`)

// flatten walks the error tree and keeps the leaf messages keyed by field name
func flatten(verr *js.ValidationError) map[string]string {
	fields := make(map[string]string)

	var walk func(e *js.ValidationError)
	walk = func(e *js.ValidationError) {
		if len(e.Causes) > 0 {
			for _, cause := range e.Causes {
				walk(cause)
			}
			return
		}

		field := strings.TrimPrefix(e.InstanceLocation, "/")
		if field == "" && strings.HasSuffix(e.KeywordLocation, "/required") {
			for _, m := range quotedName.FindAllStringSubmatch(e.Message, -1) {
				setFirst(fields, m[1], "is required")
			}
			return
		}
		if field == "" && strings.HasSuffix(e.KeywordLocation, "/additionalProperties") {
			for _, m := range quotedName.FindAllStringSubmatch(e.Message, -1) {
				setFirst(fields, m[1], "is not allowed")
			}
			return
		}
		if field == "" {
			field = "_"
		}
		setFirst(fields, field, e.Message)
	}
	walk(verr)

	return fields
}

func setFirst(m map[string]string, key, value string) {
	if _, ok := m[key]; !ok {
		m[key] = value
	}
}
