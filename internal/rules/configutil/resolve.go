// Package configutil turns the loosely typed option tables found in config
// files into a rule's typed options, and validates them against the rule's
// JSON Schema.
package configutil

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	gjsonschema "github.com/google/jsonschema-go/jsonschema"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// Resolve decodes opts into a T and fills every field the user left at its
// zero value from defaults. An explicitly empty (non-nil) slice is kept, so a
// user can clear a default list. Undecodable options yield defaults.
func Resolve[T any](opts map[string]any, defaults T) T {
	if len(opts) == 0 {
		return defaults
	}

	// "/" keeps hyphenated and dotted option names intact.
	k := koanf.New("/")
	if err := k.Load(confmap.Provider(opts, "/"), nil); err != nil {
		return defaults
	}
	var out T
	if err := k.Unmarshal("", &out); err != nil {
		return defaults
	}

	dst := reflect.ValueOf(&out).Elem()
	if dst.Kind() != reflect.Struct {
		return out
	}
	src := reflect.ValueOf(defaults)
	for i := range dst.NumField() {
		if f := dst.Field(i); f.CanSet() && f.IsZero() {
			f.Set(src.Field(i))
		}
	}
	return out
}

// Coerce accepts a T, a *T, or a raw option table and returns typed options.
// Anything else, including a nil *T, yields defaults.
func Coerce[T any](config any, defaults T) T {
	switch v := config.(type) {
	case T:
		return v
	case *T:
		if v != nil {
			return *v
		}
	case map[string]any:
		return Resolve(v, defaults)
	}
	return defaults
}

var compiled sync.Map // schema JSON -> *gjsonschema.Resolved

// ValidateWithSchema checks config against schema. A nil schema or a nil
// config passes.
func ValidateWithSchema(config any, schema map[string]any) error {
	if schema == nil || config == nil {
		return nil
	}
	if rv := reflect.ValueOf(config); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}

	resolved, err := compile(schema)
	if err != nil {
		return err
	}

	// Round-trip through JSON so typed structs validate like decoded TOML.
	data, err := json.Marshal(config)
	if err != nil {
		return err
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return err
	}
	return resolved.Validate(instance)
}

func compile(schema map[string]any) (*gjsonschema.Resolved, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	key := string(data)
	if r, ok := compiled.Load(key); ok {
		return r.(*gjsonschema.Resolved), nil //nolint:forcetypeassert
	}

	var s gjsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	resolved, err := s.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve schema: %w", err)
	}
	compiled.Store(key, resolved)
	return resolved, nil
}
