package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind is the storage type of a schema field.
type Kind int

const (
	Number Kind = iota
	String
	Boolean
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "Number"
	case String:
		return "String"
	case Boolean:
		return "Boolean"
	}
	return "Unknown"
}

type Field struct {
	Name string
	Kind Kind
}

// Schema lists the client writable fields of a collection. Server managed
// fields (_id, createdAt, updatedAt) are never part of a schema.
type Schema struct {
	Name   string
	Fields []Field
}

// Fields holds coerced values keyed by field name. A nil value means the
// client sent null and the field must be cleared.
type Fields map[string]any

// ValidationError reports every field of a payload that could not be
// coerced to its schema type.
type ValidationError struct {
	Schema string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return fmt.Sprintf("%s validation failed: %s", e.Schema, strings.Join(parts, ", "))
}

// Decode parses a JSON request body and coerces the known fields to their
// schema types. Unknown fields are dropped; an empty body is an empty
// payload.
func (s Schema) Decode(body []byte) (Fields, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Fields{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return nil, &ValidationError{
			Schema: s.Name,
			Fields: map[string]string{"body": "must be a JSON object"},
		}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ValidationError{
			Schema: s.Name,
			Fields: map[string]string{"body": "unexpected content after JSON object"},
		}
	}

	out := make(Fields, len(s.Fields))
	reasons := map[string]string{}
	for _, f := range s.Fields {
		v, ok := raw[f.Name]
		if !ok {
			continue
		}
		coerced, err := coerce(f.Kind, v)
		if err != nil {
			reasons[f.Name] = fmt.Sprintf("cast to %s failed for value %s", f.Kind, describe(v))
			continue
		}
		out[f.Name] = coerced
	}
	if len(reasons) > 0 {
		return nil, &ValidationError{Schema: s.Name, Fields: reasons}
	}
	return out, nil
}

func coerce(kind Kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch kind {
	case Number:
		return toNumber(v)
	case String:
		return toString(v)
	case Boolean:
		return toBoolean(v)
	}
	return nil, fmt.Errorf("unsupported kind %d", kind)
}

func toNumber(v any) (any, error) {
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		f, err = strconv.ParseFloat(s, 64)
	case bool:
		if t {
			return float64(1), nil
		}
		return float64(0), nil
	default:
		return nil, fmt.Errorf("not a number")
	}
	if err != nil {
		return nil, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("not a finite number")
	}
	return f, nil
}

func toString(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	}
	return nil, fmt.Errorf("not a string")
}

func toBoolean(v any) (any, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case json.Number:
		switch t.String() {
		case "1":
			return true, nil
		case "0":
			return false, nil
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
	}
	return nil, fmt.Errorf("not a boolean")
}

func describe(v any) string {
	switch t := v.(type) {
	case string:
		return strconv.Quote(t) + " (type string)"
	case json.Number:
		return t.String() + " (type number)"
	case map[string]any:
		return "(type object)"
	case []any:
		return "(type array)"
	}
	return fmt.Sprintf("%v", v)
}
