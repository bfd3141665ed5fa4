package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// ToDocument converts a struct (or pointer to struct) into a Document via a
// JSON round-trip, honoring `json` tags. Numbers come back as float64, the
// same representation query matching and the stores operate on.
func ToDocument[T any](record T) (Document, error) {
	val := reflect.ValueOf(record)
	if !val.IsValid() {
		return nil, fmt.Errorf("input record cannot be nil")
	}
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, fmt.Errorf("input record cannot be a nil pointer")
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("input record must be a struct or pointer to struct, got %s", val.Kind())
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record into document: %w", err)
	}
	return doc, nil
}

// FromDocument converts a Document into a new instance of the struct type T,
// the inverse of ToDocument.
func FromDocument[T any](doc Document) (T, error) {
	var zero T
	if doc == nil {
		return zero, fmt.Errorf("input document cannot be nil")
	}

	typ := reflect.TypeOf(zero)
	if typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return zero, fmt.Errorf("type parameter must be a struct type")
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal document: %w", err)
	}

	var result T
	if err := json.Unmarshal(raw, &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal document into %T: %w", result, err)
	}
	return result, nil
}
