package viewstate

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FieldDescriptor describes one persisted field path and the inferred type of
// its default value.
type FieldDescriptor struct {
	Path string
	Type string
}

// CompatViolation records a field whose type changed in place between two
// descriptor sets.
type CompatViolation struct {
	Path     string
	PrevType string
	CurrType string
}

func (v CompatViolation) String() string {
	return fmt.Sprintf("%s: %s -> %s", v.Path, v.PrevType, v.CurrType)
}

// DeriveFieldDescriptors flattens a state record's JSON rendering into sorted
// field descriptors. The record is marshalled first so the descriptors see
// exactly the shape the codec persists.
func DeriveFieldDescriptors(record any) ([]FieldDescriptor, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("viewstate: marshal record for descriptors: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("viewstate: record is not a JSON object: %w", err)
	}
	descriptors := deriveFieldDescriptors(payload, "")
	if descriptors == nil {
		descriptors = []FieldDescriptor{}
	}
	return descriptors, nil
}

// CheckFieldCompat compares two descriptor sets and reports fields whose type
// changed without a rename. Added and removed paths are compatible by
// construction (defaults fill the former, decode drops the latter); an
// in-place type change is the one drift the storage layer cannot absorb.
func CheckFieldCompat(prev, curr []FieldDescriptor) []CompatViolation {
	currByPath := make(map[string]string, len(curr))
	for _, descriptor := range curr {
		currByPath[descriptor.Path] = descriptor.Type
	}
	var violations []CompatViolation
	for _, descriptor := range prev {
		currType, ok := currByPath[descriptor.Path]
		if !ok || currType == descriptor.Type {
			continue
		}
		violations = append(violations, CompatViolation{
			Path:     descriptor.Path,
			PrevType: descriptor.Type,
			CurrType: currType,
		})
	}
	return violations
}

func deriveFieldDescriptors(value any, prefix string) []FieldDescriptor {
	if value == nil {
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{{Path: prefix, Type: "null"}}
	}

	switch typed := value.(type) {
	case map[string]any:
		if len(typed) == 0 {
			return []FieldDescriptor{{Path: prefix, Type: "object"}}
		}
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var fields []FieldDescriptor
		for _, key := range keys {
			fields = append(fields, deriveFieldDescriptors(typed[key], joinPath(prefix, key))...)
		}
		return fields
	case []any:
		elementType := "any"
		if len(typed) > 0 {
			elementType = jsonTypeName(typed[0])
		}
		return []FieldDescriptor{{Path: prefix, Type: "[]" + elementType}}
	default:
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{{Path: prefix, Type: jsonTypeName(typed)}}
	}
}

func jsonTypeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}
