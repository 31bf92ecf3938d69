package viewstate

import (
	"reflect"
	"testing"
)

// Descriptor pins: these record the persisted shape of every page kind. A
// failure here means a field's type changed in place, which old stored
// payloads cannot survive. Rename the field instead of changing it.
func TestExperimentPageDescriptorsPinned(t *testing.T) {
	descriptors, err := DeriveFieldDescriptors(DefaultExperimentPageState())
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	want := []FieldDescriptor{
		{Path: "lifecycle_filter", Type: "string"},
		{Path: "metric_key_filter_string", Type: "string"},
		{Path: "order_by_asc", Type: "bool"},
		{Path: "order_by_key", Type: "null"},
		{Path: "param_key_filter_string", Type: "string"},
		{Path: "search_input", Type: "string"},
		{Path: "start_time_filter", Type: "string"},
	}
	if !reflect.DeepEqual(descriptors, want) {
		t.Fatalf("descriptors drifted:\nwant %v\ngot  %v", want, descriptors)
	}
}

func TestExperimentViewDescriptorsPinned(t *testing.T) {
	descriptors, err := DeriveFieldDescriptors(DefaultExperimentViewState())
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	want := []FieldDescriptor{
		{Path: "runs_expanded", Type: "object"},
		{Path: "show_multi_columns", Type: "bool"},
		{Path: "unbagged.metrics", Type: "null"},
		{Path: "unbagged.params", Type: "null"},
	}
	if !reflect.DeepEqual(descriptors, want) {
		t.Fatalf("descriptors drifted:\nwant %v\ngot  %v", want, descriptors)
	}
}

func TestCheckFieldCompatFlagsInPlaceTypeChange(t *testing.T) {
	prev := []FieldDescriptor{
		{Path: "line_smoothness", Type: "number"},
		{Path: "x_axis", Type: "string"},
	}
	curr := []FieldDescriptor{
		{Path: "line_smoothness", Type: "string"},
		{Path: "x_axis", Type: "string"},
	}

	violations := CheckFieldCompat(prev, curr)
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %v", violations)
	}
	if violations[0].Path != "line_smoothness" || violations[0].PrevType != "number" || violations[0].CurrType != "string" {
		t.Fatalf("unexpected violation %v", violations[0])
	}
}

func TestCheckFieldCompatAllowsAddAndRemove(t *testing.T) {
	prev := []FieldDescriptor{
		{Path: "removed_field", Type: "string"},
		{Path: "kept", Type: "bool"},
	}
	curr := []FieldDescriptor{
		{Path: "kept", Type: "bool"},
		{Path: "added_field", Type: "number"},
	}

	if violations := CheckFieldCompat(prev, curr); violations != nil {
		t.Fatalf("expected no violations, got %v", violations)
	}
}

func TestCurrentSchemasAreSelfCompatible(t *testing.T) {
	for _, kind := range Kinds() {
		record, ok := DefaultState(kind)
		if !ok {
			t.Fatalf("no default registered for %q", kind)
		}
		descriptors, err := DeriveFieldDescriptors(record)
		if err != nil {
			t.Fatalf("%s: derive: %v", kind, err)
		}
		if len(descriptors) == 0 {
			t.Fatalf("%s: expected at least one field", kind)
		}
		if violations := CheckFieldCompat(descriptors, descriptors); violations != nil {
			t.Fatalf("%s: self-compat violations %v", kind, violations)
		}
	}
}
