package state_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	viewstate "github.com/runboard/viewstate"
	"github.com/runboard/viewstate/pkg/state"
)

func newPageCodec(store state.Store, opts ...state.CodecOption[viewstate.ExperimentPageState]) *state.Codec[viewstate.ExperimentPageState] {
	return state.NewCodec(store, viewstate.DefaultExperimentPageState, opts...)
}

func pageRef(contextKey string) state.Ref {
	return state.Ref{Kind: string(viewstate.KindExperimentPage), ContextKey: contextKey}
}

func TestRefIdentifier(t *testing.T) {
	id, err := pageRef("1234").Identifier()
	if err != nil {
		t.Fatalf("identifier: %v", err)
	}
	if id != "experiment-page/1234" {
		t.Fatalf("unexpected identifier %q", id)
	}

	id, err = state.Ref{Kind: "experiment-page"}.Identifier()
	if err != nil {
		t.Fatalf("identifier: %v", err)
	}
	if id != "experiment-page" {
		t.Fatalf("unexpected identifier %q", id)
	}

	if _, err := (state.Ref{ContextKey: "1234"}).Identifier(); !errors.Is(err, state.ErrKindRequired) {
		t.Fatalf("expected ErrKindRequired, got %v", err)
	}
}

func TestDecodeEmptyStoreReturnsDefaults(t *testing.T) {
	codec := newPageCodec(state.NewMemoryStore())

	got := codec.Decode(context.Background(), pageRef("1234"))
	if !reflect.DeepEqual(got, viewstate.DefaultExperimentPageState()) {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	store := state.NewMemoryStore()
	codec := newPageCodec(store)
	ref := pageRef("1234")

	orderBy := "params.`alpha`"
	record := viewstate.DefaultExperimentPageState()
	record.SearchInput = "metrics.rmse < 1"
	record.OrderByKey = &orderBy
	record.OrderByAsc = true

	codec.Encode(context.Background(), ref, record)
	got := codec.Decode(context.Background(), ref)
	if !reflect.DeepEqual(got, record) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", record, got)
	}
}

func TestDecodeOrderByScenario(t *testing.T) {
	store := state.NewMemoryStore()
	codec := newPageCodec(store)
	ref := pageRef("1234")

	// First visit: nothing stored, defaults apply, OrderByKey is unset.
	record := codec.Decode(context.Background(), ref)
	if record.OrderByKey != nil {
		t.Fatalf("expected nil OrderByKey, got %v", *record.OrderByKey)
	}

	orderBy := "params.`alpha`"
	record.OrderByKey = &orderBy
	record.OrderByAsc = true
	codec.Encode(context.Background(), ref, record)

	got := codec.Decode(context.Background(), ref)
	if got.OrderByKey == nil || *got.OrderByKey != "params.`alpha`" {
		t.Fatalf("expected order-by key preserved, got %v", got.OrderByKey)
	}
	if !got.OrderByAsc {
		t.Fatal("expected ascending order preserved")
	}
	if got.LifecycleFilter != viewstate.LifecycleFilterActive || got.StartTimeFilter != viewstate.StartTimeFilterAll {
		t.Fatalf("expected untouched fields at defaults, got %+v", got)
	}
}

func TestDecodeMissingFieldsKeepDefaults(t *testing.T) {
	store := state.NewMemoryStore()
	codec := newPageCodec(store)
	ref := pageRef("1234")

	if err := store.Save(context.Background(), "experiment-page/1234", `{"search_input":"stored query"}`); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := codec.Decode(context.Background(), ref)
	if got.SearchInput != "stored query" {
		t.Fatalf("expected stored value, got %q", got.SearchInput)
	}
	if got.LifecycleFilter != viewstate.LifecycleFilterActive {
		t.Fatalf("expected default lifecycle filter, got %q", got.LifecycleFilter)
	}
	if got.StartTimeFilter != viewstate.StartTimeFilterAll {
		t.Fatalf("expected default start-time filter, got %q", got.StartTimeFilter)
	}
}

func TestDecodeDropsUnknownFields(t *testing.T) {
	store := state.NewMemoryStore()
	codec := newPageCodec(store)
	ref := pageRef("1234")

	if err := store.Save(context.Background(), "experiment-page/1234",
		`{"search_input":"q","dropped_in_v2":{"nested":true}}`); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := codec.Decode(context.Background(), ref)
	if got.SearchInput != "q" {
		t.Fatalf("expected known field applied, got %q", got.SearchInput)
	}

	// Writing back must leave no trace of the unknown field.
	codec.Encode(context.Background(), ref, got)
	payload, ok, err := store.Load(context.Background(), "experiment-page/1234")
	if err != nil || !ok {
		t.Fatalf("load: ok=%t err=%v", ok, err)
	}
	if strings.Contains(payload, "dropped_in_v2") {
		t.Fatalf("unknown field survived re-encode: %s", payload)
	}
}

func TestDecodeMalformedPayloadReturnsDefaults(t *testing.T) {
	store := state.NewMemoryStore()
	var events []state.LogEvent
	codec := newPageCodec(store, state.WithLogger[viewstate.ExperimentPageState](
		state.LoggerFunc(func(event state.LogEvent) { events = append(events, event) })))
	ref := pageRef("1234")

	if err := store.Save(context.Background(), "experiment-page/1234", `{{not json`); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := codec.Decode(context.Background(), ref)
	if !reflect.DeepEqual(got, viewstate.DefaultExperimentPageState()) {
		t.Fatalf("expected defaults, got %+v", got)
	}
	if len(events) != 1 || events[0].Op != "decode" {
		t.Fatalf("expected one decode event, got %+v", events)
	}
}

func TestDecodeTypeMismatchDegradesToFieldDefault(t *testing.T) {
	store := state.NewMemoryStore()
	codec := newPageCodec(store)
	ref := pageRef("1234")

	if err := store.Save(context.Background(), "experiment-page/1234",
		`{"lifecycle_filter":42,"search_input":"kept"}`); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := codec.Decode(context.Background(), ref)
	if got.LifecycleFilter != viewstate.LifecycleFilterActive {
		t.Fatalf("expected mismatched field at default, got %q", got.LifecycleFilter)
	}
	if got.SearchInput != "kept" {
		t.Fatalf("expected sibling field applied, got %q", got.SearchInput)
	}
}

func TestEncodeOverwritesPriorValue(t *testing.T) {
	store := state.NewMemoryStore()
	codec := newPageCodec(store)
	ref := pageRef("1234")

	first := viewstate.DefaultExperimentPageState()
	first.SearchInput = "first"
	codec.Encode(context.Background(), ref, first)

	second := viewstate.DefaultExperimentPageState()
	second.SearchInput = "second"
	codec.Encode(context.Background(), ref, second)

	got := codec.Decode(context.Background(), ref)
	if got.SearchInput != "second" {
		t.Fatalf("expected last write to win, got %q", got.SearchInput)
	}
	if store.Len() != 1 {
		t.Fatalf("expected a single entry, got %d", store.Len())
	}
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) (string, bool, error) {
	return "", false, errors.New("store offline")
}

func (failingStore) Save(context.Context, string, string) error {
	return errors.New("quota exceeded")
}

func TestStoreFailuresAreSwallowed(t *testing.T) {
	var events []state.LogEvent
	codec := newPageCodec(failingStore{}, state.WithLogger[viewstate.ExperimentPageState](
		state.LoggerFunc(func(event state.LogEvent) { events = append(events, event) })))
	ref := pageRef("1234")

	codec.Encode(context.Background(), ref, viewstate.DefaultExperimentPageState())

	got := codec.Decode(context.Background(), ref)
	if !reflect.DeepEqual(got, viewstate.DefaultExperimentPageState()) {
		t.Fatalf("expected defaults under store failure, got %+v", got)
	}
	if len(events) != 2 {
		t.Fatalf("expected encode and decode events, got %+v", events)
	}
}

func TestCodecPreHookMigratesLegacyPayload(t *testing.T) {
	store := state.NewMemoryStore()
	codec := newPageCodec(store, state.WithPreHook[viewstate.ExperimentPageState](
		func(_ state.DecodeContext, payload map[string]any) (map[string]any, error) {
			if legacy, ok := payload["search"]; ok {
				payload["search_input"] = legacy
				delete(payload, "search")
			}
			return payload, nil
		}))
	ref := pageRef("1234")

	if err := store.Save(context.Background(), "experiment-page/1234", `{"search":"legacy query"}`); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := codec.Decode(context.Background(), ref)
	if got.SearchInput != "legacy query" {
		t.Fatalf("expected migrated value, got %q", got.SearchInput)
	}
}

func TestViewStateRoundTripWithUnbaggedColumns(t *testing.T) {
	store := state.NewMemoryStore()
	codec := state.NewCodec(store, viewstate.DefaultExperimentViewState)
	ref := state.Ref{Kind: string(viewstate.KindExperimentView), ContextKey: "1234"}

	record := codec.Decode(context.Background(), ref)
	record.Unbagged = record.Unbagged.
		Split(viewstate.ColumnKindMetric, "rmse").
		Split(viewstate.ColumnKindMetric, "mae").
		Split(viewstate.ColumnKindParam, "alpha")
	record.RunsExpanded["run-1"] = true
	codec.Encode(context.Background(), ref, record)

	got := codec.Decode(context.Background(), ref)
	if !reflect.DeepEqual(got.Unbagged.Keys(viewstate.ColumnKindMetric), []string{"rmse", "mae"}) {
		t.Fatalf("unexpected metric order %v", got.Unbagged.Metrics)
	}
	if !got.RunsExpanded["run-1"] {
		t.Fatal("expected expanded run preserved")
	}
	if !got.ShowMultiColumns {
		t.Fatal("expected default multi-column flag preserved")
	}
}
