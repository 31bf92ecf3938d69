package viewstate

import "testing"

func TestCELFilterMatches(t *testing.T) {
	filter := NewFilter(WithEvaluator(NewCELEvaluator()))

	cases := []struct {
		expr string
		want bool
	}{
		{`metrics.rmse < 1.0 && params.model == 'tree'`, true},
		{`metrics.mae > 0.5`, false},
		{`tags.release == 'candidate' || attributes.status == 'RUNNING'`, true},
	}
	for _, tc := range cases {
		got, err := filter.Matches(runContext(), tc.expr)
		if err != nil {
			t.Fatalf("%s: %v", tc.expr, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %t, got %t", tc.expr, tc.want, got)
		}
	}
}

func TestCELFilterSyntaxError(t *testing.T) {
	filter := NewFilter(WithEvaluator(NewCELEvaluator()))

	if _, err := filter.Evaluate(runContext(), `metrics.rmse <`); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestCELCompiledFilterWithCache(t *testing.T) {
	cache := NewMemoryProgramCache()
	evaluator := NewCELEvaluator(CELWithProgramCache(cache))

	compiled, err := evaluator.Compile(`metrics.rmse < 1.0`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	value, err := compiled.Evaluate(runContext())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if value != true {
		t.Fatalf("expected true, got %v", value)
	}
	if _, ok := cache.Get(`metrics.rmse < 1.0`); !ok {
		t.Fatal("expected compiled program in cache")
	}
}

func TestCELFilterLogsEngineName(t *testing.T) {
	var events []FilterLogEvent
	filter := NewFilter(
		WithEvaluator(NewCELEvaluator()),
		WithFilterLogger(FilterLoggerFunc(func(event FilterLogEvent) {
			events = append(events, event)
		})),
	)

	if _, err := filter.Matches(runContext(), `metrics.rmse < 1.0`); err != nil {
		t.Fatalf("matches: %v", err)
	}
	if len(events) != 1 || events[0].Engine != "cel" {
		t.Fatalf("expected cel engine event, got %+v", events)
	}
}
