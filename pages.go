// Package viewstate is the client-side state core of an experiment-tracking
// UI: persisted per-page state records with schema-drift-tolerant defaults,
// the unbagged-column ordering model, request-outcome aggregation, and a
// pluggable filter-expression evaluator for client-side run filtering.
//
// Schema convention: adding a field to a state record is always safe (old
// payloads lack it and the default applies) and so is removing one (unknown
// fields are dropped on decode). Changing a field's type or meaning in place
// is not: previously stored values of the old shape would be loaded and
// misinterpreted. Rename the field instead, and migrate old payloads with a
// decode pre-hook. Nothing at runtime enforces this; the descriptor pin tests
// exist to make an in-place change visible in review.
package viewstate

// PageKind identifies one page's persisted-state record.
type PageKind string

const (
	// KindExperimentPage covers the experiment runs-table page controller.
	KindExperimentPage PageKind = "experiment-page"
	// KindExperimentView covers the runs-table presentation component.
	KindExperimentView PageKind = "experiment-view"
	// KindRunView covers the single-run detail page.
	KindRunView PageKind = "run-view"
	// KindMetricView covers the metric comparison chart page.
	KindMetricView PageKind = "metric-view"
)

// Lifecycle filter values accepted by ExperimentPageState.
const (
	LifecycleFilterActive  = "Active"
	LifecycleFilterDeleted = "Deleted"
)

// StartTimeFilterAll disables start-time filtering.
const StartTimeFilterAll = "ALL"

// ExperimentPageState is the persisted state of the experiment page
// controller: the search box, sort order, and row filters.
type ExperimentPageState struct {
	SearchInput           string  `json:"search_input"`
	ParamKeyFilterString  string  `json:"param_key_filter_string"`
	MetricKeyFilterString string  `json:"metric_key_filter_string"`
	OrderByKey            *string `json:"order_by_key"`
	OrderByAsc            bool    `json:"order_by_asc"`
	LifecycleFilter       string  `json:"lifecycle_filter"`
	StartTimeFilter       string  `json:"start_time_filter"`
}

// DefaultExperimentPageState returns the canonical defaults for
// KindExperimentPage. OrderByKey defaults to nil (no explicit sort).
func DefaultExperimentPageState() ExperimentPageState {
	return ExperimentPageState{
		LifecycleFilter: LifecycleFilterActive,
		StartTimeFilter: StartTimeFilterAll,
	}
}

// ExperimentViewState is the persisted state of the runs table itself:
// column layout, expanded rows, and the unbagged column set.
type ExperimentViewState struct {
	ShowMultiColumns bool            `json:"show_multi_columns"`
	RunsExpanded     map[string]bool `json:"runs_expanded"`
	Unbagged         UnbaggedColumns `json:"unbagged"`
}

// DefaultExperimentViewState returns the canonical defaults for
// KindExperimentView.
func DefaultExperimentViewState() ExperimentViewState {
	return ExperimentViewState{
		ShowMultiColumns: true,
		RunsExpanded:     map[string]bool{},
		Unbagged:         UnbaggedColumns{},
	}
}

// RunViewState is the persisted state of the run detail page: which sections
// are expanded.
type RunViewState struct {
	ShowNotes      bool `json:"show_notes"`
	ShowParameters bool `json:"show_parameters"`
	ShowMetrics    bool `json:"show_metrics"`
	ShowArtifacts  bool `json:"show_artifacts"`
	ShowTags       bool `json:"show_tags"`
}

// DefaultRunViewState returns the canonical defaults for KindRunView.
func DefaultRunViewState() RunViewState {
	return RunViewState{
		ShowNotes:      true,
		ShowParameters: true,
		ShowMetrics:    true,
		ShowArtifacts:  true,
		ShowTags:       true,
	}
}

// XAxisRelative plots metric history against relative wall-clock time.
const XAxisRelative = "relative"

// MetricViewState is the persisted state of the metric chart page.
type MetricViewState struct {
	SelectedMetricKeys []string `json:"selected_metric_keys"`
	XAxis              string   `json:"x_axis"`
	YAxisLogScale      bool     `json:"y_axis_log_scale"`
	ShowPoint          bool     `json:"show_point"`
	LineSmoothness     int      `json:"line_smoothness"`
}

// DefaultMetricViewState returns the canonical defaults for KindMetricView.
func DefaultMetricViewState() MetricViewState {
	return MetricViewState{
		SelectedMetricKeys: []string{},
		XAxis:              XAxisRelative,
		LineSmoothness:     1,
	}
}

// DefaultState returns the default record for kind as an untyped value, for
// tooling that iterates every schema (descriptor derivation, docs). Page code
// uses the typed constructors directly.
func DefaultState(kind PageKind) (any, bool) {
	switch kind {
	case KindExperimentPage:
		return DefaultExperimentPageState(), true
	case KindExperimentView:
		return DefaultExperimentViewState(), true
	case KindRunView:
		return DefaultRunViewState(), true
	case KindMetricView:
		return DefaultMetricViewState(), true
	default:
		return nil, false
	}
}

// Kinds returns every registered page kind.
func Kinds() []PageKind {
	return []PageKind{KindExperimentPage, KindExperimentView, KindRunView, KindMetricView}
}
