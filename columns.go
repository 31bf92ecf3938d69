package viewstate

// ColumnKind distinguishes the two column families that can be unbagged.
type ColumnKind string

const (
	// ColumnKindMetric addresses the metric key sequence.
	ColumnKindMetric ColumnKind = "metric"
	// ColumnKindParam addresses the parameter key sequence.
	ColumnKindParam ColumnKind = "param"
)

// UnbaggedColumns holds the columns pulled out of the bagged metric/param
// display into their own dedicated table columns. Both sequences keep
// insertion order: column position is a user-visible contract, so these are
// ordered lists with linear membership checks, not sets.
//
// All methods are pure and return a new value; callers persist the result
// through the state codec.
type UnbaggedColumns struct {
	Metrics []string `json:"metrics"`
	Params  []string `json:"params"`
}

// Split pulls key out of the bagged display, appending it to the end of the
// sequence for kind. Already-unbagged keys are left where they are.
func (u UnbaggedColumns) Split(kind ColumnKind, key string) UnbaggedColumns {
	switch kind {
	case ColumnKindMetric:
		u.Metrics = appendKey(u.Metrics, key)
	case ColumnKindParam:
		u.Params = appendKey(u.Params, key)
	}
	return u
}

// Merge returns key to the bagged display, closing the gap without disturbing
// the order of the remaining keys. Unknown keys are a no-op.
func (u UnbaggedColumns) Merge(kind ColumnKind, key string) UnbaggedColumns {
	switch kind {
	case ColumnKindMetric:
		u.Metrics = removeKey(u.Metrics, key)
	case ColumnKindParam:
		u.Params = removeKey(u.Params, key)
	}
	return u
}

// Contains reports whether key is currently unbagged for kind.
func (u UnbaggedColumns) Contains(kind ColumnKind, key string) bool {
	switch kind {
	case ColumnKindMetric:
		return containsKey(u.Metrics, key)
	case ColumnKindParam:
		return containsKey(u.Params, key)
	default:
		return false
	}
}

// Keys returns a copy of the sequence for kind in insertion order.
func (u UnbaggedColumns) Keys(kind ColumnKind) []string {
	switch kind {
	case ColumnKindMetric:
		return append([]string(nil), u.Metrics...)
	case ColumnKindParam:
		return append([]string(nil), u.Params...)
	default:
		return nil
	}
}

func appendKey(keys []string, key string) []string {
	if containsKey(keys, key) {
		return keys
	}
	out := make([]string, 0, len(keys)+1)
	out = append(out, keys...)
	return append(out, key)
}

func removeKey(keys []string, key string) []string {
	if !containsKey(keys, key) {
		return keys
	}
	out := make([]string, 0, len(keys)-1)
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
