package viewstate

import "time"

// FilterContext carries the run data a filter expression is evaluated against.
// The maps are bound as top-level identifiers (params, metrics, tags,
// attributes) inside every engine.
type FilterContext struct {
	Params     map[string]any
	Metrics    map[string]any
	Tags       map[string]any
	Attributes map[string]any
	Now        *time.Time
}

func (ctx FilterContext) withDefaultNow() FilterContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx FilterContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx FilterContext) withDefaultMaps() FilterContext {
	if ctx.Params == nil {
		ctx.Params = map[string]any{}
	}
	if ctx.Metrics == nil {
		ctx.Metrics = map[string]any{}
	}
	if ctx.Tags == nil {
		ctx.Tags = map[string]any{}
	}
	if ctx.Attributes == nil {
		ctx.Attributes = map[string]any{}
	}
	return ctx
}

func (ctx FilterContext) withDefaults() FilterContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

// bindings returns the identifier set shared by every engine.
func (ctx FilterContext) bindings() map[string]any {
	return map[string]any{
		"now":        ctx.timestamp(),
		"params":     ctx.Params,
		"metrics":    ctx.Metrics,
		"tags":       ctx.Tags,
		"attributes": ctx.Attributes,
	}
}

// Response stores a typed result produced by an evaluator.
type Response[T any] struct {
	Value T
}

// Evaluator executes filter expressions against a run context.
type Evaluator interface {
	Evaluate(ctx FilterContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledFilter, error)
}

// CompiledFilter represents a reusable filter program.
type CompiledFilter interface {
	Evaluate(ctx FilterContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// FilterOption configures a Filter instance.
type FilterOption func(*filterConfig)

type filterConfig struct {
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	logger       FilterLogger
}

func applyFilterOptions(opts []FilterOption) filterConfig {
	cfg := filterConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEvaluator configures the engine used by a Filter.
func WithEvaluator(e Evaluator) FilterOption {
	return func(cfg *filterConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache registers a compiled-program cache on a Filter.
func WithProgramCache(cache ProgramCache) FilterOption {
	return func(cfg *filterConfig) {
		cfg.programCache = cache
	}
}

// WithFunctionRegistry configures a Filter to expose registry functions to
// engines that support them.
func WithFunctionRegistry(registry *FunctionRegistry) FilterOption {
	return func(cfg *filterConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for the Filter.
func WithCustomFunction(name string, fn Function) FilterOption {
	return func(cfg *filterConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}
