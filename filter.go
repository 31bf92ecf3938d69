package viewstate

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoEvaluator indicates no engine could be resolved for a Filter.
var ErrNoEvaluator = errors.New("viewstate: evaluator not configured")

// Filter evaluates search-filter expressions against run data. The zero
// configuration uses the expr engine; WithEvaluator swaps in CEL or JS.
type Filter struct {
	cfg filterConfig
}

// NewFilter constructs a Filter from the supplied options.
func NewFilter(opts ...FilterOption) *Filter {
	return &Filter{cfg: applyFilterOptions(opts)}
}

// Evaluate executes expr against ctx using the configured engine and wraps
// the raw result.
func (f *Filter) Evaluate(ctx FilterContext, expr string) (Response[any], error) {
	if expr == "" {
		return Response[any]{}, fmt.Errorf("expression must not be empty")
	}
	evaluator, err := f.resolveEvaluator()
	if err != nil {
		return Response[any]{}, err
	}
	ctx = ctx.withDefaults()
	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	evalErr = wrapEvaluationError(engine, expr, evalErr)
	f.logger().LogEvaluation(FilterLogEvent{
		Engine:   engine,
		Expr:     expr,
		Duration: duration,
		Err:      evalErr,
	})
	if evalErr != nil {
		return Response[any]{}, evalErr
	}
	return Response[any]{Value: value}, nil
}

// Matches evaluates expr against ctx and coerces the result to the row
// keep/drop decision: booleans pass through, nil counts as false, anything
// else is a malformed filter.
func (f *Filter) Matches(ctx FilterContext, expr string) (bool, error) {
	response, err := f.Evaluate(ctx, expr)
	if err != nil {
		return false, err
	}
	switch value := response.Value.(type) {
	case nil:
		return false, nil
	case bool:
		return value, nil
	default:
		return false, wrapEvaluationError(evaluatorEngineName(f.cfg.evaluator), expr,
			fmt.Errorf("filter must evaluate to a boolean, got %T", value))
	}
}

// Compile returns a reusable program for expr using the configured engine.
func (f *Filter) Compile(expr string, opts ...CompileOption) (CompiledFilter, error) {
	evaluator, err := f.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	return evaluator.Compile(expr, opts...)
}

func (f *Filter) logger() FilterLogger {
	if f.cfg.logger != nil {
		return f.cfg.logger
	}
	return noopFilterLogger{}
}

func (f *Filter) resolveEvaluator() (Evaluator, error) {
	if f.cfg.evaluator != nil {
		return f.cfg.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if cache := f.cfg.programCache; cache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cache))
	}
	if registry := f.cfg.functions; registry != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(registry))
	}
	defaultEvaluator := NewExprEvaluator(exprOpts...)
	if defaultEvaluator == nil {
		return nil, ErrNoEvaluator
	}
	f.cfg.evaluator = defaultEvaluator
	return defaultEvaluator, nil
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*viewstate.exprEvaluator":
		return "expr"
	case "*viewstate.celEvaluator":
		return "cel"
	case "*viewstate.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
