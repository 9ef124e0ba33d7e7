package opts

import (
	"fmt"
	"regexp"
	"time"
)

// RuleContext carries the inputs of a rule evaluation.
type RuleContext struct {
	Snapshot map[string]any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = map[string]any{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

// bindings returns the variables visible to an expression: now, args,
// metadata, options (the whole snapshot) and every snapshot key that is a
// valid identifier.
func (ctx RuleContext) bindings() map[string]any {
	env := make(map[string]any, len(ctx.Snapshot)+4)
	for key, value := range ctx.Snapshot {
		if identifierPattern.MatchString(key) {
			env[key] = value
		}
	}
	env["now"] = *ctx.Now
	env["args"] = ctx.Args
	env["metadata"] = ctx.Metadata
	env["options"] = ctx.Snapshot
	return env
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule is a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// ProgramCache stores compiled expression programs keyed by expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache registers a program cache used by the default evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *storeConfig) {
		cfg.programCache = cache
	}
}

// Evaluate runs expr against the store snapshot using the configured
// evaluator, or an expr-lang evaluator when none is configured.
func (s *Store) Evaluate(expr string) (any, error) {
	return s.EvaluateWith(RuleContext{}, expr)
}

// EvaluateWith runs expr against ctx. A nil ctx.Snapshot is replaced by the
// store snapshot.
func (s *Store) EvaluateWith(ctx RuleContext, expr string) (any, error) {
	if expr == "" {
		return nil, fmt.Errorf("opts: expression must not be empty")
	}
	evaluator, err := s.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = s.Snapshot()
	}
	ctx = ctx.withDefaults()

	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	s.logger().Log(LogEvent{
		Op:       OpEvaluate,
		Expr:     expr,
		Strategy: evaluatorEngineName(evaluator),
		Duration: time.Since(start),
		Err:      evalErr,
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return value, nil
}

// EvaluateBool runs expr and requires a boolean result.
func (s *Store) EvaluateBool(expr string) (bool, error) {
	value, err := s.Evaluate(expr)
	if err != nil {
		return false, err
	}
	result, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("opts: expression %q returned %T, want bool", expr, value)
	}
	return result, nil
}

func (s *Store) resolveEvaluator() (Evaluator, error) {
	if s == nil {
		return nil, ErrNoEvaluator
	}
	if s.cfg.evaluator != nil {
		return s.cfg.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if s.cfg.programCache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(s.cfg.programCache))
	}
	if s.cfg.functions != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(s.cfg.functions))
	}
	s.cfg.evaluator = NewExprEvaluator(exprOpts...)
	return s.cfg.evaluator, nil
}

func evaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if name, ok := e.(interface{ Engine() string }); ok {
			return name.Engine()
		}
		return "custom"
	}
}
