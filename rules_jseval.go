//go:build js_eval

package opts

import (
	"fmt"

	"github.com/dop251/goja"
)

type jsEvaluator struct {
	cfg jsEvaluatorConfig
}

// NewJSEvaluator constructs an Evaluator backed by goja. Each evaluation runs
// on a new VM with the snapshot keys installed as globals.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	return &jsEvaluator{cfg: applyJSEvaluatorOptions(opts)}
}

func (e *jsEvaluator) Engine() string { return "js" }

func (e *jsEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, program)
}

func (e *jsEvaluator) Compile(expression string) (CompiledRule, error) {
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &jsCompiledRule{evaluator: e, program: program}, nil
}

func (e *jsEvaluator) loadOrCompile(expression string) (*goja.Program, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("js", fmt.Errorf("expression must not be empty"))
	}
	cache := e.cfg.cache
	if cache != nil {
		if cached, ok := cache.Get(jsCacheKey(expression)); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", jsProgramSource(expression), false)
	if err != nil {
		return nil, wrapEvaluatorError("js", err)
	}
	if cache != nil {
		cache.Set(jsCacheKey(expression), program)
	}
	return program, nil
}

func (e *jsEvaluator) run(ctx RuleContext, program *goja.Program) (any, error) {
	vm := goja.New()
	for key, value := range e.cfg.globals(ctx) {
		if err := vm.Set(key, value); err != nil {
			return nil, wrapEvaluatorError("js", err)
		}
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return nil, wrapEvaluatorError("js", err)
	}
	return value.Export(), nil
}

type jsCompiledRule struct {
	evaluator *jsEvaluator
	program   *goja.Program
}

func (r *jsCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.evaluator == nil || r.program == nil {
		return nil, wrapEvaluatorError("js", fmt.Errorf("compiled rule is empty"))
	}
	return r.evaluator.run(ctx, r.program)
}

func jsEvaluatorAvailable() bool {
	return true
}
