package opts

import "fmt"

// jsEvaluatorConfig holds what the goja evaluator needs besides the VM, so the
// global environment can be built and tested without the js_eval tag.
type jsEvaluatorConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// JSEvaluatorOption configures the JS evaluator.
type JSEvaluatorOption func(*jsEvaluatorConfig)

// JSWithProgramCache shares cache between JS evaluators. Programs are stored
// under "js:" followed by the expression.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		cfg.cache = cache
	}
}

// JSWithFunctionRegistry installs every registry function as a global, next to
// the snapshot keys, and as call(name, ...args). A registry function shadows a
// snapshot key of the same name. The registry is cloned.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		if registry != nil {
			cfg.registry = registry.Clone()
		}
	}
}

func applyJSEvaluatorOptions(opts []JSEvaluatorOption) jsEvaluatorConfig {
	cfg := jsEvaluatorConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// globals returns the values installed on a fresh VM for one evaluation.
func (cfg jsEvaluatorConfig) globals(ctx RuleContext) map[string]any {
	out := ctx.withDefaults().bindings()
	registry := cfg.registry
	if registry == nil {
		return out
	}
	out["call"] = func(name string, arguments ...any) (any, error) {
		return registry.Call(name, arguments...)
	}
	for _, name := range registry.Names() {
		fn := name
		out[fn] = func(arguments ...any) (any, error) {
			return registry.Call(fn, arguments...)
		}
	}
	return out
}

func jsCacheKey(expression string) string {
	return "js:" + expression
}

// jsProgramSource wraps an expression so statements and bare expressions both
// yield a value.
func jsProgramSource(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}
