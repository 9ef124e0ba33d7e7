package opts

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoEvaluator indicates no rule evaluator could be resolved.
	ErrNoEvaluator = errors.New("opts: evaluator not configured")
	// ErrUnsupportedType indicates a value has no usable encoding.
	ErrUnsupportedType = errors.New("opts: unsupported type")
)

// CoercionError captures the key, target type and strategy involved in a
// failed encode or decode.
type CoercionError struct {
	Op       string
	Key      string
	Type     string
	Strategy string
	Err      error
}

func (e *CoercionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("opts: %s key=%q type=%s strategy=%s: %v", e.Op, e.Key, e.Type, describeStrategy(e.Strategy), e.Err)
}

func (e *CoercionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeStrategy(strategy string) string {
	if strategy == "" {
		return "<none>"
	}
	return strategy
}

func wrapCoercionError(op, key, typ, strategy string, err error) error {
	if err == nil {
		return nil
	}

	var coercionErr *CoercionError
	if errors.As(err, &coercionErr) {
		if coercionErr.Op == "" {
			coercionErr.Op = op
		}
		if coercionErr.Key == "" {
			coercionErr.Key = key
		}
		if coercionErr.Type == "" {
			coercionErr.Type = typ
		}
		if coercionErr.Strategy == "" {
			coercionErr.Strategy = strategy
		}
		return coercionErr
	}

	return &CoercionError{
		Op:       op,
		Key:      key,
		Type:     typ,
		Strategy: strategy,
		Err:      err,
	}
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}
	if strings.HasPrefix(err.Error(), "opts:") {
		return err
	}
	return fmt.Errorf("opts: %s evaluator: %w", engine, err)
}
