package locators

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-locators/pkg/diffs"
	"github.com/goliatone/go-locators/pkg/locator"
	"github.com/goliatone/go-locators/version"
)

var (
	// ErrInvalidVersionFormat reports a baseline, target or diff version that
	// cannot be parsed.
	ErrInvalidVersionFormat = version.ErrInvalidFormat
	// ErrDiffNotFound reports a version listed in the catalog whose payload
	// cannot be loaded.
	ErrDiffNotFound = diffs.ErrNotFound
	// ErrLocatorNotFound reports a path absent from a resolved set.
	ErrLocatorNotFound = errors.New("locators: locator not found")
	// ErrNoEvaluator reports an extraction naming an engine that is not
	// configured.
	ErrNoEvaluator = errors.New("locators: evaluator not configured")
)

// Stage names the resolution step that failed.
type Stage string

const (
	StageParse Stage = "parse"
	StageList  Stage = "list"
	StageLoad  Stage = "load"
)

// ResolveError captures the resolution inputs alongside the originating
// error. No partial set is returned with it.
type ResolveError struct {
	Baseline string
	Target   string
	Version  string
	Stage    Stage
	Err      error
}

func (e *ResolveError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "locators: %s failed baseline=%s target=%s", e.Stage, orUnknown(e.Baseline), orUnknown(e.Target))
	if e.Version != "" {
		fmt.Fprintf(&b, " version=%s", e.Version)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *ResolveError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindError reports a path that holds a different entry variant than the
// accessor asked for.
type KindError struct {
	Path string
	Want locator.Kind
	Got  locator.Kind
}

func (e *KindError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("locators: %s is a %s, not a %s", e.Path, e.Got, e.Want)
}

// EvaluationError captures extraction metadata alongside the originating
// error.
type EvaluationError struct {
	Engine string
	Expr   string
	Path   string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("locators: %s evaluator %s path=%s: %v", e.Engine, describeExpression(e.Expr), orUnknown(e.Path), e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

func notFound(path string) error {
	return fmt.Errorf("%w: %s", ErrLocatorNotFound, path)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "locators:") {
		return err
	}
	return fmt.Errorf("locators: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, path string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Path == "" {
			evalErr.Path = path
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Path:   path,
		Err:    err,
	}
}
