package locators

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/goliatone/go-locators/pkg/locator"
)

func TestResolveErrorFormatting(t *testing.T) {
	cause := fmt.Errorf("%w: 1.1", ErrDiffNotFound)
	err := &ResolveError{Baseline: "1.0", Target: "1.2", Version: "1.1", Stage: StageLoad, Err: cause}

	msg := err.Error()
	for _, fragment := range []string{"locators: load failed", "baseline=1.0", "target=1.2", "version=1.1", "diff not found"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in %q", fragment, msg)
		}
	}
	if !errors.Is(err, ErrDiffNotFound) {
		t.Fatalf("expected ResolveError to unwrap to ErrDiffNotFound")
	}
	parse := &ResolveError{Stage: StageParse, Err: ErrInvalidVersionFormat}
	if !strings.Contains(parse.Error(), "baseline=unknown target=unknown") {
		t.Fatalf("unexpected message %q", parse.Error())
	}
	var nilErr *ResolveError
	if nilErr.Error() != "<nil>" || nilErr.Unwrap() != nil {
		t.Fatalf("nil ResolveError should be safe")
	}
}

func TestKindErrorFormatting(t *testing.T) {
	err := &KindError{Path: "menu.item", Want: locator.KindConstructor, Got: locator.KindSelector}
	if got := err.Error(); got != "locators: menu.item is a selector, not a constructor" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestWrapEvaluationErrorPreservesMetadata(t *testing.T) {
	base := errors.New("boom")
	wrapped := wrapEvaluationError("expr", "attrs['x']", "menu.label", base)

	var evalErr *EvaluationError
	if !errors.As(wrapped, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", wrapped)
	}
	if evalErr.Engine != "expr" || evalErr.Expr != "attrs['x']" || evalErr.Path != "menu.label" {
		t.Fatalf("unexpected evaluation error %+v", evalErr)
	}
	if !errors.Is(wrapped, base) {
		t.Fatalf("expected wrapped error to unwrap to base")
	}

	rewrapped := wrapEvaluationError("cel", "other", "other.path", wrapped)
	if !errors.As(rewrapped, &evalErr) || evalErr.Engine != "expr" || evalErr.Path != "menu.label" {
		t.Fatalf("existing metadata must be preserved, got %+v", evalErr)
	}
	if !strings.Contains(wrapped.Error(), `expr="attrs['x']"`) {
		t.Fatalf("unexpected message %q", wrapped.Error())
	}

	if got := wrapEvaluatorError("cel", errors.New("locators: already prefixed")); got.Error() != "locators: already prefixed" {
		t.Fatalf("prefixed errors should pass through, got %q", got)
	}
	if got := wrapEvaluatorError("cel", base); !errors.Is(got, base) || !strings.HasPrefix(got.Error(), "locators: cel evaluator") {
		t.Fatalf("unexpected wrap %q", got)
	}
}
