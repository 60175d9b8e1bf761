package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "tagbuilder.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "tagbuilder.yaml" {
			t.Errorf("expected context file=tagbuilder.yaml, got %v", file)
		}
	})

	t.Run("Error detection", func(t *testing.T) {
		err := ConfigError("test error").Build()

		if !HasCategory(err, CategoryConfig) {
			t.Error("expected error to have config category")
		}
		if err.CanRetry() {
			t.Error("expected config error to not be retryable")
		}
		if err.IsFatal() {
			t.Error("expected config error to default to error severity")
		}
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		base := FileSystemError("posts directory not found").Build()
		wrapped := fmt.Errorf("generate: %w", base)

		if !HasCategory(wrapped, CategoryFileSystem) {
			t.Error("expected wrapped error to keep filesystem category")
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("expected unclassified errors to map to internal")
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	originalErr := errors.New("permission denied")
	err := WrapError(originalErr, CategoryFileSystem, "cannot write tag page").
		Warning().
		Retryable().
		WithContext("path", "tag/go.md").
		Build()

	if err.Severity() != SeverityWarning {
		t.Errorf("expected severity %s, got %s", SeverityWarning, err.Severity())
	}
	if err.RetryStrategy() != RetryBackoff {
		t.Errorf("expected retry strategy %s, got %s", RetryBackoff, err.RetryStrategy())
	}
	if !errors.Is(err, originalErr) {
		t.Error("expected error to wrap original error")
	}
	if got := err.Error(); got != "[filesystem:warning] cannot write tag page: permission denied" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestWithContextDoesNotMutateOriginal(t *testing.T) {
	original := ContentError("malformed front matter").WithContext("post", "a.md").Build()
	extended := original.WithContext("line", 3)

	if _, ok := original.Context().Get("line"); ok {
		t.Error("original context was mutated")
	}
	if v, ok := extended.Context().Get("line"); !ok || v != 3 {
		t.Errorf("expected line=3 in extended context, got %v", v)
	}
	if post, _ := extended.Context().GetString("post"); post != "a.md" {
		t.Errorf("expected post context to be kept, got %q", post)
	}
}

func TestIsMatchesCategoryAndMessage(t *testing.T) {
	a := ValidationError("tag directory out of sync").Build()
	b := ValidationError("tag directory out of sync").WithContext("missing", 2).Build()
	c := ValidationError("other").Build()

	if !errors.Is(a, b) {
		t.Error("expected errors with same category and message to match")
	}
	if errors.Is(a, c) {
		t.Error("expected errors with different messages not to match")
	}
}
