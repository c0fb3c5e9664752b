package errors

import (
	"errors"
	"testing"
)

type customError struct {
	Msg string
}

func (e customError) Error() string { return e.Msg }

func TestNew(t *testing.T) {
	err := New("test error")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "test error" {
		t.Errorf("expected 'test error', got '%s'", err.Error())
	}
}

func TestWrap(t *testing.T) {
	baseErr := errors.New("base error")

	t.Run("wrap non-nil error", func(t *testing.T) {
		wrapped := Wrap(baseErr, "wrapped")
		if wrapped == nil {
			t.Fatal("expected wrapped error, got nil")
		}
		expected := "wrapped: base error"
		if wrapped.Error() != expected {
			t.Errorf("expected '%s', got '%s'", expected, wrapped.Error())
		}
		if !errors.Is(wrapped, baseErr) {
			t.Error("expected wrapped error to wrap baseErr")
		}
	})

	t.Run("wrap nil error", func(t *testing.T) {
		wrapped := Wrap(nil, "wrapped")
		if wrapped != nil {
			t.Errorf("expected nil, got %v", wrapped)
		}
	})

	t.Run("wrap sentinel keeps identity", func(t *testing.T) {
		wrapped := Wrap(ErrUnavailable, "search backend")
		if !Is(wrapped, ErrUnavailable) {
			t.Error("expected wrapped error to match ErrUnavailable")
		}
		if Is(wrapped, ErrNotFound) {
			t.Error("did not expect wrapped error to match ErrNotFound")
		}
	})
}

func TestAs(t *testing.T) {
	err := Wrap(customError{Msg: "boom"}, "context")

	var target customError
	if !As(err, &target) {
		t.Fatal("expected As to find customError")
	}
	if target.Msg != "boom" {
		t.Errorf("expected 'boom', got '%s'", target.Msg)
	}
}

func TestJoin(t *testing.T) {
	t.Run("all nil", func(t *testing.T) {
		if err := Join(nil, nil); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("keeps every error in the tree", func(t *testing.T) {
		err := Join(ErrNotFound, nil, ErrConflict)
		if !Is(err, ErrNotFound) || !Is(err, ErrConflict) {
			t.Errorf("expected joined error to match both sentinels, got %v", err)
		}
	})
}
