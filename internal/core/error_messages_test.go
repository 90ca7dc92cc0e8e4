package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/csvaudit/internal/csv"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"unterminated quote", &csv.ParseError{Line: 3, Column: 7, Err: csv.ErrUnterminatedQuote}, "CSV001"},
		{"bare quote", &csv.ParseError{Line: 1, Column: 2, Err: csv.ErrBareQuote}, "CSV002"},
		{"trailing text", &csv.ParseError{Line: 2, Column: 5, Err: csv.ErrTrailingText}, "CSV003"},
		{"bare carriage return", &csv.ParseError{Line: 1, Column: 9, Err: csv.ErrBareCR}, "CSV004"},
		{"body too large", errors.New("http: request body too large"), "FILE001"},
		{"read failure", fmt.Errorf("read csv: %w", errors.New("unexpected EOF")), "FILE002"},
		{"missing input", errors.New("open ventas.csv: no such file or directory"), "FILE003"},
		{"empty input", ErrEmptyInput, "FILE005"},
		{"unknown format", errors.New("unsupported output format \"yaml\""), "EXP002"},
		{"busy", ErrTooManyAnalyses, "ANL001"},
		{"run not found", fmt.Errorf("run totals: %w", ErrRunNotFound), "ANL002"},
		{"cancelled", context.Canceled, "ANL003"},
		{"connection refused", errors.New("dial tcp: connection refused"), "DB004"},
		{"deadline", context.DeadlineExceeded, "DB006"},
		{"history disabled", ErrHistoryDisabled, "DB007"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"unknown error returns default", errors.New("some random internal error"), "ERR000"},
		{"case insensitive matching", errors.New("UNTERMINATED QUOTED FIELD"), "CSV001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v) code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrTooManyAnalyses)

	expected := "System is busy processing other files (Code: ANL001). Please wait a moment and try again"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrEmptyInput, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := &csv.ParseError{Line: 4, Column: 1, Err: csv.ErrBareQuote}
		userErr := NewUserError(techErr)

		if userErr.Error() != "A double quote appears inside an unquoted field" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, csv.ErrBareQuote) {
			t.Error("Unwrap() should reach the csv sentinel")
		}
	})
}
