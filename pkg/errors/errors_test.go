// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/dotfold/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "manifest_invalid_error",
			code:    errors.ErrManifestInvalid,
			message: "tier entry is not a string",
			wantStr: "[MANIFEST_INVALID] tier entry is not a string",
		},
		{
			name:    "lock_held_error",
			code:    errors.ErrLockHeld,
			message: "another invocation is active",
			wantStr: "[LOCK_HELD] another invocation is active",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}

			if err.Message != tt.message {
				t.Errorf("New() message = %q, want %q", err.Message, tt.message)
			}

			if err.Details == nil {
				t.Error("New() details should be initialized")
			}

			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		format  string
		args    []interface{}
		wantMsg string
	}{
		{
			name:    "format_with_string",
			code:    errors.ErrBackupNotFound,
			format:  "no backup named %s",
			args:    []interface{}{"backup_20240101_120000"},
			wantMsg: "no backup named backup_20240101_120000",
		},
		{
			name:    "format_with_multiple_args",
			code:    errors.ErrClaimAmbiguous,
			format:  "%s claimed by both %s and %s",
			args:    []interface{}{".zshrc", "laptop", "desktop"},
			wantMsg: ".zshrc claimed by both laptop and desktop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.Newf(tt.code, tt.format, tt.args...)

			if err.Message != tt.wantMsg {
				t.Errorf("Newf() message = %q, want %q", err.Message, tt.wantMsg)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	base := stderrors.New("permission denied")

	err := errors.Wrap(base, errors.ErrFileAccess, "cannot read manifest")
	if err == nil {
		t.Fatal("Wrap() returned nil for non-nil error")
	}

	if err.Wrapped != base {
		t.Errorf("Wrap() wrapped = %v, want %v", err.Wrapped, base)
	}

	want := "[FILE_ACCESS] cannot read manifest: permission denied"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if !stderrors.Is(err, base) {
		t.Error("errors.Is should find the wrapped error")
	}

	if errors.Wrap(nil, errors.ErrFileAccess, "ignored") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrapf(t *testing.T) {
	base := stderrors.New("disk full")

	err := errors.Wrapf(base, errors.ErrBackupFailed, "cannot capture %s", ".zshrc")
	if err == nil {
		t.Fatal("Wrapf() returned nil for non-nil error")
	}

	want := "[BACKUP_FAILED] cannot capture .zshrc: disk full"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if errors.Wrapf(nil, errors.ErrBackupFailed, "ignored") != nil {
		t.Error("Wrapf(nil) should return nil")
	}
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrRestoreFailed, "restore incomplete").
		WithDetail("host", "archlinux").
		WithDetail("failed", 2)

	if err.Details["host"] != "archlinux" {
		t.Errorf("Details[host] = %v, want archlinux", err.Details["host"])
	}
	if err.Details["failed"] != 2 {
		t.Errorf("Details[failed] = %v, want 2", err.Details["failed"])
	}
}

func TestIsErrorCode(t *testing.T) {
	err := errors.New(errors.ErrLockHeld, "locked")

	if !errors.IsErrorCode(err, errors.ErrLockHeld) {
		t.Error("IsErrorCode should match the error's own code")
	}
	if errors.IsErrorCode(err, errors.ErrLockAcquire) {
		t.Error("IsErrorCode should not match a different code")
	}

	// Wrapped chains keep their code visible.
	outer := errors.Wrap(err, errors.ErrExecuteFailed, "deploy failed")
	if !errors.IsErrorCode(outer, errors.ErrExecuteFailed) {
		t.Error("IsErrorCode should match the outermost code")
	}

	if errors.IsErrorCode(stderrors.New("plain"), errors.ErrLockHeld) {
		t.Error("IsErrorCode should be false for non-DotfoldError")
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := errors.GetErrorCode(errors.New(errors.ErrManifestParse, "bad yaml")); got != errors.ErrManifestParse {
		t.Errorf("GetErrorCode() = %v, want %v", got, errors.ErrManifestParse)
	}

	if got := errors.GetErrorCode(stderrors.New("plain")); got != errors.ErrUnknown {
		t.Errorf("GetErrorCode(plain) = %v, want %v", got, errors.ErrUnknown)
	}
}

func TestErrorIs(t *testing.T) {
	a := errors.New(errors.ErrLockHeld, "locked by pid 1234")
	b := errors.New(errors.ErrLockHeld, "different message")

	if !stderrors.Is(a, b) {
		t.Error("errors with the same code should satisfy errors.Is")
	}

	c := errors.New(errors.ErrLockAcquire, "open failed")
	if stderrors.Is(a, c) {
		t.Error("errors with different codes should not satisfy errors.Is")
	}
}
