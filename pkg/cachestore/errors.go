package cachestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"runtime"
	"strings"

	cserrors "github.com/vango-dev/cachestore/internal/errors"
)

// ErrMissingKey is wrapped by the *KeyError raised when Resolve finds no value.
var ErrMissingKey = errors.New("cachestore: missing key")

// ErrTypeMismatch is wrapped by the *KeyError raised when a stored value is
// not of the type named by the caller.
var ErrTypeMismatch = errors.New("cachestore: type mismatch")

// ErrNotHandled may be returned by a scoped store's local handler to pass the
// action on to the forward stage.
var ErrNotHandled = errors.New("cachestore: action not handled")

// KeyError is the panic value of Resolve and Update. It reports a static
// wiring mistake: a key read unconditionally without a default, or two call
// sites disagreeing on a key's type.
//
// Recover it with errors.As and check the cause with errors.Is:
//
//	defer func() {
//	    if r := recover(); r != nil {
//	        var ke *cachestore.KeyError
//	        if err, ok := r.(error); ok && errors.As(err, &ke) && errors.Is(ke, cachestore.ErrMissingKey) {
//	            // ...
//	        }
//	    }
//	}()
type KeyError struct {
	// Key is the key that was read.
	Key any

	// Want is the type requested by the caller.
	Want reflect.Type

	// Got is the dynamic type of the stored value; nil when the key is missing
	// or holds an untyped nil.
	Got reflect.Type

	// Err is ErrMissingKey or ErrTypeMismatch.
	Err error

	diag *cserrors.StoreError
}

// Error implements the error interface.
func (e *KeyError) Error() string {
	if errors.Is(e.Err, ErrTypeMismatch) {
		return fmt.Sprintf("cachestore: key %v holds %s, not %s", e.Key, typeName(e.Got), typeName(e.Want))
	}
	return fmt.Sprintf("cachestore: key %v has no value (want %s)", e.Key, typeName(e.Want))
}

// Unwrap returns ErrMissingKey or ErrTypeMismatch.
func (e *KeyError) Unwrap() error {
	return e.Err
}

// Location returns "file:line" of the call that failed, when known.
func (e *KeyError) Location() string {
	if e.diag == nil || e.diag.Location == nil {
		return ""
	}
	return e.diag.Location.String()
}

// Diagnostic returns a multi-line explanation including the failing call site.
func (e *KeyError) Diagnostic() string {
	if e.diag == nil {
		return e.Error()
	}
	return e.diag.Format()
}

func missingKey(key any, want reflect.Type) *KeyError {
	return newKeyError("CS001", ErrMissingKey, key, want, nil)
}

func typeMismatch(key any, want, got reflect.Type) *KeyError {
	return newKeyError("CS002", ErrTypeMismatch, key, want, got)
}

func newKeyError(code string, cause error, key any, want, got reflect.Type) *KeyError {
	ke := &KeyError{Key: key, Want: want, Got: got, Err: cause}
	ke.diag = cserrors.New(code).WithDetail(ke.Error())
	if got != nil {
		ke.diag.WithSuggestion(fmt.Sprintf("Read key %v as %s, or store a %s under it", key, got, typeName(want)))
	}
	if file, line, ok := callSite(); ok {
		ke.diag.At(file, line)
	}
	return ke
}

// pkgPrefix is the function-name prefix of this package's frames.
var pkgPrefix = reflect.TypeOf(Box{}).PkgPath() + "."

// callSite returns the first frame outside this package (test files count
// as outside).
func callSite() (string, int, bool) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		if !strings.HasPrefix(f.Function, pkgPrefix) || strings.HasSuffix(f.File, "_test.go") {
			return f.File, f.Line, f.File != ""
		}
		if !more {
			return "", 0, false
		}
	}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return t.String()
}

// logAbsorbed logs a condition the store ignores.
func logAbsorbed(logger *slog.Logger, code string, args ...any) {
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	logger.Debug(cserrors.New(code).Error(), args...)
}
