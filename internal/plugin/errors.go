package plugin

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// ErrorKind classifies plugin faults.
type ErrorKind int

const (
	// InvalidPlugin: the descriptor is malformed (missing name, unknown kind).
	InvalidPlugin ErrorKind = iota + 1
	// PluginInitFailed: the factory returned an error or panicked.
	PluginInitFailed
	// PluginRuntimeError: a visitor or OnEnd callback failed during a walk.
	PluginRuntimeError
)

var (
	ErrInvalidPlugin    = errors.New("invalid plugin")
	ErrPluginInitFailed = errors.New("plugin init failed")
	ErrPluginRuntime    = errors.New("plugin runtime error")
)

// RuntimeErrorCode is the diagnostic code used for callback failures.
const RuntimeErrorCode = "plugin-runtime-error"

func (k ErrorKind) String() string {
	switch k {
	case InvalidPlugin:
		return "InvalidPlugin"
	case PluginInitFailed:
		return "PluginInitFailed"
	case PluginRuntimeError:
		return "PluginRuntimeError"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

func (k ErrorKind) sentinel() error {
	switch k {
	case InvalidPlugin:
		return ErrInvalidPlugin
	case PluginInitFailed:
		return ErrPluginInitFailed
	case PluginRuntimeError:
		return ErrPluginRuntime
	}
	return nil
}

// Error is a fault scoped to a single plugin. Plugin holds the identifier
// the plugin was requested with; Index is its position in the load order.
type Error struct {
	Kind   ErrorKind
	Plugin string
	Index  int
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: plugin %q (#%d): %v", e.Kind, e.Plugin, e.Index, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind, so callers can write
// errors.Is(err, plugin.ErrPluginInitFailed).
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// PanicError carries a recovered panic value and the stack at recovery.
type PanicError struct {
	Value any
	Stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// Guard runs fn and converts a panic into a *PanicError.
func Guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
