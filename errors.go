package sapling

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// Contract violations. None of them is fatal: the operation that detected
// one is skipped and the rest of the pass continues.
var (
	ErrInvalidChildType         = errors.New("sapling: type descriptor cannot produce a node")
	ErrDuplicateChild           = errors.New("sapling: child already added in this pass")
	ErrNoPropertySelected       = errors.New("sapling: no property selected, call Prop first")
	ErrInvalidDuration          = errors.New("sapling: duration must be >= 0")
	ErrInvalidScale             = errors.New("sapling: scale must be > 0")
	ErrUnsupportedInterpolation = errors.New("sapling: values cannot be interpolated")
	ErrSignalAlreadyBound       = errors.New("sapling: event already bound in this pass")
	ErrOutsidePass              = errors.New("sapling: proxy is not being reconciled")
	ErrReentrantUpdate          = errors.New("sapling: proxy is already building")
	ErrReservedKey              = errors.New("sapling: key uses the reserved synthetic prefix")
	ErrStaleProxy               = errors.New("sapling: proxy was released")
)

// OpError records the operation and proxy key an error was detected in.
type OpError struct {
	// Op is the failing operation (e.g. "UI.Add", "Motion.Keyframe").
	Op string
	// Key is the key of the proxy the operation ran on, if any.
	Key string
	// Err is the underlying error.
	Err error
}

func (e *OpError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s [%s]: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// BuildError is reported when a builder panics. The pass still completes
// for everything the builder declared before the panic.
type BuildError struct {
	// Key is the key of the proxy whose builder panicked.
	Key string
	// Recovered is the value passed to panic().
	Recovered any
	// StackTrace is the stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic was recovered.
	Timestamp time.Time
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("sapling: panic in builder of %q: %v", e.Key, e.Recovered)
}

// Unwrap exposes a recovered error value so errors.Is works through panics.
func (e *BuildError) Unwrap() error {
	if err, ok := e.Recovered.(error); ok {
		return err
	}
	return nil
}

// ErrorHandler receives every recoverable error detected during a pass.
type ErrorHandler func(err error)

// logErrors is the default ErrorHandler.
func logErrors(logger *slog.Logger) ErrorHandler {
	return func(err error) {
		var be *BuildError
		if errors.As(err, &be) {
			logger.Error("builder panicked", "key", be.Key, "panic", be.Recovered)
			logger.Debug("builder stack", "key", be.Key, "stack", be.StackTrace)
			return
		}
		logger.Warn("sapling", "err", err)
	}
}

func captureStack() string {
	return string(debug.Stack())
}
