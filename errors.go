package gpusim

import (
	"errors"
	"fmt"
)

// Error represents a structured gpusim error with the operation, and
// optionally the kernel and step, that were in progress when it occurred.
type Error struct {
	Op     string // operation that failed (e.g. "bind", "compile", "readback")
	Kernel string // kernel name, "" if not applicable
	Step   int    // simulation step, -1 if not applicable
	Code   Code   // high-level error category
	Msg    string // human-readable message
	Inner  error  // wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}

	if e.Kernel != "" {
		parts = append(parts, fmt.Sprintf("kernel=%s", e.Kernel))
	}

	if e.Step >= 0 {
		parts = append(parts, fmt.Sprintf("step=%d", e.Step))
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}

	if len(parts) > 0 {
		return fmt.Sprintf("gpusim: %s (%s)", msg, parts[0])
	}

	return fmt.Sprintf("gpusim: %s", msg)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is provides errors.Is support matching on Code.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}

	return false
}

// Code represents the high-level error taxonomy of the driver.
type Code string

const (
	CodeConfig          Code = "config error"
	CodeCompilation     Code = "kernel compilation failed"
	CodeMissingConstant Code = "missing constant"
	CodeBinding         Code = "binding error"
	CodeDevice          Code = "device error"
	CodeOverflow        Code = "overflow"
)

// NewError creates a new structured error with no kernel/step context.
func NewError(op string, code Code, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg, Step: -1}
}

// NewKernelError creates an error scoped to a specific kernel.
func NewKernelError(op, kernel string, code Code, msg string) *Error {
	return &Error{Op: op, Kernel: kernel, Code: code, Msg: msg, Step: -1}
}

// NewStepError creates an error scoped to a specific simulation step.
func NewStepError(op string, step int, code Code, msg string) *Error {
	return &Error{Op: op, Step: step, Code: code, Msg: msg}
}

// WrapError wraps an existing error with gpusim context, preserving code
// and scope if the inner error is already structured.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}

	if ge, ok := inner.(*Error); ok {
		return &Error{
			Op:     op,
			Kernel: ge.Kernel,
			Step:   ge.Step,
			Code:   ge.Code,
			Msg:    ge.Msg,
			Inner:  ge.Inner,
		}
	}

	return &Error{
		Op:    op,
		Code:  CodeDevice,
		Msg:   inner.Error(),
		Inner: inner,
		Step:  -1,
	}
}

// IsCode reports whether err (or any error it wraps) carries the given code.
func IsCode(err error, code Code) bool {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Code == code
	}
	return false
}
