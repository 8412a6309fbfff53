// Package common defines the failure taxonomy and small helpers shared by the
// preference and account stacks. Callers should use errors.Is / errors.As (or
// the IsNotFound / IsFatal helpers) to classify values.
package common

import (
	"errors"
	"fmt"
)

// Kind is the coarse class of a failure.
type Kind string

const (
	// KindNotFound marks an expected absence (no row, no key). Not fatal.
	KindNotFound Kind = "not_found"
	// KindFatal marks an unexpected storage or runtime failure.
	KindFatal Kind = "fatal"
	// KindConflict marks a write rejected because of existing data.
	KindConflict Kind = "conflict"
)

// FatalType says where a fatal failure originated.
type FatalType string

const (
	FatalDisk    FatalType = "DISK"
	FatalNetwork FatalType = "NETWORK"
	FatalOS      FatalType = "OS"
)

// Error is the single error type crossing the store and service boundaries.
type Error struct {
	Kind    Kind
	Fatal   FatalType
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	prefix := string(e.Kind)
	if e.Kind == KindFatal {
		prefix = fmt.Sprintf("%s(%s)", e.Kind, e.Fatal)
	}
	switch {
	case e.Op != "" && e.Cause != nil:
		return fmt.Sprintf("[%s:%s] %s: %v", prefix, e.Op, e.Message, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("[%s] %s: %v", prefix, e.Message, e.Cause)
	case e.Op != "":
		return fmt.Sprintf("[%s:%s] %s", prefix, e.Op, e.Message)
	}
	return fmt.Sprintf("[%s] %s", prefix, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NotFound family. Compare with errors.Is.
var (
	ErrNoCurrentAccount   = &Error{Kind: KindNotFound, Message: "no current account"}
	ErrNoCurrentUser      = &Error{Kind: KindNotFound, Message: "no current user"}
	ErrNotFoundByState    = &Error{Kind: KindNotFound, Message: "nothing found by state"}
	ErrPreferenceNotFound = &Error{Kind: KindNotFound, Message: "preference not found"}
	ErrNullAccount        = &Error{Kind: KindNotFound, Message: "null account"}
	ErrNullUser           = &Error{Kind: KindNotFound, Message: "null user"}
)

// ErrUserAlreadyExists is returned when a remote user with the same email and
// server address is already stored.
var ErrUserAlreadyExists = &Error{Kind: KindConflict, Message: "user with email and server address already exists"}

// Disk wraps err as a Fatal(DISK) failure of op. It returns nil for a nil err
// and leaves already classified errors untouched.
func Disk(op string, err error) error {
	return fatal(FatalDisk, op, "disk exception", err)
}

// OS wraps err as a Fatal(OS) failure of op.
func OS(op string, err error) error {
	return fatal(FatalOS, op, "os exception", err)
}

func fatal(t FatalType, op, msg string, err error) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	return &Error{Kind: KindFatal, Fatal: t, Op: op, Message: msg, Cause: err}
}

// KindOf returns the Kind of the first *Error in the chain, or "" if none.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return ""
}

// IsNotFound reports whether err belongs to the NotFound family.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsFatal reports whether err is a fatal failure of the given type.
func IsFatal(err error, t FatalType) bool {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind == KindFatal && typed.Fatal == t
	}
	return false
}
