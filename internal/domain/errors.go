package domain

import (
	"fmt"
)

// InvalidRangeError covers malformed booking windows and bad rental modes.
type InvalidRangeError struct {
	Field string
	Msg   string
}

func (e InvalidRangeError) Error() string {
	if e.Field != "" && e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	return "invalid range"
}

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

type InvalidTransitionError struct {
	From string
	To   string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition %s -> %s is not allowed", e.From, e.To)
}

type AuthError struct {
	Msg string
	Err error
}

func (e AuthError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "unauthorized"
}

func (e AuthError) Unwrap() error { return e.Err }

// UpstreamError wraps payment gateway and Telegram API failures.
type UpstreamError struct {
	Service string
	Err     error
}

func (e UpstreamError) Error() string {
	if e.Service == "" {
		return "upstream error"
	}
	return fmt.Sprintf("%s unavailable", e.Service)
}

func (e UpstreamError) Unwrap() error { return e.Err }
