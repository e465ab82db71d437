package hwscan

import (
	"errors"
	"slices"
	"strconv"
	"strings"
)

// Status is the integer result of scan_devices.
type Status int32

const (
	StatusCritical         Status = -666
	StatusSuccess          Status = 0
	StatusDriverFailure    Status = 1
	StatusOperationFailed  Status = 2
	StatusConversionFailed Status = 3
)

// Kind classifies a scan failure.
type Kind string

const (
	KindCritical         Kind = "critical"          // unexpected fault in the scanner
	KindDriverFailure    Kind = "driver_failure"    // a driver could not be queried
	KindOperationFailed  Kind = "operation_failed"  // generic scanner failure
	KindConversionFailed Kind = "conversion_failed" // a native value could not be mapped
	KindUnrecognized     Kind = "unrecognized"      // status code outside the agreed set
)

// Error is the single failure type returned by a scan.
type Error struct {
	Cause  error
	Kind   Kind
	Detail string
	Path   []string
	Code   Status
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString("hwscan: ")
	b.WriteString(string(e.Kind))
	b.WriteString(" (code ")
	b.WriteString(strconv.Itoa(int(e.Code)))
	b.WriteByte(')')

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so the Err* sentinels work with
// errors.Is regardless of code or detail.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

var (
	ErrCritical         = &Error{Kind: KindCritical, Code: StatusCritical}
	ErrDriverFailure    = &Error{Kind: KindDriverFailure, Code: StatusDriverFailure}
	ErrOperationFailed  = &Error{Kind: KindOperationFailed, Code: StatusOperationFailed}
	ErrConversionFailed = &Error{Kind: KindConversionFailed, Code: StatusConversionFailed}
	ErrUnrecognized     = &Error{Kind: KindUnrecognized}
)

var statusDetail = map[Status]string{
	StatusCritical:         "unexpected error in the native scanner",
	StatusDriverFailure:    "unable to query a device driver",
	StatusOperationFailed:  "native scanner operation failed",
	StatusConversionFailed: "native scanner could not convert a result",
}

// Kind returns the failure kind for a non-zero status.
func (s Status) Kind() Kind {
	switch s {
	case StatusCritical:
		return KindCritical
	case StatusDriverFailure:
		return KindDriverFailure
	case StatusOperationFailed:
		return KindOperationFailed
	case StatusConversionFailed:
		return KindConversionFailed
	default:
		return KindUnrecognized
	}
}

// Err maps a status to its typed failure, or nil for StatusSuccess.
// Unknown codes are kept in Error.Code.
func (s Status) Err() error {
	if s == StatusSuccess {
		return nil
	}

	detail, ok := statusDetail[s]
	if !ok {
		detail = "unknown error: " + strconv.Itoa(int(s))
	}
	return &Error{Kind: s.Kind(), Code: s, Detail: detail}
}

// KindOf returns the kind of a scan error, or "" if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func conversionError(path []string, detail string, cause error) *Error {
	return &Error{
		Kind:   KindConversionFailed,
		Code:   StatusConversionFailed,
		Path:   slices.Clone(path),
		Detail: detail,
		Cause:  cause,
	}
}
