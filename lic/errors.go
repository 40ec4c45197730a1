package lic

import (
	"errors"
	"fmt"
)

// Kind groups rules for callers that branch on error class.
type Kind string

const (
	KindFormat   Kind = "Format"
	KindTable    Kind = "Table"
	KindInternal Kind = "Internal"
)

// Rule is a stable identifier for one failure condition. Its middle segment
// names the Kind.
type Rule string

const (
	RuleUnknownBlock  Rule = "LIC-FMT-001"
	RuleTruncated     Rule = "LIC-FMT-002"
	RuleInvalidString Rule = "LIC-FMT-003"
	RuleUnknownKind   Rule = "LIC-FMT-004"
	RuleTablePersist  Rule = "LIC-TAB-001"
	RuleTableFetch    Rule = "LIC-TAB-002"
	RuleStoreIdentity Rule = "LIC-INT-001"
)

// Kind derives the rule's class from its identifier.
func (r Rule) Kind() Kind {
	if len(r) < 7 {
		return KindInternal
	}
	switch r[4:7] {
	case "FMT":
		return KindFormat
	case "TAB":
		return KindTable
	}
	return KindInternal
}

// Error reports a failed decode or encode. Offset is the stream position for
// format errors, or -1.
type Error struct {
	Rule    Rule
	Offset  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := "lic: " + e.Message
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s (offset %d)", msg, e.Offset)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Kind is shorthand for e.Rule.Kind().
func (e *Error) Kind() Kind { return e.Rule.Kind() }

func fail(rule Rule, format string, args ...any) error {
	return &Error{Rule: rule, Offset: -1, Message: fmt.Sprintf(format, args...)}
}

func failAt(rule Rule, offset int, format string, args ...any) error {
	return &Error{Rule: rule, Offset: offset, Message: fmt.Sprintf(format, args...)}
}

func wrap(rule Rule, cause error, format string, args ...any) error {
	return &Error{Rule: rule, Offset: -1, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// RuleID returns the Rule carried by err, or "".
func RuleID(err error) Rule {
	if e := (*Error)(nil); errors.As(err, &e) {
		return e.Rule
	}
	return ""
}

// IsKind reports whether err carries a rule of the given kind.
func IsKind(err error, kind Kind) bool {
	r := RuleID(err)
	return r != "" && r.Kind() == kind
}

// IsFormatError reports whether err describes a malformed stream.
func IsFormatError(err error) bool { return IsKind(err, KindFormat) }
