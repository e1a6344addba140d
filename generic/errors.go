/*
errors.go - Centralized error types for the workforce engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Engine packages return these (or wrap them) only for malformed input.
  Business findings such as an over-long week are Violations, not errors.

ERROR CATEGORIES:
  1. Shape errors - Malformed times, ladders, templates, horizons
  2. Configuration errors - Missing or ambiguous active rule set
  3. Source errors - Failures of caller-supplied collaborators

USAGE:
  Callers test with errors.Is / errors.As:

    if errors.Is(err, generic.ErrMalformedTime) {
        var pe *generic.TimeParseError
        errors.As(err, &pe)
        log.Printf("bad time %q", pe.Input)
    }

SEE ALSO:
  - time.go: ParseClock / ParseDate return TimeParseError
  - ladder/ladder.go: Validate returns LadderOrderError
  - factory/config.go: Wraps these errors with the config path
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMalformedTime is returned when a clock or date string cannot be parsed.
	ErrMalformedTime = errors.New("malformed time")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrNonMonotonicLadder is returned when ladder levels are not strictly
	// increasing in both level number and hour threshold.
	ErrNonMonotonicLadder = errors.New("wage ladder levels are not strictly increasing")

	// ErrInvalidShift is returned when a shift record fails its shape check.
	ErrInvalidShift = errors.New("invalid shift")

	// ErrInvalidTemplate is returned for templates or rotation groups that
	// cannot be projected (bad day index, empty rotation, mismatched length).
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrInvalidHorizon is returned when a rollout horizon is not positive.
	ErrInvalidHorizon = errors.New("invalid rollout horizon")

	// ErrInvalidRule is returned for malformed supplement or work-time rules.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrNoActiveRuleSet is returned when no work-time rule set is active.
	ErrNoActiveRuleSet = errors.New("no active work-time rule set")

	// ErrMultipleActiveRuleSets is returned when more than one rule set is active.
	ErrMultipleActiveRuleSets = errors.New("more than one active work-time rule set")

	// ErrNotFound is returned when a referenced ladder or template doesn't exist.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TimeParseError describes an unparseable clock or date string.
type TimeParseError struct {
	Input  string
	Layout string
	Err    error
}

func (e *TimeParseError) Error() string {
	return fmt.Sprintf("malformed time %q (expected %s)", e.Input, e.Layout)
}

func (e *TimeParseError) Unwrap() []error {
	return []error{ErrMalformedTime, e.Err}
}

// FieldError attaches the location of a malformed value to its cause.
type FieldError struct {
	Path string // e.g. "templates[2].entries[0].start"
	Err  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsShapeError returns true if the error is due to malformed input data
// rather than a failing collaborator.
func IsShapeError(err error) bool {
	return errors.Is(err, ErrMalformedTime) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrNonMonotonicLadder) ||
		errors.Is(err, ErrInvalidShift) ||
		errors.Is(err, ErrInvalidTemplate) ||
		errors.Is(err, ErrInvalidHorizon) ||
		errors.Is(err, ErrInvalidRule)
}

// IsConfigError returns true if the error concerns rule-set selection.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrNoActiveRuleSet) ||
		errors.Is(err, ErrMultipleActiveRuleSets)
}
