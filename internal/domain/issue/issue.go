package issue

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

const (
	MinSeverity = 1
	MaxSeverity = 5
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid issue transition")
	// ErrConflict rejects the loser of two concurrent mutations on the same
	// issue; last-committed-wins is not acceptable here.
	ErrConflict = errors.New("issue was modified concurrently")
)

// Status is the issue lifecycle state. Issues are never physically deleted;
// they only move between states.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusClosed     Status = "CLOSED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Terminal reports whether a state admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusClosed
}

var legalTransitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress, StatusResolved, StatusClosed},
	StatusInProgress: {StatusResolved},
}

// CheckTransition validates current -> target. Any request outside the legal
// set fails with ErrInvalidTransition carrying both states; the stored status
// must remain unchanged.
func CheckTransition(current, target Status) error {
	if !target.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, string(target))
	}
	for _, allowed := range legalTransitions[current] {
		if target == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, target)
}

// NotesRequired reports whether a transition target demands resolution notes.
func NotesRequired(target Status) bool {
	return target == StatusResolved || target == StatusClosed
}

func CheckSeverity(severity int) error {
	if severity < MinSeverity || severity > MaxSeverity {
		return fmt.Errorf("%w: severity %d out of range [%d,%d]", ErrValidation, severity, MinSeverity, MaxSeverity)
	}
	return nil
}

var idPattern = regexp.MustCompile(`^ISS-\d{8}-\d{3,}$`)

// FormatID builds the daily-sequenced identifier ISS-YYYYMMDD-NNN. The
// sequence restarts at each local day boundary; widths beyond three digits
// are legal once a day overflows the zero padding.
func FormatID(day time.Time, sequence int) string {
	return fmt.Sprintf("ISS-%s-%03d", day.Format("20060102"), sequence)
}

// DayPrefix is the shared identifier prefix of every issue created on day.
func DayPrefix(day time.Time) string {
	return fmt.Sprintf("ISS-%s-", day.Format("20060102"))
}

func ValidID(id string) bool {
	return idPattern.MatchString(id)
}
