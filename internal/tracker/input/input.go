// Package input holds the pure validation and formatting rules for health
// record fields. Nothing here touches storage; the service layer runs these
// checks before any store call.
package input

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/healthtrack/internal/tracker/domain"
)

// MaxNoteWords is the word limit for the free-text note field.
const MaxNoteWords = 50

var (
	// ErrInvalidNumber reports a numeric field that failed to parse. It is
	// always wrapped in a *FieldError naming the field.
	ErrInvalidNumber = errors.New("input: invalid number")

	// ErrEmptyRecord reports a create attempt with every field blank.
	ErrEmptyRecord = errors.New("input: all record fields are empty")

	// ErrNoteTooLong reports a note over MaxNoteWords words.
	ErrNoteTooLong = errors.New("input: note is too long")
)

// FieldError ties a validation failure to the field that caused it, so the
// presentation layer can point at the offending input.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// RecordInput carries the raw field strings collected by the presentation
// layer, untrimmed and unparsed.
type RecordInput struct {
	Weight        string
	Temperature   string
	BloodPressure string
	Note          string
}

// AllEmpty reports whether every field is blank after trimming whitespace.
func (in RecordInput) AllEmpty() bool {
	return strings.TrimSpace(in.Weight) == "" &&
		strings.TrimSpace(in.Temperature) == "" &&
		strings.TrimSpace(in.BloodPressure) == "" &&
		strings.TrimSpace(in.Note) == ""
}

// ParseMeasurement parses a numeric field. A blank string yields fallback
// (zero on the create path, the previously stored value on the edit path).
// Anything else must parse as a float or the result is a *FieldError naming
// the field and wrapping ErrInvalidNumber.
func ParseMeasurement(field, text string, fallback float64) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback, nil
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, &FieldError{Field: field, Err: ErrInvalidNumber}
	}
	return v, nil
}

// TextOrFallback implements the edit fallback for the free-form fields: a
// blank input keeps the previously stored value.
func TextOrFallback(text, fallback string) string {
	if text == "" {
		return fallback
	}
	return text
}

// CheckNote enforces the note word limit. Words are whitespace-separated;
// exactly MaxNoteWords passes.
func CheckNote(note string) error {
	if len(strings.Fields(note)) > MaxNoteWords {
		return ErrNoteTooLong
	}
	return nil
}

// FormatRecord renders one record as a single stable line for export. The
// caller owns writing lines to their destination.
func FormatRecord(r domain.HealthRecord) string {
	return fmt.Sprintf("%s,%.1f,%.1f,%s,%s",
		r.Date.Format("2006-01-02"),
		r.Weight,
		r.Temperature,
		r.BloodPressure,
		r.Note,
	)
}
