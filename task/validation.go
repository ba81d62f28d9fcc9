package task

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrEmptyTitle is returned when a task title is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrTitleTooLong is returned when a title or name exceeds MaxTitleLength.
	ErrTitleTooLong = errors.New("title exceeds maximum length")

	// ErrEmptyProjectName is returned when a project name is empty.
	ErrEmptyProjectName = errors.New("project name cannot be empty")

	// ErrInvalidEstimate is returned when an estimate is outside the valid range.
	ErrInvalidEstimate = fmt.Errorf("estimate must be between 0 and %d", MaxEstimate)

	// ErrInvalidColor is returned when a project color is not a hex color.
	ErrInvalidColor = errors.New("color must be a hex color like #6366f1")

	// ErrInvalidDueDate is returned when a due date is not a YYYY-MM-DD date.
	ErrInvalidDueDate = errors.New("due date must look like 2006-01-02")

	// ErrTaskNotFound is returned when a task with the given ID doesn't exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrProjectNotFound is returned when a project with the given ID doesn't exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrAmbiguousTaskIDPrefix is returned when an ID prefix matches multiple tasks.
	ErrAmbiguousTaskIDPrefix = errors.New("ambiguous task ID prefix")

	// ErrAmbiguousProjectIDPrefix is returned when an ID prefix matches multiple projects.
	ErrAmbiguousProjectIDPrefix = errors.New("ambiguous project ID prefix")
)

var hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateTitle checks if the title is valid.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if len(title) > MaxTitleLength {
		return fmt.Errorf("%w: %d > %d", ErrTitleTooLong, len(title), MaxTitleLength)
	}
	return nil
}

// ValidateProjectName checks if the project name is valid.
func ValidateProjectName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyProjectName
	}
	if len(name) > MaxTitleLength {
		return fmt.Errorf("%w: %d > %d", ErrTitleTooLong, len(name), MaxTitleLength)
	}
	return nil
}

// ValidateEstimate checks if the estimate is valid.
func ValidateEstimate(estimate int) error {
	if estimate < 0 || estimate > MaxEstimate {
		return fmt.Errorf("%w: got %d", ErrInvalidEstimate, estimate)
	}
	return nil
}

// ValidateColor checks if the color is a #rgb or #rrggbb hex color.
func ValidateColor(color string) error {
	if !hexColorPattern.MatchString(color) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}
	return nil
}

// ParseDueDate parses a YYYY-MM-DD date as midnight in loc. A blank value
// yields nil.
func ParseDueDate(value string, loc *time.Location) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	due, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDueDate, value)
	}
	return &due, nil
}
