package errors

import (
	"strings"
	"unicode"
)

const (
	maxColumnIDLength = 256
	maxDimensions     = 32
	maxRootNameLength = 256
)

// ValidateColumnID validates a column id supplied by a user.
//
// The rules are deliberately loose because ids come from CSV headers and
// document keys:
//   - No empty ids
//   - No control characters or null bytes
//   - Maximum length of 256 bytes
func ValidateColumnID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "column id cannot be empty")
	}
	if len(id) > maxColumnIDLength {
		return New(ErrCodeInvalidInput, "column id too long (max %d characters)", maxColumnIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "column id %q contains control characters", id)
		}
	}
	return nil
}

// ValidateDimensions validates an ordered dimension list. An empty list is
// valid: it selects no aggregation. Each id must pass [ValidateColumnID]
// and appear once.
func ValidateDimensions(dims []string) error {
	if len(dims) > maxDimensions {
		return New(ErrCodeInvalidInput, "too many dimensions (max %d)", maxDimensions)
	}
	seen := make(map[string]bool, len(dims))
	for _, d := range dims {
		if err := ValidateColumnID(d); err != nil {
			return err
		}
		if seen[d] {
			return New(ErrCodeInvalidInput, "dimension %q listed twice", d)
		}
		seen[d] = true
	}
	return nil
}

// ValidateMeasure validates the measure column id. An empty measure is
// valid: it selects no aggregation. A measure column may also be listed as
// a dimension.
func ValidateMeasure(measure string) error {
	if measure == "" {
		return nil
	}
	return ValidateColumnID(measure)
}

// ValidateRootName validates the super-root display name.
func ValidateRootName(name string) error {
	if len(name) > maxRootNameLength {
		return New(ErrCodeInvalidInput, "root name too long (max %d characters)", maxRootNameLength)
	}
	if strings.ContainsFunc(name, unicode.IsControl) {
		return New(ErrCodeInvalidInput, "root name contains control characters")
	}
	return nil
}
