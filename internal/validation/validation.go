package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// MaxIDLength bounds ids accepted from clients
	MaxIDLength = 128
	// MaxNameLength bounds guest names shown on the display
	MaxNameLength = 80
	// MaxMessageLength bounds activity messages shown on the display
	MaxMessageLength = 280
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_.:-]+$`)

// ValidateRequired checks that a field is not blank
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(fieldName + " is required")
	}
	return nil
}

// ValidateMaxLength checks the maximum length of a string in runes
func ValidateMaxLength(value string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(value) > maxLength {
		return fmt.Errorf("%s must be at most %d characters long", fieldName, maxLength)
	}
	return nil
}

// ValidateUUID checks that a string is a valid UUID
func ValidateUUID(value, fieldName string) error {
	if _, err := uuid.Parse(value); err != nil {
		return errors.New(fieldName + " must be a valid UUID")
	}
	return nil
}

// ValidateID checks an opaque identifier such as a photo, heart or category id
func ValidateID(value, fieldName string) error {
	if err := ValidateRequired(value, fieldName); err != nil {
		return err
	}
	if err := ValidateMaxLength(value, MaxIDLength, fieldName); err != nil {
		return err
	}
	if !idPattern.MatchString(value) {
		return errors.New(fieldName + " contains invalid characters")
	}
	return nil
}

// ValidateText checks optional free text shown on the display
func ValidateText(value string, maxLength int, fieldName string) error {
	if strings.ContainsAny(value, "\x00\r") {
		return errors.New(fieldName + " contains invalid characters")
	}
	return ValidateMaxLength(value, maxLength, fieldName)
}
