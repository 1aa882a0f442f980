package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("photo_123", "photoId"))
	assert.NoError(t, ValidateID("2b1c6f0e-7d6a-4c55-9d4e-1f0a4a1c9e11", "photoId"))

	err := ValidateID("", "photoId")
	assert.EqualError(t, err, "photoId is required")
	assert.Error(t, ValidateID("../etc/passwd", "photoId"))
	assert.Error(t, ValidateID(strings.Repeat("a", MaxIDLength+1), "photoId"))
}

func TestValidateMaxLength(t *testing.T) {
	assert.NoError(t, ValidateMaxLength("héllo", 5, "name"))
	assert.EqualError(t, ValidateMaxLength("héllo!", 5, "name"), "name must be at most 5 characters long")
}

func TestValidateUUID(t *testing.T) {
	assert.NoError(t, ValidateUUID("2b1c6f0e-7d6a-4c55-9d4e-1f0a4a1c9e11", "id"))
	assert.Error(t, ValidateUUID("req_1", "id"))
}

func TestValidateText(t *testing.T) {
	assert.NoError(t, ValidateText("Cheers to the couple!", 200, "message"))
	assert.Error(t, ValidateText("bad\x00byte", 200, "message"))
}
