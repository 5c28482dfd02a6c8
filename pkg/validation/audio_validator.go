package validation

import (
	"fmt"
	"strings"

	apperrors "go-audio-emotion/internal/errors"
)

// AudioContentTypePrefix is the MIME family every upload must declare
const AudioContentTypePrefix = "audio/"

// AudioValidator handles upload validation logic
type AudioValidator struct {
	allowedPrefix string
}

// NewAudioValidator creates a validator accepting the audio MIME family
func NewAudioValidator() *AudioValidator {
	return &AudioValidator{allowedPrefix: AudioContentTypePrefix}
}

// ValidateContentType checks the declared MIME type of the upload
func (v *AudioValidator) ValidateContentType(contentType string) error {
	if !strings.HasPrefix(contentType, v.allowedPrefix) {
		return apperrors.NewValidationError(
			fmt.Sprintf("Invalid file type: %s. Must be audio file.", contentType), nil)
	}
	return nil
}

// ValidatePayload rejects empty uploads
func (v *AudioValidator) ValidatePayload(payload []byte) error {
	if len(payload) == 0 {
		return apperrors.NewValidationError("Empty audio file", nil)
	}
	return nil
}

// Validate runs the content-type check first, then the payload check
func (v *AudioValidator) Validate(contentType string, payload []byte) error {
	if err := v.ValidateContentType(contentType); err != nil {
		return err
	}
	return v.ValidatePayload(payload)
}
