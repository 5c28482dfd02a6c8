package validation

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "go-audio-emotion/internal/errors"
)

// EndpointValidator checks the service URLs read from configuration
type EndpointValidator struct {
	allowedSchemes []string
}

// NewEndpointValidator accepts http and https endpoints
func NewEndpointValidator() *EndpointValidator {
	return &EndpointValidator{
		allowedSchemes: []string{"http", "https"},
	}
}

// NewEndpointValidatorWithSchemes creates a validator for other schemes
// such as redis and rediss
func NewEndpointValidatorWithSchemes(schemes ...string) *EndpointValidator {
	return &EndpointValidator{allowedSchemes: schemes}
}

// ValidateEndpoint reports which setting is wrong via name
func (v *EndpointValidator) ValidateEndpoint(name, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return apperrors.NewValidationError(fmt.Sprintf("%s cannot be empty", name), nil)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("%s has an invalid URL format", name), err)
	}

	if !v.isSchemeAllowed(parsed.Scheme) {
		return apperrors.NewValidationError(
			fmt.Sprintf("%s scheme %q not allowed (want %s)", name, parsed.Scheme, strings.Join(v.allowedSchemes, " or ")), nil)
	}

	if parsed.Host == "" {
		return apperrors.NewValidationError(fmt.Sprintf("%s must have a valid host", name), nil)
	}

	return nil
}

// ValidateOrigin accepts "*" or an http(s) origin without a path
func (v *EndpointValidator) ValidateOrigin(name, origin string) error {
	if origin == "*" {
		return nil
	}
	if err := v.ValidateEndpoint(name, origin); err != nil {
		return err
	}
	if parsed, _ := url.Parse(origin); strings.Trim(parsed.Path, "/") != "" {
		return apperrors.NewValidationError(fmt.Sprintf("%s must be an origin without a path", name), nil)
	}
	return nil
}

// isSchemeAllowed checks if the URL scheme is in the allowed list
func (v *EndpointValidator) isSchemeAllowed(scheme string) bool {
	for _, allowed := range v.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}
