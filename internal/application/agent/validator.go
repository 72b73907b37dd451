package agent

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aescanero/climeai/pkg/domain"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.:-]{1,128}$`)

// ChatRequest is one user turn
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

// Validator validates chat requests
type Validator struct {
	maxMessageLength int
}

// NewValidator creates a validator limiting messages to maxMessageLength runes
func NewValidator(maxMessageLength int) *Validator {
	return &Validator{maxMessageLength: maxMessageLength}
}

// Validate checks a chat request
func (v *Validator) Validate(req ChatRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return fmt.Errorf("%w: message is required", domain.ErrInvalidRequest)
	}

	if n := utf8.RuneCountInString(req.Message); v.maxMessageLength > 0 && n > v.maxMessageLength {
		return fmt.Errorf("%w: message has %d characters, limit is %d", domain.ErrInvalidRequest, n, v.maxMessageLength)
	}

	if req.SessionID != "" {
		if err := ValidateSessionID(req.SessionID); err != nil {
			return err
		}
	}

	return nil
}

// ValidateSessionID checks the shape of a session ID
func ValidateSessionID(id string) error {
	if !sessionIDPattern.MatchString(id) {
		return fmt.Errorf("%w: invalid session id %q", domain.ErrInvalidRequest, id)
	}
	return nil
}
