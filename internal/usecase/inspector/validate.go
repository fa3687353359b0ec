package inspector

import (
	"regexp"
	"strings"

	"twitchDeck/internal/domain"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{4,25}$`)
	numericRe  = regexp.MustCompile(`^\d+$`)
)

// ValidationError points at one invalid form field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Report collects every problem found in a form. Warnings never block a save
// or a connection test.
type Report struct {
	Errors   []ValidationError
	Warnings []string
}

func (r Report) OK() bool {
	return len(r.Errors) == 0
}

func ValidUsername(value string) bool {
	return usernameRe.MatchString(domain.NormalizeChannel(value))
}

func ValidNumericID(value string) bool {
	return numericRe.MatchString(strings.TrimSpace(value))
}

// LooksLikeToken es sólo una pista: prefijo "oauth:" o más de 20 caracteres.
func LooksLikeToken(value string) bool {
	value = strings.TrimSpace(value)
	return strings.HasPrefix(value, "oauth:") || len(value) > 20
}

// Validate checks the credential fields. A blank moderator ID is allowed and
// falls back to the broadcaster ID; any other value must be numeric.
func Validate(f Form) Report {
	var r Report

	if !ValidUsername(f.Channel) {
		r.Errors = append(r.Errors, ValidationError{
			Field:   domain.KeyTwitchChannel,
			Message: "must be 4-25 letters, digits or underscores",
		})
	}

	token := strings.TrimSpace(f.Token)
	if token == "" {
		r.Errors = append(r.Errors, ValidationError{Field: domain.KeyTwitchToken, Message: "is required"})
	} else if !LooksLikeToken(token) {
		r.Warnings = append(r.Warnings, "token does not look like an OAuth token")
	}

	if !ValidNumericID(f.BroadcasterID) {
		r.Errors = append(r.Errors, ValidationError{Field: domain.KeyTwitchBroadcasterID, Message: "must be numeric"})
	}
	if trim(f.ModeratorID) != "" && !ValidNumericID(f.ModeratorID) {
		r.Errors = append(r.Errors, ValidationError{Field: domain.KeyTwitchModeratorID, Message: "must be numeric"})
	}

	return r
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
