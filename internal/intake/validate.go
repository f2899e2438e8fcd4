package intake

import (
	"fmt"

	"github.com/iamdashante1/mb/models"
)

// ValidationError is a caller-facing rejection with a readable reason.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// Validate applies the required-field policy of kind. Attachments stand in
// for the contact fields of an RSVP and for the message of a tribute.
func Validate(kind models.Kind, rec Record) error {
	switch kind {
	case models.KindRSVP:
		if rec.Name == "" {
			return invalid("Name is required.")
		}

		if !rec.HasAttachments() && (rec.Email == "" || rec.Relationship == "") {
			return invalid("Name, email, and relationship are required.")
		}

	case models.KindTribute:
		if rec.Name == "" {
			return invalid("Name is required.")
		}

		if !rec.HasAttachments() && rec.Message == "" {
			return invalid("Please share a message or attach a photo or video.")
		}

	default:
		return fmt.Errorf("unknown submission kind %q", kind)
	}

	return nil
}
