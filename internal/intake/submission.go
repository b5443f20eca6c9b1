package intake

import (
	"strings"

	"github.com/JaimeStill/sgmr/internal/diagnosis"
)

// Submission is the raw patient form.
type Submission struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Symptoms string `json:"symptoms"`
}

// ValidationError reports an empty required field. It is a warning: the
// patient corrects the form and submits again.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Normalize trims each field and collapses internal whitespace runs,
// newlines included, to single spaces.
func (s Submission) Normalize() Submission {
	return Submission{
		Name:     collapse(s.Name),
		Email:    collapse(s.Email),
		Symptoms: collapse(s.Symptoms),
	}
}

// Validate checks required fields in the order symptoms, email, name and
// reports the first one missing.
func (s Submission) Validate() *ValidationError {
	switch {
	case s.Symptoms == "":
		return &ValidationError{Field: "symptoms", Message: "Please enter symptoms before diagnosis."}
	case s.Email == "":
		return &ValidationError{Field: "email", Message: "Please enter your email."}
	case s.Name == "":
		return &ValidationError{Field: "name", Message: "Please enter your name."}
	}
	return nil
}

// Patient converts a validated submission to report metadata.
func (s Submission) Patient() diagnosis.Patient {
	return diagnosis.Patient{
		Name:     s.Name,
		Email:    s.Email,
		Symptoms: s.Symptoms,
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
