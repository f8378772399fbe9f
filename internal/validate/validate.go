// Package validate provides pure validation of candidate contacts against
// the current active collection.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"contactbook/internal/model"
)

// Validation errors. Each field failure wraps exactly one of these.
var (
	ErrRequiredField  = errors.New("required field is missing")
	ErrInvalidFormat  = errors.New("invalid format")
	ErrDuplicatePhone = errors.New("phone number already in use")
)

// emailPattern accepts the basic local@domain.tld shape.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldError describes a single failed field.
type FieldError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

// Unwrap exposes the underlying sentinel for errors.Is.
func (e FieldError) Unwrap() error {
	return e.Err
}

// FieldErrors collects every field failure found in one validation pass.
type FieldErrors []FieldError

// Error implements the error interface.
func (e FieldErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Error())
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual field failures so errors.Is can match the
// sentinel inside any of them.
func (e FieldErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, fe := range e {
		errs[i] = fe
	}
	return errs
}

// Fields returns a field-name to message map for API responses.
func (e FieldErrors) Fields() map[string]string {
	fields := make(map[string]string, len(e))
	for _, fe := range e {
		fields[fe.Field] = fe.Err.Error()
	}
	return fields
}

// Contact checks a candidate's required fields, email shape and phone
// uniqueness against the active collection. The contact identified by
// excludeID is skipped during the uniqueness check so a record can be
// edited without colliding with itself. All failures are collected in a
// single pass; a nil return means the candidate is valid. The function has
// no side effects.
func Contact(input model.ContactInput, active []model.Contact, excludeID string) FieldErrors {
	var errs FieldErrors

	if strings.TrimSpace(input.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Err: ErrRequiredField})
	}

	email := strings.TrimSpace(input.Email)
	switch {
	case email == "":
		errs = append(errs, FieldError{Field: "email", Err: ErrRequiredField})
	case !emailPattern.MatchString(email):
		errs = append(errs, FieldError{Field: "email", Err: ErrInvalidFormat})
	}

	phone := strings.TrimSpace(input.Phone)
	switch {
	case phone == "":
		errs = append(errs, FieldError{Field: "phone", Err: ErrRequiredField})
	case phoneTaken(phone, active, excludeID):
		errs = append(errs, FieldError{Field: "phone", Err: ErrDuplicatePhone})
	}

	if len(errs) == 0 {
		return nil
	}

	return errs
}

// phoneTaken reports whether any active contact other than excludeID holds
// an equal trimmed phone value. The comparison is case-sensitive and exact.
func phoneTaken(phone string, active []model.Contact, excludeID string) bool {
	for _, c := range active {
		if c.ID == excludeID {
			continue
		}
		if strings.TrimSpace(c.Phone) == phone {
			return true
		}
	}
	return false
}
