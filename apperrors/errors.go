// apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError: field ขาด/ไม่ถูกต้อง ไม่มี state ใดถูกเปลี่ยน
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// LockedError is returned for any mutation attempted on an invoiced addon.
type LockedError struct {
	AddonID uint
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("locked: addon %d is invoiced and can no longer be changed", e.AddonID)
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("not found: %s", e.Entity)
	}
	return fmt.Sprintf("not found: %s %s", e.Entity, e.ID)
}

// StateError: transition ผิดลำดับ, submit ตะกร้าว่าง, payer ยังไม่ resolve
type StateError struct {
	Step    string
	Message string
}

func (e *StateError) Error() string {
	if e.Step == "" {
		return "state: " + e.Message
	}
	return fmt.Sprintf("state: %s: %s", e.Step, e.Message)
}

func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func Locked(addonID uint) error {
	return &LockedError{AddonID: addonID}
}

func NotFound(entity string, id any) error {
	s := ""
	if id != nil {
		s = fmt.Sprint(id)
	}
	return &NotFoundError{Entity: entity, ID: s}
}

func State(step, format string, args ...any) error {
	return &StateError{Step: step, Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsLocked(err error) bool {
	var target *LockedError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsState(err error) bool {
	var target *StateError
	return errors.As(err, &target)
}

// Kind returns the short taxonomy name used in API error codes.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return "validation"
	case IsLocked(err):
		return "locked"
	case IsNotFound(err):
		return "notFound"
	case IsState(err):
		return "state"
	default:
		return "internal"
	}
}
