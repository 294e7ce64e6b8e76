package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	ErrEmployeeNotFound       = errors.New("employee not found for this assignment")
	ErrChantierNotSchedulable = errors.New("chantier is not schedulable")
	ErrAssignmentLocked       = errors.New("assignment is locked")
	ErrGestureInFlight        = errors.New("another drag gesture is still committing")
	ErrTrainingFull           = errors.New("training session is full")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

// ErrConfirmationRequired carries the first pending validator prompt back to the
// caller so the operator can answer it and resubmit the gesture.
type ErrConfirmationRequired struct {
	Prompt string
}

func (e *ErrConfirmationRequired) Error() string {
	return "planning.confirmation_required"
}
func (e *ErrConfirmationRequired) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusConflict, Code: "planning.confirmation_required",
		Message: "confirmation required", Data: e.Prompt}
}
