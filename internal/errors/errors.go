// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/unclebandit/campaignhub-backend/internal/model"
)

// NotFoundError covers any entity that is absent or not owned by the caller.
// Ownership misses are deliberately indistinguishable from absence.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NewNotFound(resource string, id any) error {
	return &NotFoundError{Resource: resource, ID: fmt.Sprint(id)}
}

// ValidationError names the request fields that were missing or malformed.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

func NewValidation(fields ...string) error {
	return &ValidationError{Fields: fields}
}

// InvalidTransitionError is returned when cancel or execute hits a schedule
// that is already in a terminal state.
type InvalidTransitionError struct {
	Status model.ScheduleStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("schedule already %s", e.Status)
}

func NewInvalidTransition(status model.ScheduleStatus) error {
	return &InvalidTransitionError{Status: status}
}

// AlreadyProcessingError is returned when an execute call finds another
// dispatch run already holding the schedule's claim.
type AlreadyProcessingError struct {
	ScheduleID string
}

func (e *AlreadyProcessingError) Error() string {
	return "schedule dispatch already in progress"
}

func NewAlreadyProcessing(scheduleID string) error {
	return &AlreadyProcessingError{ScheduleID: scheduleID}
}

// NoSubscribersError is a client-visible precondition failure on execute,
// not a zero-result success.
type NoSubscribersError struct {
	CampaignID int
}

func (e *NoSubscribersError) Error() string {
	return fmt.Sprintf("campaign %d has no subscribers", e.CampaignID)
}

func NewNoSubscribers(campaignID int) error {
	return &NoSubscribersError{CampaignID: campaignID}
}

type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	return e.Reason
}

func NewUnauthorized(reason string) error {
	return &UnauthorizedError{Reason: reason}
}

// UnverifiedError rejects an authenticated user whose email address has not
// been confirmed yet.
type UnverifiedError struct{}

func (e *UnverifiedError) Error() string {
	return "email not verified"
}

func NewUnverified() error {
	return &UnverifiedError{}
}

// ErrSMSUnimplemented marks the SMS channel as lacking a configured
// transport. It is never silently a success.
var ErrSMSUnimplemented = errors.New("sms transport not configured")

// HTTPStatus maps an application error to its response code. Anything
// unrecognized is an internal fault.
func HTTPStatus(err error) int {
	var (
		nf *NotFoundError
		ve *ValidationError
		it *InvalidTransitionError
		ns *NoSubscribersError
		ap *AlreadyProcessingError
		ua *UnauthorizedError
		uv *UnverifiedError
	)
	switch {
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &ve), errors.As(err, &it), errors.As(err, &ns):
		return http.StatusBadRequest
	case errors.As(err, &ap):
		return http.StatusConflict
	case errors.As(err, &ua):
		return http.StatusUnauthorized
	case errors.As(err, &uv):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}
