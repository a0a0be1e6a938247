package usecase

import (
	"errors"
	"strings"
)

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeConflict          = "CONFLICT"
	CodePersistence       = "PERSISTENCE_ERROR"
	CodeUpstream          = "UPSTREAM_ERROR"
)

// DomainError é um erro causado pela entrada ou pelo estado do negócio.
type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError é uma falha de banco ou de integração.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func newValidationError(fields []ValidationError) *DomainError {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Field+" ("+f.Message+")")
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(parts, ", "),
		Fields:  fields,
	}
}

func notFound(err error) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: err.Error()}
}

func persistenceError(msg string, err error) *TechnicalError {
	return &TechnicalError{Code: CodePersistence, Message: msg, Err: err}
}

func upstreamError(msg string, err error) *TechnicalError {
	return &TechnicalError{Code: CodeUpstream, Message: msg, Err: err}
}
