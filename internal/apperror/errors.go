// Package apperror holds the error taxonomy shared by every layer of the service.
//
// Errors carry a machine-readable Kind plus a message that is safe to show to
// API clients. The wrapped cause, when any, is only meant for logs.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Kind string

const (
	KindMissingTenant      Kind = "missing_tenant"
	KindNotFound           Kind = "not_found"
	KindDuplicateField     Kind = "duplicate_field"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindWeakPassword       Kind = "weak_password"
	KindValidation         Kind = "validation"
	KindStorage            Kind = "storage"
)

// Error is a domain error carrying its kind and, optionally, the offending field.
type Error struct {
	Kind    Kind
	Message string
	// Field names the offending field for duplicate and validation errors.
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code is the HTTP status code to be returned.
func (e *Error) Code() int {
	switch e.Kind {
	case KindMissingTenant, KindValidation, KindWeakPassword:
		return http.StatusBadRequest
	case KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateField:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func MissingTenant() *Error {
	return &Error{Kind: KindMissingTenant, Message: "cliente_id é obrigatório"}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " não encontrado"}
}

func DuplicateField(field string) *Error {
	return &Error{Kind: KindDuplicateField, Field: field, Message: fmt.Sprintf("%s já cadastrado", field)}
}

// InvalidCredentials uses the same message for unknown logins and wrong passwords.
func InvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: "login ou senha inválidos"}
}

func WeakPassword(field string) *Error {
	return &Error{
		Kind:    KindWeakPassword,
		Field:   field,
		Message: "a senha deve ter ao menos 8 caracteres, com letra maiúscula, minúscula, número e caractere especial",
	}
}

func Validation(field, msg string, args ...any) *Error {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Message: "erro interno", Err: err}
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

// From converts any error into an *Error, treating unknown errors as storage failures.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Storage(err)
}

// Status maps err into an HTTP status code.
func Status(err error) int {
	return From(err).Code()
}

// FromValidationError converts validator failures into a validation error naming the first field.
func FromValidationError(err error) *Error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return Validation("", "requisição inválida")
	}

	fe := ve[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return Validation(field, "%s é obrigatório", field)
	case "strongpwd":
		return WeakPassword(field)
	case "gt", "min":
		return Validation(field, "%s deve ser maior que %s", field, fe.Param())
	case "datetime":
		return Validation(field, "%s deve estar no formato %s", field, fe.Param())
	default:
		return Validation(field, "%s inválido", field)
	}
}
