package service

import "errors"

// ErrValidation casa com toda falha de validação de entrada
var ErrValidation = errors.New("validation error")

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

func newValidationError(msg string) error {
	return &validationError{msg: msg}
}

// Erros de validação. As mensagens vão para o cliente como estão.
var (
	ErrMissingEmail      = newValidationError("Missing email")
	ErrMissingPassword   = newValidationError("Missing password")
	ErrMissingName       = newValidationError("Missing name")
	ErrMissingType       = newValidationError("Missing type")
	ErrMissingData       = newValidationError("Missing data")
	ErrParentNotFound    = newValidationError("Parent not found")
	ErrParentIsNotFolder = newValidationError("Parent is not a folder")
	ErrInvalidSize       = newValidationError("Invalid size")
)

var (
	// ErrUnauthorized cobre credenciais ausentes, inválidas, expiradas ou revogadas
	ErrUnauthorized = errors.New("Unauthorized")
	// ErrNotFound vale tanto para recursos inexistentes quanto para os que
	// o chamador não pode ver
	ErrNotFound = errors.New("Not found")
	// ErrAlreadyExists é retornado no cadastro com email já usado
	ErrAlreadyExists = errors.New("Already exist")
	// ErrFolderHasNoContent é retornado ao ler o conteúdo de uma pasta
	ErrFolderHasNoContent = errors.New("A folder doesn't have content")
	// ErrInternal esconde do chamador as falhas dos stores
	ErrInternal = errors.New("Internal server error")
)
