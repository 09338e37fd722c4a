package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidRole        = errors.New("rol inválido")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrPhoneTaken         = errors.New("el teléfono ya está verificado por otra cuenta")
	ErrRateLimited        = errors.New("demasiados intentos, espera un momento")
	ErrInvalidPhone       = errors.New("número de teléfono inválido")
	ErrInvalidCode        = errors.New("código de verificación incorrecto")
	ErrPhoneNotVerified   = errors.New("teléfono no verificado")
)
