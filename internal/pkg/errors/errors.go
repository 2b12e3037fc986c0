package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок аутентификации (нет секрета, битая подпись).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у участника недостаточно прав для действия
	// (например, не-капитан пытается отправить пруф).
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния: команда не полная,
	// маршрут не назначен, переименование уже использовано и т.п.
	// Это ожидаемые, штатные исходы, а не сбои.
	ErrConflict = errors.New("resource state conflict")

	// ErrAlreadyProcessed используется, когда решение по пруфу уже принято
	// (защита от повторного клика модератора).
	ErrAlreadyProcessed = errors.New("already processed")
)
