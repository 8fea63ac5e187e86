// Package apperr содержит доменные ошибки, которые граница HTTP
// преобразует в коды состояния.
package apperr

import (
	"errors"
)

var (
	// ErrValidation некорректный или отсутствующий вход (400)
	ErrValidation = errors.New("validation error")
	// ErrNotFound неизвестный идентификатор, email или токен (404)
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized неверные учётные данные (401)
	ErrUnauthorized = errors.New("invalid credentials")
	// ErrExpiredToken токен сброса пароля истёк (400)
	ErrExpiredToken = errors.New("token expired")
	// ErrInvalidRange конец события не позже начала (400)
	ErrInvalidRange = errors.New("end datetime must be after start datetime")
	// ErrInvalidDate дата не разбирается (400)
	ErrInvalidDate = errors.New("invalid date format")
	// ErrUserNotFound целевой пользователь не существует (404)
	ErrUserNotFound = errors.New("user not found")
)
