package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"crmBackend/src/apperr"
)

// detailResponse структурированный ответ об ошибке или статусе
type detailResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Ошибка записи ответа: %v", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

// writeError переводит доменную ошибку в код состояния.
// Всё нераспознанное уходит как 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, apperr.ErrUserNotFound):
		writeDetail(w, http.StatusNotFound, "User not found")
	case errors.Is(err, apperr.ErrNotFound):
		writeDetail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrExpiredToken):
		writeDetail(w, http.StatusBadRequest, "Token expired")
	case errors.Is(err, apperr.ErrInvalidRange),
		errors.Is(err, apperr.ErrInvalidDate),
		errors.Is(err, apperr.ErrValidation):
		writeDetail(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Внутренняя ошибка запроса: %v", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body")
		return false
	}
	return true
}
