package httpapi

import (
	"net/http"
	"strings"

	"crmBackend/src/db/gorm_models"
)

// authedHandler обработчик с явно переданным текущим пользователем
type authedHandler func(w http.ResponseWriter, r *http.Request, user *gorm_models.User)

// requireUser проверяет Bearer-токен и передаёт пользователя в обработчик
func (s *Server) requireUser(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided")
			return
		}

		userID, err := s.tokens.ParseAccess(token)
		if err != nil {
			writeError(w, err)
			return
		}

		user, err := s.auth.GetUser(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}

		next(w, r, user)
	}
}
