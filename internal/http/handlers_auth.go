package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"bilancio/internal/auth"
	"bilancio/internal/log"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token,omitempty"`
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// handleLogin exchanges credentials for a session token. With the
// static provider any credentials resolve to the default user.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	var req loginRequest
	if err := DecodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		BadRequestError("email is required").Write(w)
		return
	}

	result, err := s.provider.Login(r.Context(), email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			ErrorResponse(http.StatusUnauthorized, "invalid credentials").Write(w)
			return
		}
		s.logger.ErrorContext(r.Context(), "Login failed", log.FieldError, err)
		InternalServerError("login unavailable").Write(w)
		return
	}

	resp := loginResponse{
		Token:  result.Token,
		UserID: result.UserID,
		Email:  result.Email,
	}
	if !result.ExpiresAt.IsZero() {
		resp.ExpiresAt = result.ExpiresAt.UTC().Format(time.RFC3339)
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "User logged in",
		log.FieldUserID, result.UserID)
	NewResponse().JSON(resp).Write(w)
}
