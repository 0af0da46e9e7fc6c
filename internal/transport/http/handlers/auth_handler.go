package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Inkrex-dev/lab-dash-ex/internal/domain/enums"
	authsvc "github.com/Inkrex-dev/lab-dash-ex/internal/services/auth"
	ratesvc "github.com/Inkrex-dev/lab-dash-ex/internal/services/rate"
	"github.com/Inkrex-dev/lab-dash-ex/internal/transport/http/dto"
	httperrors "github.com/Inkrex-dev/lab-dash-ex/internal/transport/http/errors"
)

type AuthHandler struct {
	service *authsvc.Service
	limiter *ratesvc.Limiter
	cookies CookieTTLs
}

func NewAuthHandler(service *authsvc.Service, limiter *ratesvc.Limiter, cookies CookieTTLs) *AuthHandler {
	return &AuthHandler{
		service: service,
		limiter: limiter,
		cookies: cookies,
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidInput):
			writeBadRequest(w, "VALIDATION_ERROR", "username and password are required")
		case errors.Is(err, authsvc.ErrUsernameTaken):
			httperrors.Write(w, http.StatusConflict, httperrors.APIError{
				Code:    "USERNAME_TAKEN",
				Message: "username already exists",
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.SignupResponse{Username: user.Username})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "username and password are required")
		return
	}

	if h.limiter != nil {
		if retryAfter, err := h.limiter.AllowLogin(r.Context(), req.Username); err != nil {
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "RATE_LIMITED",
				Message:       "too many login attempts",
				RetryAfterSec: int64(retryAfter.Seconds()),
			})
			return
		}
	}

	res, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidInput):
			writeBadRequest(w, "VALIDATION_ERROR", "username and password are required")
		case errors.Is(err, authsvc.ErrInvalidCredentials):
			// Unknown username and wrong password produce the same response.
			writeUnauthorized(w, "INVALID_CREDENTIALS", "invalid username or password")
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	setAuthCookies(w, res.AccessToken, res.RefreshToken, h.cookies)
	httperrors.Write(w, http.StatusOK, dto.LoginResponse{
		Username: res.Username,
		IsAdmin:  res.IsAdmin,
	})
}

// Refresh distinguishes "never logged in" (no cookie, 204) from every broken
// session shape, and only clears cookies on outcomes that positively belong
// to this client's session.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	refreshToken, ok := cookieValue(r, RefreshCookieName)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	res, err := h.service.Refresh(r.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrTokenExpired):
			clearAuthCookies(w, false)
			writeUnauthorized(w, "TOKEN_EXPIRED", "refresh token expired")
		case errors.Is(err, authsvc.ErrTokenInvalid):
			// Malformed or foreign token: not a confirmed session, cookies stay.
			writeUnauthorized(w, "TOKEN_INVALID", "refresh token invalid")
		case errors.Is(err, authsvc.ErrTokenNotRecognized):
			clearAuthCookies(w, false)
			writeUnauthorized(w, "TOKEN_NOT_RECOGNIZED", "refresh token not recognized")
		case errors.Is(err, authsvc.ErrUserNotFound):
			clearAuthCookies(w, false)
			writeUnauthorized(w, "UNAUTHORIZED", "user no longer exists")
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	setAuthCookies(w, res.AccessToken, res.RefreshToken, h.cookies)
	httperrors.Write(w, http.StatusOK, dto.RefreshResponse{IsAdmin: res.IsAdmin})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	refreshToken, ok := cookieValue(r, RefreshCookieName)
	if !ok {
		// Already logged out.
		httperrors.Write(w, http.StatusOK, dto.LogoutResponse{OK: true})
		return
	}

	if err := h.service.Logout(r.Context(), refreshToken); err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	clearAuthCookies(w, true)
	httperrors.Write(w, http.StatusOK, dto.LogoutResponse{OK: true})
}

func (h *AuthHandler) HasUsers(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	hasUsers, err := h.service.HasUsers(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.HasUsersResponse{HasUsers: hasUsers})
}

func (h *AuthHandler) IsAdmin(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.IsAdminResponse{IsAdmin: identity.Role == string(enums.RoleAdmin)})
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}
