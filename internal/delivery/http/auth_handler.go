package http

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"matchmaker/internal/entity"
	"matchmaker/internal/usecase"

	log "github.com/sirupsen/logrus"
)

const refreshTokenCookie = "refresh_token"

type AuthHandler struct {
	authUc       usecase.AuthUsecase
	cookieMaxAge time.Duration
	secureCookie bool
}

func NewAuthHandler(authUc usecase.AuthUsecase, cookieMaxAge time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authUc:       authUc,
		cookieMaxAge: cookieMaxAge,
		secureCookie: secureCookie,
	}
}

// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req entity.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	authResponse, err := h.authUc.Register(r.Context(), req, sessionOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.writeAuth(w, http.StatusCreated, "registration successful", authResponse)
}

// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entity.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	authResponse, err := h.authUc.Login(r.Context(), req, sessionOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.writeAuth(w, http.StatusOK, "login successful", authResponse)
}

// POST /api/auth/refresh
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	refreshToken := refreshTokenFrom(r)
	if refreshToken == "" {
		writeJSON(w, http.StatusBadRequest, Response{Message: "refresh token is required"})
		return
	}

	authResponse, err := h.authUc.RefreshToken(r.Context(), refreshToken, sessionOf(r))
	if err != nil {
		h.clearRefreshTokenCookie(w)
		writeError(w, r, err)
		return
	}

	h.writeAuth(w, http.StatusOK, "token refreshed successfully", authResponse)
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if refreshToken := refreshTokenFrom(r); refreshToken != "" {
		if err := h.authUc.Logout(r.Context(), refreshToken); err != nil {
			log.WithError(err).Warn("logout failed")
		}
	}

	h.clearRefreshTokenCookie(w)
	writeJSON(w, http.StatusOK, Response{Message: "logout successful"})
}

// POST /api/auth/logout-all
func (h *AuthHandler) LogoutAllDevices(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	if err := h.authUc.LogoutAllDevices(r.Context(), claims.UserId); err != nil {
		writeError(w, r, err)
		return
	}

	h.clearRefreshTokenCookie(w)
	writeJSON(w, http.StatusOK, Response{Message: "logged out from all devices successfully"})
}

// writeAuth moves the refresh token out of the body into an HttpOnly cookie.
func (h *AuthHandler) writeAuth(w http.ResponseWriter, status int, message string, authResponse entity.AuthResponse) {
	h.setRefreshTokenCookie(w, authResponse.RefreshToken)
	authResponse.RefreshToken = ""
	writeJSON(w, status, Response{Message: message, Data: authResponse})
}

func (h *AuthHandler) setRefreshTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.cookieMaxAge.Seconds()),
	})
}

func (h *AuthHandler) clearRefreshTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// refreshTokenFrom prefers the cookie and falls back to a JSON body.
func refreshTokenFrom(r *http.Request) string {
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	var req entity.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

func sessionOf(r *http.Request) entity.Session {
	return entity.Session{
		DeviceInfo: r.UserAgent(),
		IpAddress:  clientIP(r),
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
