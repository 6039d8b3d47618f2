package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/taskify-api/internal/model"
	"github.com/vasapolrittideah/taskify-api/internal/usecase"
	"github.com/vasapolrittideah/taskify-api/shared/validation"
)

// AuthHandler serves the /api/auth endpoints.
type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	validator   *validation.Validator
	logger      *zerolog.Logger
}

func NewAuthHandler(
	authUsecase usecase.AuthUsecase,
	validator *validation.Validator,
	logger *zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		validator:   validator,
		logger:      logger,
	}
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type googleLoginRequest struct {
	Token string `json:"token" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8"`
}

type authResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := h.validator.Struct(req); msg != "" {
		writeValidationError(w, msg)
		return
	}

	_, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{
		Success: true,
		Message: "Registration successful! Please check your email to verify your account.",
	})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if _, err := h.authUsecase.VerifyEmail(r.Context(), token); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Email verified successfully"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := h.validator.Struct(req); msg != "" {
		writeValidationError(w, msg)
		return
	}

	result, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Success: true, Token: result.Token, User: result.User})
}

func (h *AuthHandler) GuestLogin(w http.ResponseWriter, r *http.Request) {
	result, err := h.authUsecase.GuestLogin(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Success: true, Token: result.Token, User: result.User})
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := h.validator.Struct(req); msg != "" {
		writeValidationError(w, msg)
		return
	}

	result, err := h.authUsecase.GoogleLogin(r.Context(), req.Token)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Success: true, Token: result.Token, User: result.User})
}

// Logout is a stateless acknowledgement: bearer tokens cannot be invalidated
// server-side, the client discards its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Logged out successfully"})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := h.validator.Struct(req); msg != "" {
		writeValidationError(w, msg)
		return
	}

	if err := h.authUsecase.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Password reset email sent"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req resetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := h.validator.Struct(req); msg != "" {
		writeValidationError(w, msg)
		return
	}

	result, err := h.authUsecase.ResetPassword(r.Context(), token, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Success: true, Token: result.Token, User: result.User})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req changePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := h.validator.Struct(req); msg != "" {
		writeValidationError(w, msg)
		return
	}

	if err := h.authUsecase.ChangePassword(r.Context(), caller, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Password updated successfully"})
}
