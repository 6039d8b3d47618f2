package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/taskify-api/internal/model"
	"github.com/vasapolrittideah/taskify-api/internal/usecase"
	"github.com/vasapolrittideah/taskify-api/shared/validation"
)

// UserHandler serves the /api/users endpoints.
type UserHandler struct {
	userUsecase usecase.UserUsecase
	validator   *validation.Validator
	logger      *zerolog.Logger
}

func NewUserHandler(
	userUsecase usecase.UserUsecase,
	validator *validation.Validator,
	logger *zerolog.Logger,
) *UserHandler {
	return &UserHandler{
		userUsecase: userUsecase,
		validator:   validator,
		logger:      logger,
	}
}

type updateProfileRequest struct {
	Name      *string `json:"name"       validate:"omitempty,max=100"`
	Email     *string `json:"email"      validate:"omitempty,email"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

type userResponse struct {
	Success bool        `json:"success"`
	User    *model.User `json:"user"`
}

type userListResponse struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Users   []*model.User `json:"users"`
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	user, err := h.userUsecase.GetProfile(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Success: true, User: user})
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := h.validator.Struct(req); msg != "" {
		writeValidationError(w, msg)
		return
	}

	user, err := h.userUsecase.UpdateProfile(r.Context(), caller, usecase.UpdateProfileParams{
		Name:      req.Name,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Success: true, User: user})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerIdentity(w, r); !ok {
		return
	}

	user, err := h.userUsecase.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Success: true, User: user})
}

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	users, err := h.userUsecase.SearchUsers(r.Context(), caller, chi.URLParam(r, "query"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, userListResponse{Success: true, Count: len(users), Users: users})
}
