package http

import (
	"context"
	"net/http"

	"matchmaker/internal/entity"
	"matchmaker/internal/usecase"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userUc  usecase.UserUsecase
	matchUc usecase.MatchUsecase
}

func NewUserHandler(userUc usecase.UserUsecase, matchUc usecase.MatchUsecase) *UserHandler {
	return &UserHandler{
		userUc:  userUc,
		matchUc: matchUc,
	}
}

// GET /api/user?gender=
func (h *UserHandler) Discover(w http.ResponseWriter, r *http.Request) {
	users, err := h.userUc.Discover(r.Context(), claimsFrom(r).UserId, r.URL.Query().Get("gender"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "success", Data: users})
}

// GET /api/user/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userUc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "success", Data: user})
}

// PUT /api/user/{id}/gender
func (h *UserHandler) UpdateGender(w http.ResponseWriter, r *http.Request) {
	var req genderRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.userUc.UpdateGender(r.Context(), chi.URLParam(r, "id"), req.Gender)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "gender updated", Data: user})
}

// PUT /api/user/{id}/description
func (h *UserHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	var req descriptionRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.userUc.UpdateDescription(r.Context(), chi.URLParam(r, "id"), req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "description updated", Data: user})
}

// AddToList serves POST /api/user/{id}/{turn-ons|looking-for|profile-images}.
func (h *UserHandler) AddToList(list string) http.HandlerFunc {
	return h.editList(list, h.userUc.AddToList)
}

// RemoveFromList serves the DELETE counterpart of AddToList.
func (h *UserHandler) RemoveFromList(list string) http.HandlerFunc {
	return h.editList(list, h.userUc.RemoveFromList)
}

type listEdit func(ctx context.Context, userId, list, value string) (entity.User, error)

func (h *UserHandler) editList(list string, edit listEdit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req listValueRequest
		if !decode(w, r, &req) {
			return
		}
		user, err := edit(r.Context(), chi.URLParam(r, "id"), list, req.Value)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, Response{Message: "profile updated", Data: user})
	}
}

// DELETE /api/user/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.userUc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "user deleted"})
}

// POST /api/user/like
func (h *UserHandler) Like(w http.ResponseWriter, r *http.Request) {
	var req selectedUserRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.matchUc.Like(r.Context(), claimsFrom(r).UserId, req.SelectedUserId)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "user liked", Data: result})
}

// GET /api/user/{id}/received-likes
func (h *UserHandler) ReceivedLikes(w http.ResponseWriter, r *http.Request) {
	users, err := h.matchUc.ReceivedLikes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "success", Data: users})
}

// POST /api/user/match
func (h *UserHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var req selectedUserRequest
	if !decode(w, r, &req) {
		return
	}
	match, err := h.matchUc.CreateMatch(r.Context(), claimsFrom(r).UserId, req.SelectedUserId)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "match created", Data: match})
}

// GET /api/user/{id}/matches
func (h *UserHandler) Matches(w http.ResponseWriter, r *http.Request) {
	users, err := h.matchUc.Matches(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "success", Data: users})
}

// DELETE /api/user/match/{selectedUserId}
func (h *UserHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	if err := h.matchUc.Unmatch(r.Context(), claimsFrom(r).UserId, chi.URLParam(r, "selectedUserId")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "unmatched"})
}
