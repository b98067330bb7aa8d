package handlers

import (
	"net/http"

	"timeTracker/internal/handlers/dto"
)

type UserHandler struct {
	Users UserService
}

func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{Users: users}
}

func (h *UserHandler) PostUser(w http.ResponseWriter, r *http.Request) {
	var request dto.CreateUserRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	u, err := h.Users.CreateUser(r.Context(), request.Email)
	if err != nil {
		handleServiceError(w, r, err, "create_user")
		return
	}

	responseWithBody(w, http.StatusCreated, dto.FromUser(u))
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	u, err := h.Users.GetUser(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_user")
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromUser(u))
}

func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, ok := pagination(w, r)
	if !ok {
		return
	}

	users, err := h.Users.ListUsers(r.Context(), page, limit)
	if err != nil {
		handleServiceError(w, r, err, "list_users")
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("users", dto.FromUserList(users)),
		toPayload("page", page),
		toPayload("limit", limit))
}
