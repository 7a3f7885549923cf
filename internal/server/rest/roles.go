package rest

import (
	"net/http"

	"github.com/dmitrijs2005/todoapi/internal/server/services"
)

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	page, err := h.Roles.List(r.Context(), r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writePage(w, page.Data, page.Pagination)
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var in services.CreateRoleInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	role, err := h.Roles.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, role)
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	var in services.AssignRoleInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	ur, err := h.Roles.Assign(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Role assigned successfully", ur)
}

func (h *Handler) userRoles(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.Roles.UserWithRoles(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, u)
}
