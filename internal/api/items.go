package api

import (
	"net/http"

	"shareit/internal/models"
)

func (h *handlers) createItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requester(w, r)
	if !ok {
		return
	}
	var req itemRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Name == nil || req.Description == nil || req.Available == nil {
		WriteError(w, http.StatusBadRequest, "name, description and available are required")
		return
	}

	item, err := h.Items.CreateItem(r.Context(), userID, &models.Item{
		Name:        *req.Name,
		Description: *req.Description,
		Available:   *req.Available,
		RequestID:   req.RequestID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

func (h *handlers) updateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requester(w, r)
	if !ok {
		return
	}
	itemID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req itemRequest
	if !h.decode(w, r, &req) {
		return
	}

	item, err := h.Items.UpdateItem(r.Context(), userID, itemID, models.ItemPatch{
		Name:        req.Name,
		Description: req.Description,
		Available:   req.Available,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

func (h *handlers) getItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requester(w, r)
	if !ok {
		return
	}
	itemID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	details, err := h.Items.GetItem(r.Context(), userID, itemID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toItemDetailsResponse(details))
}

func (h *handlers) listOwnerItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requester(w, r)
	if !ok {
		return
	}

	list, err := h.Items.ListOwnerItems(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]itemDetailsResponse, 0, len(list))
	for _, d := range list {
		out = append(out, toItemDetailsResponse(d))
	}
	WriteJSON(w, http.StatusOK, out)
}

func (h *handlers) searchItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Items.SearchItems(r.Context(), r.URL.Query().Get("text"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (h *handlers) deleteItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requester(w, r)
	if !ok {
		return
	}
	itemID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.Items.DeleteItem(r.Context(), userID, itemID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) addComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requester(w, r)
	if !ok {
		return
	}
	itemID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req commentRequest
	if !h.decode(w, r, &req) {
		return
	}

	comment, err := h.Items.AddComment(r.Context(), userID, itemID, req.Text)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toCommentResponse(comment))
}
