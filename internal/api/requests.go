package api

import "net/http"

func (h *handlers) createRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requester(w, r)
	if !ok {
		return
	}
	var req requestRequest
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.Requests.CreateRequest(r.Context(), userID, req.Description)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toRequestResponse(created))
}

func (h *handlers) listOwnRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requester(w, r)
	if !ok {
		return
	}

	reqs, err := h.Requests.ListOwnRequests(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toRequestResponses(reqs))
}

func (h *handlers) listOtherRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requester(w, r)
	if !ok {
		return
	}
	page, err := pageParams(r, h.PageSize)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	reqs, err := h.Requests.ListOtherRequests(r.Context(), userID, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toRequestResponses(reqs))
}

func (h *handlers) getRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requester(w, r)
	if !ok {
		return
	}
	requestID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	req, err := h.Requests.GetRequest(r.Context(), userID, requestID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toRequestResponse(req))
}
