package web

import (
	"net/http"

	"farmtrack/internal/app"
	"farmtrack/internal/core"
)

// createBatch handles POST /api/batches.
func (h *Handler) createBatch(w http.ResponseWriter, r *http.Request) {
	var req app.CreateBatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.CreateBatch(r.Context(), req)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeResult(w, r, res, http.StatusCreated)
}

// getBatch handles GET /api/batches/{id}.
func (h *Handler) getBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := h.svc.GetBatch(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// listBatches handles GET /api/batches?status=Active.
func (h *Handler) listBatches(w http.ResponseWriter, r *http.Request) {
	var status *core.BatchStatus
	if q := r.URL.Query().Get("status"); q != "" {
		s := core.BatchStatus(q)
		if !s.Valid() {
			writeError(w, r, "unrecognized status "+q, "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		status = &s
	}
	batches, err := h.svc.ListBatches(r.Context(), status)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batches)
}

// registerMortality handles POST /api/batches/{id}/mortalities.
func (h *Handler) registerMortality(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.RegisterMortalityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.RegisterMortality(r.Context(), id, req)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeResult(w, r, res, http.StatusCreated)
}

// switchStatus handles POST /api/batches/{id}/status-switches.
func (h *Handler) switchStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.SwitchStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.SwitchBatchStatus(r.Context(), id, req)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeResult(w, r, res, http.StatusCreated)
}

// registerWeighing handles POST /api/batches/{id}/weighings.
func (h *Handler) registerWeighing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.RegisterWeighingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.RegisterWeighing(r.Context(), id, req)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeResult(w, r, res, http.StatusCreated)
}

// registerConsumption handles POST /api/batches/{id}/consumptions.
func (h *Handler) registerConsumption(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.RegisterConsumptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.RegisterConsumption(r.Context(), id, req)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeResult(w, r, res, http.StatusCreated)
}

// listMortalities handles GET /api/batches/{id}/mortalities.
func (h *Handler) listMortalities(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	regs, err := h.svc.ListMortalities(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, regs)
}

// listStatusSwitches handles GET /api/batches/{id}/status-switches.
func (h *Handler) listStatusSwitches(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	switches, err := h.svc.ListStatusSwitches(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, switches)
}

// listWeighings handles GET /api/batches/{id}/weighings.
func (h *Handler) listWeighings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	weighings, err := h.svc.ListWeighings(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, weighings)
}

// listConsumptions handles GET /api/batches/{id}/consumptions.
func (h *Handler) listConsumptions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	consumptions, err := h.svc.ListConsumptions(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, consumptions)
}
