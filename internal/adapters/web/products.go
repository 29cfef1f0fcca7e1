package web

import (
	"net/http"

	"farmtrack/internal/app"
)

// createProduct handles POST /api/products.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req app.CreateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.CreateProduct(r.Context(), req)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeResult(w, r, res, http.StatusCreated)
}

// getProduct handles GET /api/products/{id}.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// listProducts handles GET /api/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListProducts(r.Context())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}
