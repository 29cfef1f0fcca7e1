package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"farmtrack/internal/app"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc app.ApplicationService
	log zerolog.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, log zerolog.Logger, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/api/health", h.health)

	// ── Batches ───────────────────────────────────────────────────────────────
	r.Get("/api/batches", h.listBatches)
	r.Post("/api/batches", h.createBatch)
	r.Get("/api/batches/{id}", h.getBatch)
	r.Get("/api/batches/{id}/mortalities", h.listMortalities)
	r.Post("/api/batches/{id}/mortalities", h.registerMortality)
	r.Get("/api/batches/{id}/status-switches", h.listStatusSwitches)
	r.Post("/api/batches/{id}/status-switches", h.switchStatus)
	r.Get("/api/batches/{id}/weighings", h.listWeighings)
	r.Post("/api/batches/{id}/weighings", h.registerWeighing)
	r.Get("/api/batches/{id}/consumptions", h.listConsumptions)
	r.Post("/api/batches/{id}/consumptions", h.registerConsumption)

	// ── Products ──────────────────────────────────────────────────────────────
	r.Get("/api/products", h.listProducts)
	r.Post("/api/products", h.createProduct)
	r.Get("/api/products/{id}", h.getProduct)

	// ── Request schemas for the form-driven UI ────────────────────────────────
	r.Get("/api/schemas/{name}", h.requestSchema)

	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, http.StatusOK, response{Status: "ok"})
}

// pathID extracts the {id} URL parameter. A malformed id is reported as a
// 400 and false is returned.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, "invalid id in URL", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an
// appropriate error response on failure. Returns HTTP 413 when the body
// exceeds the limit set by RequestBodyLimit; HTTP 400 for all other decode
// errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
