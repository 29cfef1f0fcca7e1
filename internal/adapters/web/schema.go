package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/invopop/jsonschema"

	"farmtrack/internal/app"
)

// requestSchemas maps schema names to the request types they describe.
// The form-driven UI fetches these to generate and validate its inputs
// client-side before submitting.
var requestSchemas = map[string]any{
	"create-batch":         app.CreateBatchRequest{},
	"register-mortality":   app.RegisterMortalityRequest{},
	"switch-status":        app.SwitchStatusRequest{},
	"register-weighing":    app.RegisterWeighingRequest{},
	"register-consumption": app.RegisterConsumptionRequest{},
	"create-product":       app.CreateProductRequest{},
}

// requestSchema handles GET /api/schemas/{name}.
func (h *Handler) requestSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	typ, ok := requestSchemas[name]
	if !ok {
		writeError(w, r, "unknown schema "+name, "NOT_FOUND", http.StatusNotFound)
		return
	}

	reflector := jsonschema.Reflector{DoNotReference: true}
	writeJSON(w, http.StatusOK, reflector.Reflect(typ))
}
