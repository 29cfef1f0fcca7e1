package web_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"farmtrack/internal/adapters/web"
	"farmtrack/internal/app"
	"farmtrack/internal/core"
	"farmtrack/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mem := store.NewMemory()
	svc := app.NewAppService(
		core.NewBatchService(mem),
		core.NewProductService(mem, mem),
	)
	srv := httptest.NewServer(web.NewHandler(svc, zerolog.Nop(), ""))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}

func createBatch(t *testing.T, srv *httptest.Server) core.Batch {
	t.Helper()
	resp := postJSON(t, srv, "/api/batches", `{
		"name": "Shed 4 broilers",
		"start_date": "2026-01-10",
		"male_count": 50,
		"female_count": 50,
		"unsexed_count": 20
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create batch status = %d, want 201", resp.StatusCode)
	}
	return decode[core.Batch](t, resp)
}

type errorBody struct {
	Error  string                 `json:"error"`
	Code   string                 `json:"code"`
	Errors []core.ValidationError `json:"errors"`
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp := getJSON(t, srv, "/api/health")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestCreateBatchEndpoint(t *testing.T) {
	srv := newTestServer(t)

	t.Run("created", func(t *testing.T) {
		b := createBatch(t, srv)
		if b.ID == 0 || b.Population != 120 || b.Status != core.StatusActive {
			t.Errorf("unexpected batch: %+v", b)
		}
	})

	t.Run("validation failure returns the full list", func(t *testing.T) {
		resp := postJSON(t, srv, "/api/batches", `{"name": "", "start_date": "bad", "male_count": -1}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
		body := decode[errorBody](t, resp)
		if body.Code != "VALIDATION_FAILED" {
			t.Errorf("code = %q, want VALIDATION_FAILED", body.Code)
		}
		if len(body.Errors) != 3 {
			t.Errorf("got %d validation errors, want 3: %v", len(body.Errors), body.Errors)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		resp := postJSON(t, srv, "/api/batches", `{`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestMortalityEndpoint(t *testing.T) {
	srv := newTestServer(t)
	b := createBatch(t, srv)

	t.Run("created", func(t *testing.T) {
		resp := postJSON(t, srv, fmt.Sprintf("/api/batches/%d/mortalities", b.ID), `{
			"number_of_deaths": 10, "sex": "Unsexed", "date": "2026-02-01"
		}`)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want 201", resp.StatusCode)
		}
		reg := decode[core.MortalityRegistration](t, resp)
		if reg.NumberOfDeaths != 10 || reg.Sex != core.Unsexed {
			t.Errorf("unexpected registration: %+v", reg)
		}

		got := decode[core.Batch](t, getJSON(t, srv, fmt.Sprintf("/api/batches/%d", b.ID)))
		if got.UnsexedCount != 10 || got.Population != 110 {
			t.Errorf("batch after mortality: unsexed=%d population=%d", got.UnsexedCount, got.Population)
		}
	})

	t.Run("missing batch is 404", func(t *testing.T) {
		resp := postJSON(t, srv, "/api/batches/9999/mortalities", `{
			"number_of_deaths": 1, "sex": "Male", "date": "2026-02-01"
		}`)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", resp.StatusCode)
		}
		body := decode[errorBody](t, resp)
		if body.Code != "NOT_FOUND" {
			t.Errorf("code = %q, want NOT_FOUND", body.Code)
		}
	})

	t.Run("overage is 400 not 404", func(t *testing.T) {
		resp := postJSON(t, srv, fmt.Sprintf("/api/batches/%d/mortalities", b.ID), `{
			"number_of_deaths": 500, "sex": "Male", "date": "2026-02-01"
		}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestStatusSwitchEndpoint(t *testing.T) {
	srv := newTestServer(t)
	b := createBatch(t, srv)

	resp := postJSON(t, srv, fmt.Sprintf("/api/batches/%d/status-switches", b.ID), `{
		"new_status": "Processed", "date": "2026-05-01"
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	// Backwards is refused and the status stays put.
	resp = postJSON(t, srv, fmt.Sprintf("/api/batches/%d/status-switches", b.ID), `{
		"new_status": "Active", "date": "2026-05-02"
	}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	got := decode[core.Batch](t, getJSON(t, srv, fmt.Sprintf("/api/batches/%d", b.ID)))
	if got.Status != core.StatusProcessed {
		t.Errorf("status = %s, want Processed", got.Status)
	}
}

func TestListBatchesEndpoint(t *testing.T) {
	srv := newTestServer(t)
	b := createBatch(t, srv)
	createBatch(t, srv)

	postJSON(t, srv, fmt.Sprintf("/api/batches/%d/status-switches", b.ID), `{
		"new_status": "Processed", "date": "2026-05-01"
	}`)

	t.Run("all", func(t *testing.T) {
		batches := decode[[]core.Batch](t, getJSON(t, srv, "/api/batches"))
		if len(batches) != 2 {
			t.Errorf("got %d batches, want 2", len(batches))
		}
	})

	t.Run("filtered by status", func(t *testing.T) {
		batches := decode[[]core.Batch](t, getJSON(t, srv, "/api/batches?status=Processed"))
		if len(batches) != 1 || batches[0].ID != b.ID {
			t.Errorf("unexpected filter result: %+v", batches)
		}
	})

	t.Run("bad status filter", func(t *testing.T) {
		resp := getJSON(t, srv, "/api/batches?status=Archived")
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestConsumptionEndpoint(t *testing.T) {
	srv := newTestServer(t)
	b := createBatch(t, srv)

	resp := postJSON(t, srv, "/api/products", `{
		"code": "FEED-01", "name": "Starter feed", "stock": "100", "unit_of_measure": "Kilogram"
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create product status = %d, want 201", resp.StatusCode)
	}
	p := decode[core.Product](t, resp)

	resp = postJSON(t, srv, fmt.Sprintf("/api/batches/%d/consumptions", b.ID), fmt.Sprintf(`{
		"product_id": %d, "stock": "2500", "unit_of_measure": "Gram", "date": "2026-02-10"
	}`, p.ID))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("consumption status = %d, want 201", resp.StatusCode)
	}

	got := decode[core.Product](t, getJSON(t, srv, fmt.Sprintf("/api/products/%d", p.ID)))
	if got.Stock.String() != "97.5" {
		t.Errorf("stock = %s, want 97.5", got.Stock)
	}

	trail := decode[[]core.ProductConsumption](t, getJSON(t, srv, fmt.Sprintf("/api/batches/%d/consumptions", b.ID)))
	if len(trail) != 1 || trail[0].UnitOfMeasure != core.Gram {
		t.Errorf("unexpected trail: %+v", trail)
	}
}

func TestSchemaEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := getJSON(t, srv, "/api/schemas/register-mortality")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	schema := decode[map[string]any](t, resp)
	if schema["type"] != "object" {
		t.Errorf("schema type = %v, want object", schema["type"])
	}

	resp = getJSON(t, srv, "/api/schemas/no-such-schema")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t)
	resp := getJSON(t, srv, "/api/health")
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}
