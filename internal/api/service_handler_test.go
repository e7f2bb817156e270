package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/juju/clock/testclock"
	"github.com/petcare/catalog-api/internal/api/shared"
	"github.com/petcare/catalog-api/internal/domain"
	"github.com/petcare/catalog-api/internal/platform/memory"
	"github.com/petcare/catalog-api/internal/service"
	"github.com/petcare/catalog-api/internal/store"
	"github.com/petcare/catalog-api/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Point   string          `json:"point"`
	Message string          `json:"message"`
}

func newTestRouter(t *testing.T, s store.RecordStore) http.Handler {
	t.Helper()
	records, err := service.NewRecordService(s, nil, service.CollectionOfferings, nil)
	require.NoError(t, err)
	offerings, err := service.NewOfferingService(records, nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api/services", NewServiceHandler(offerings, nil).Routes)
	return r
}

func newMemoryRouter(t *testing.T) http.Handler {
	t.Helper()
	return newTestRouter(t, memory.NewRecordStore(service.CollectionOfferings, testclock.NewClock(storetest.Epoch), nil))
}

func do(t *testing.T, h http.Handler, method, target, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	return w.Code, env
}

func createService(t *testing.T, h http.Handler, body string) ServiceResponse {
	t.Helper()
	code, env := do(t, h, http.MethodPost, "/api/services", body)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created ServiceResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	return created
}

func TestServiceLifecycle(t *testing.T) {
	t.Parallel()

	h := newMemoryRouter(t)

	created := createService(t, h, `{"name":"Banho e Tosa","description":"Completo","value":80}`)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "2025-04-01 12:00:00.123456", created.CreatedAt)

	code, env := do(t, h, http.MethodGet, "/api/services/"+created.ID, "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	var got ServiceResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, created, got)

	code, env = do(t, h, http.MethodPatch, "/api/services/"+created.ID, `{"value":85.5}`)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.Empty(t, env.Data)

	_, env = do(t, h, http.MethodGet, "/api/services/"+created.ID, "")
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 85.5, got.Value)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)

	code, env = do(t, h, http.MethodDelete, "/api/services/"+created.ID, "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, env = do(t, h, http.MethodGet, "/api/services/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
	assert.Equal(t, "get_service", env.Point)
	assert.Equal(t, "Service not found", env.Message)

	code, env = do(t, h, http.MethodDelete, "/api/services/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "delete_service", env.Point)
}

func TestListAndSearchServices(t *testing.T) {
	t.Parallel()

	h := newMemoryRouter(t)
	createService(t, h, `{"name":"Banho","description":"Simples","value":40}`)
	createService(t, h, `{"name":"Tosa","description":"Higiênica","value":35}`)
	createService(t, h, `{"name":"Banho e Tosa","description":"Completo","value":70}`)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantNames  []string
		wantPoint  string
	}{
		{name: "list all", target: "/api/services", wantStatus: http.StatusOK, wantNames: []string{"Banho", "Tosa", "Banho e Tosa"}},
		{name: "contains search", target: "/api/services?name=banho", wantStatus: http.StatusOK, wantNames: []string{"Banho", "Banho e Tosa"}},
		{
			name:       "or search with equals",
			target:     "/api/services?logic=OR&operator=EQUALS&name=Tosa&description=Simples",
			wantStatus: http.StatusOK,
			wantNames:  []string{"Banho", "Tosa"},
		},
		{name: "only logic means no criteria", target: "/api/services?logic=OR", wantStatus: http.StatusOK, wantNames: []string{}},
		{name: "no matches", target: "/api/services?name=Consulta", wantStatus: http.StatusOK, wantNames: []string{}},
		{
			name:       "unsupported operator",
			target:     "/api/services?operator=REGEX&name=x",
			wantStatus: http.StatusUnprocessableEntity,
			wantPoint:  "search_services",
		},
		{
			name:       "unsupported logic",
			target:     "/api/services?logic=XOR&name=x",
			wantStatus: http.StatusUnprocessableEntity,
			wantPoint:  "search_services",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code, env := do(t, h, http.MethodGet, tt.target, "")
			require.Equal(t, tt.wantStatus, code, env.Message)
			if tt.wantPoint != "" {
				assert.False(t, env.Success)
				assert.Equal(t, tt.wantPoint, env.Point)
				return
			}
			var services []ServiceResponse
			require.NoError(t, json.Unmarshal(env.Data, &services))
			names := make([]string, 0, len(services))
			for _, s := range services {
				names = append(names, s.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestCreateServiceRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantMessage string
	}{
		{name: "malformed json", body: `{"name":`, wantStatus: http.StatusBadRequest, wantMessage: "Invalid request format"},
		{name: "wrong type", body: `{"name":"a","description":"b","value":"cheap"}`, wantStatus: http.StatusBadRequest, wantMessage: "Invalid request format"},
		{name: "missing name", body: `{"description":"b","value":1}`, wantStatus: http.StatusUnprocessableEntity, wantMessage: "Invalid name: required field"},
		{name: "missing description", body: `{"name":"a","value":1}`, wantStatus: http.StatusUnprocessableEntity, wantMessage: "Invalid description: required field"},
		{name: "missing value", body: `{"name":"a","description":"b"}`, wantStatus: http.StatusUnprocessableEntity, wantMessage: "Invalid value: required field"},
		{name: "negative value", body: `{"name":"a","description":"b","value":-1}`, wantStatus: http.StatusUnprocessableEntity, wantMessage: "Invalid value: must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newMemoryRouter(t)
			code, env := do(t, h, http.MethodPost, "/api/services", tt.body)
			assert.Equal(t, tt.wantStatus, code)
			assert.False(t, env.Success)
			assert.Equal(t, "create_service", env.Point)
			assert.Equal(t, tt.wantMessage, env.Message)

			_, list := do(t, h, http.MethodGet, "/api/services", "")
			assert.JSONEq(t, `[]`, string(list.Data))
		})
	}
}

func TestUpdateServiceRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		id          string
		body        string
		wantStatus  int
		wantMessage string
	}{
		{name: "id in payload", body: `{"id":"other"}`, wantStatus: http.StatusUnprocessableEntity, wantMessage: "Field id cannot be updated"},
		{name: "created_at in payload", body: `{"name":"x","created_at":"2020-01-01 00:00:00.000000"}`, wantStatus: http.StatusUnprocessableEntity, wantMessage: "Field created_at cannot be updated"},
		{name: "unknown field", body: `{"color":"red"}`, wantStatus: http.StatusUnprocessableEntity, wantMessage: "Invalid color: unknown field"},
		{name: "empty name", body: `{"name":""}`, wantStatus: http.StatusUnprocessableEntity, wantMessage: "Invalid name: too short"},
		{name: "negative value", body: `{"value":-5}`, wantStatus: http.StatusUnprocessableEntity, wantMessage: "Invalid value: must not be negative"},
		{name: "malformed json", body: `[1,2]`, wantStatus: http.StatusBadRequest, wantMessage: "Invalid request format"},
		{name: "missing service", id: "missing", body: `{"name":"x"}`, wantStatus: http.StatusNotFound, wantMessage: "Service not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newMemoryRouter(t)
			created := createService(t, h, `{"name":"Banho","description":"Simples","value":40}`)
			id := tt.id
			if id == "" {
				id = created.ID
			}

			code, env := do(t, h, http.MethodPatch, "/api/services/"+id, tt.body)
			assert.Equal(t, tt.wantStatus, code)
			assert.Equal(t, "update_service", env.Point)
			assert.Equal(t, tt.wantMessage, env.Message)

			_, after := do(t, h, http.MethodGet, "/api/services/"+created.ID, "")
			var got ServiceResponse
			require.NoError(t, json.Unmarshal(after.Data, &got))
			assert.Equal(t, created, got)
		})
	}
}

// brokenStore fails every call with a storage error.
type brokenStore struct{}

func (brokenStore) err() error {
	return store.NewStoreError("record", "read", "open /var/lib/catalog/services.csv", errors.New("permission denied"))
}
func (b brokenStore) ListAll(context.Context) ([]domain.Record, error) { return nil, b.err() }
func (b brokenStore) GetByID(context.Context, string) (domain.Record, bool, error) {
	return domain.Record{}, false, b.err()
}
func (b brokenStore) Create(context.Context, domain.Record) (domain.Record, error) {
	return domain.Record{}, b.err()
}
func (b brokenStore) Update(context.Context, string, domain.Record) error { return b.err() }
func (b brokenStore) Delete(context.Context, string) error                { return b.err() }

func TestStorageFailuresAreInternalErrors(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, brokenStore{})

	tests := []struct {
		method, target, body, point string
	}{
		{http.MethodGet, "/api/services", "", "list_services"},
		{http.MethodGet, "/api/services?name=x", "", "search_services"},
		{http.MethodGet, "/api/services/x", "", "get_service"},
		{http.MethodPost, "/api/services", `{"name":"a","description":"b","value":1}`, "create_service"},
		{http.MethodPatch, "/api/services/x", `{"name":"a"}`, "update_service"},
		{http.MethodDelete, "/api/services/x", "", "delete_service"},
	}

	for _, tt := range tests {
		t.Run(tt.point, func(t *testing.T) {
			t.Parallel()
			code, env := do(t, h, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusInternalServerError, code)
			assert.Equal(t, tt.point, env.Point)
			assert.Equal(t, "An unexpected error occurred", env.Message)
		})
	}
}

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", service.ErrOfferingNotFound, http.StatusNotFound},
		{"record not found", service.ErrRecordNotFound, http.StatusNotFound},
		{"unsupported operator", &domain.UnsupportedOperatorError{Operator: "X", Key: "k"}, http.StatusUnprocessableEntity},
		{"unsupported logic", domain.ErrUnsupportedLogic, http.StatusUnprocessableEntity},
		{"validation", domain.NewValidationError("name", "empty", domain.ErrValidation), http.StatusUnprocessableEntity},
		{"malformed", shared.ErrMalformedRequest, http.StatusBadRequest},
		{"store", store.NewStoreError("record", "write", "failed", nil), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, `Unsupported operator "REGEX"`,
		GetSafeErrorMessage(&domain.UnsupportedOperatorError{Operator: "REGEX", Key: "name"}))
	assert.Equal(t, "Unsupported logic, use AND or OR", GetSafeErrorMessage(domain.ErrUnsupportedLogic))

	storeErr := store.NewStoreError("record", "write", "open /var/lib/catalog/services.csv", errors.New("EACCES"))
	msg := GetSafeErrorMessage(storeErr)
	assert.Equal(t, "An unexpected error occurred", msg)
	assert.NotContains(t, msg, "/var/lib")
}
