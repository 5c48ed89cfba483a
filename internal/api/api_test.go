package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/auth"
	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/content"
	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/gateway"
	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/schema"
	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLimiter struct {
	allowed bool
	err     error
	hits    []string
}

func (f *fakeLimiter) Allow(ctx context.Context, scope, client string) (bool, error) {
	f.hits = append(f.hits, scope)
	return f.allowed, f.err
}

const testSecret = "test-secret"

func setupTestServer(t *testing.T, scriptURL string, limiter RateLimiter) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	compiler, err := schema.NewFormCompiler(ctx)
	require.NoError(t, err)
	catalog, err := content.Load()
	require.NoError(t, err)

	gw := gateway.New(gateway.NewConfig(scriptURL, "test"), gateway.NewHTTPTransport(nil, 2*time.Second), logger)

	forms := service.NewFormService(compiler, gw, logger)
	forms.SetSpecialties(catalog.SpecialtyNames())

	d := Dependencies{
		Forms:          forms,
		Content:        catalog,
		Auth:           auth.NewJWTConfig(testSecret),
		AllowedOrigins: []string{"*"},
		Log:            logger,
	}
	if limiter != nil {
		d.Limiter = limiter
	}

	r := chi.NewRouter()
	r.Mount("/v1", Routes(d))
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func validCita() map[string]interface{} {
	return map[string]interface{}{
		"nombre":       "Ana María Gómez",
		"email":        "ana@example.com",
		"telefono":     "3001234567",
		"especialidad": "Cardiología",
		"fechaCita":    "2026-11-03",
	}
}

func TestSubmitAppointment_DeliveredViaBackend(t *testing.T) {
	var received map[string]interface{}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		fmt.Fprint(w, `{"success":true,"message":"Cita registrada"}`)
	}))
	defer backend.Close()

	server := setupTestServer(t, backend.URL, nil)
	resp := postJSON(t, server.URL+"/v1/citas", validCita())

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(SubmissionIDHeader))

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "POST", result["methodUsed"])
	assert.Equal(t, "Cita registrada", result["message"])
	assert.NotContains(t, result, "simulation")

	assert.Equal(t, "submitAppointment", received["action"])
	data := received["data"].(map[string]interface{})
	assert.Equal(t, "Ana María Gómez", data["nombre"])
	assert.Equal(t, "2026-11-03", data["fecha_cita"])
}

func TestSubmitAppointment_SimulatedWhenUnconfigured(t *testing.T) {
	server := setupTestServer(t, "", nil)
	resp := postJSON(t, server.URL+"/v1/citas", validCita())

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, true, result["success"])
	assert.Equal(t, true, result["simulation"])
	assert.Equal(t, "SIMULATION", result["methodUsed"])
	assert.Regexp(t, `^sim-cita-\d+$`, result["id"])
}

func TestSubmitAppointment_ValidationError(t *testing.T) {
	server := setupTestServer(t, "", nil)

	form := validCita()
	form["email"] = "invalid"
	resp := postJSON(t, server.URL+"/v1/citas", form)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "validation_failed", body.Error)
	assert.Contains(t, body.Fields, "email")
}

func TestSubmitAppointment_UnknownSpecialty(t *testing.T) {
	server := setupTestServer(t, "", nil)

	form := validCita()
	form["especialidad"] = "Astrología"
	resp := postJSON(t, server.URL+"/v1/citas", form)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "validation_failed", body.Error)
	assert.Contains(t, body.Fields, "especialidad")
}

func TestSubmitAppointment_MissingFieldsReportedAsRequired(t *testing.T) {
	server := setupTestServer(t, "", nil)

	form := validCita()
	delete(form, "nombre")
	delete(form, "fechaCita")
	resp := postJSON(t, server.URL+"/v1/citas", form)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "is required", body.Fields["nombre"])
	assert.Equal(t, "is required", body.Fields["fechaCita"])
}

func TestSubmitAppointment_MalformedBody(t *testing.T) {
	server := setupTestServer(t, "", nil)

	resp, err := http.Post(server.URL+"/v1/citas", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitPQRS_GetFallback(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		assert.Equal(t, "submitPQRS", r.URL.Query().Get("action"))
		fmt.Fprint(w, `{"success":true}`)
	}))
	defer backend.Close()

	server := setupTestServer(t, backend.URL, nil)
	resp := postJSON(t, server.URL+"/v1/pqrs", map[string]interface{}{
		"tipo":        "reclamo",
		"nombre":      "Luis Pérez",
		"email":       "luis@example.com",
		"asunto":      "Cobro duplicado",
		"descripcion": "Me cobraron dos veces la misma consulta de control.",
	})

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "GET_FALLBACK", result["methodUsed"])
	assert.NotEmpty(t, result["note"])
}

func TestRateLimit(t *testing.T) {
	limiter := &fakeLimiter{allowed: false}
	server := setupTestServer(t, "", limiter)

	resp := postJSON(t, server.URL+"/v1/citas", validCita())
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
	assert.Equal(t, []string{"cita"}, limiter.hits)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := &fakeLimiter{allowed: true, err: fmt.Errorf("redis down")}
	server := setupTestServer(t, "", limiter)

	resp := postJSON(t, server.URL+"/v1/citas", validCita())
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestContentEndpoints(t *testing.T) {
	server := setupTestServer(t, "", nil)

	tests := []struct {
		path   string
		status int
	}{
		{"/v1/contenido/clinica", http.StatusOK},
		{"/v1/contenido/servicios", http.StatusOK},
		{"/v1/contenido/especialidades", http.StatusOK},
		{"/v1/contenido/noticias", http.StatusOK},
		{"/v1/contenido/noticias/jornada-vacunacion-2026", http.StatusOK},
		{"/v1/contenido/noticias/no-existe", http.StatusNotFound},
		{"/v1/contenido/legal/privacidad", http.StatusOK},
		{"/v1/contenido/legal/otra", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(server.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAdminGatewayEndpoints(t *testing.T) {
	server := setupTestServer(t, "", nil)
	token, err := auth.NewJWTConfig(testSecret).IssueToken("ops", auth.RoleAdmin, time.Hour)
	require.NoError(t, err)

	// no token
	resp, err := http.Get(server.URL + "/v1/admin/gateway/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/v1/admin/gateway/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, false, status["configured"])
	assert.Equal(t, gateway.NotConfiguredLabel, status["url"])

	req, _ = http.NewRequest(http.MethodPost, server.URL+"/v1/admin/gateway/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp2.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&result))
	assert.Equal(t, false, result["success"])
	assert.NotEmpty(t, result["suggestion"])
}
