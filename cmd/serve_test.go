package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odens-ab/pricing-cli/internal/artifacts"
	"github.com/odens-ab/pricing-cli/internal/augment"
	"github.com/odens-ab/pricing-cli/internal/config"
	"github.com/odens-ab/pricing-cli/internal/feature"
	"github.com/odens-ab/pricing-cli/internal/store"
	"github.com/odens-ab/pricing-cli/internal/train"
)

func testConfig() *config.Config {
	return &config.Config{
		Tenant: "company_alpha",
		Server: config.ServerConfig{AuthRateLimit: 100, AuthRateBurst: 100},
		Auth:   config.AuthConfig{JWTSecret: "test-secret", TokenExpireHours: 1},
	}
}

func newTestServer(t *testing.T) (*http.ServeMux, *artifacts.Store) {
	t.Helper()
	dir := t.TempDir()
	as := artifacts.NewStore(filepath.Join(dir, "data"), filepath.Join(dir, "models"))

	mux, err := buildMux(testConfig(), store.NewMemory(), as)
	require.NoError(t, err)
	return mux, as
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func signup(t *testing.T, mux *http.ServeMux, email, password string) string {
	t.Helper()
	rr := doJSON(t, mux, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["access_token"])
	return resp["access_token"]
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := newTestServer(t)

	rr := doJSON(t, mux, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"ok"`)
}

func TestRootEndpoint(t *testing.T) {
	mux, _ := newTestServer(t)

	rr := doJSON(t, mux, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, mux, http.MethodGet, "/nonexistent", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSignupLoginMe(t *testing.T) {
	mux, _ := newTestServer(t)

	signup(t, mux, "alice@example.com", "hunter2")

	rr := doJSON(t, mux, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "hunter2",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var login map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))
	assert.Equal(t, "bearer", login["token_type"])

	rr = doJSON(t, mux, http.MethodGet, "/user/me", login["access_token"], nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "alice@example.com")
}

func TestSignupDuplicate(t *testing.T) {
	mux, _ := newTestServer(t)

	signup(t, mux, "alice@example.com", "hunter2")
	rr := doJSON(t, mux, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "alice@example.com", "password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSignupMissingFields(t *testing.T) {
	mux, _ := newTestServer(t)

	rr := doJSON(t, mux, http.MethodPost, "/auth/signup", "", map[string]string{"email": "alice@example.com"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	mux, _ := newTestServer(t)

	signup(t, mux, "alice@example.com", "hunter2")
	rr := doJSON(t, mux, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	mux, _ := newTestServer(t)

	rr := doJSON(t, mux, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "x",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	mux, _ := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/user/me"},
		{http.MethodPost, "/predict/model_latest"},
		{http.MethodPost, "/predict/save_quote"},
	} {
		rr := doJSON(t, mux, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, route.path)
	}
}

func TestPredictNoModel(t *testing.T) {
	mux, _ := newTestServer(t)
	token := signup(t, mux, "alice@example.com", "hunter2")

	rr := doJSON(t, mux, http.MethodPost, "/predict/model_latest", token, map[string]any{
		"profile_ref": "Glaskil", "weight_kg_m": 1.055, "length_m": 20.2,
		"quantity": 68000, "surface_treatment": "Anodized", "alloy": "Rå",
		"raw_material_price_eur_kg": 2.42,
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPredictWithTrainedModel(t *testing.T) {
	mux, as := newTestServer(t)
	token := signup(t, mux, "alice@example.com", "hunter2")

	// Train a small model for this user's tenant directory.
	g, err := augment.NewGenerator("alice@example.com",
		map[string]float64{"Glaskil": 2.44}, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	rows, _ := feature.RowsFromQuotes(g.Run(80))
	m := feature.Fit(rows)

	tr := train.New(config.TrainConfig{Trials: 1, Folds: 5, FoldSeed: 42},
		train.NewRandomSearch(42), "alice@example.com")
	result, err := tr.Train(context.Background(), m)
	require.NoError(t, err)
	require.NoError(t, as.SaveModel("alice@example.com", result.Model, result.Metadata))

	rr := doJSON(t, mux, http.MethodPost, "/predict/model_latest", token, map[string]any{
		"profile_ref": "Glaskil", "weight_kg_m": 1.2, "length_m": 24.0,
		"quantity": 60000, "surface_treatment": "Anodized", "alloy": "Rå",
		"raw_material_price_eur_kg": 2.43,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	price, ok := resp["predicted_price_sek"].(float64)
	require.True(t, ok)
	assert.Positive(t, price)
}

func TestPredictBadRequest(t *testing.T) {
	mux, _ := newTestServer(t)
	token := signup(t, mux, "alice@example.com", "hunter2")

	rr := doJSON(t, mux, http.MethodPost, "/predict/model_latest", token, map[string]any{
		"profile_ref": "", "weight_kg_m": -1,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSaveQuote(t *testing.T) {
	mux, as := newTestServer(t)
	token := signup(t, mux, "alice@example.com", "hunter2")

	rr := doJSON(t, mux, http.MethodPost, "/predict/save_quote", token, map[string]any{
		"quote_date": "2025-04-30", "profile_ref": "Glaskil",
		"weight_kg_m": 1.055, "length_m": 20.2, "quantity": 68000,
		"surface_treatment": "Anodized", "alloy": "Rå",
		"raw_material_price_eur_kg": 2.42, "quoted_price_sek": 2.42,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	assert.FileExists(t, as.DataPath("alice@example.com", artifacts.SubmittedFile))

	// A second submission appends to the same file.
	rr = doJSON(t, mux, http.MethodPost, "/predict/save_quote", token, map[string]any{
		"quote_date": "2025-05-02", "profile_ref": "Glaskil",
		"weight_kg_m": 1.1, "length_m": 22.0, "quantity": 30000,
		"surface_treatment": "None", "alloy": "Rå",
		"raw_material_price_eur_kg": 2.40, "quoted_price_sek": 2.21,
	})
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestSaveQuoteInvalid(t *testing.T) {
	mux, _ := newTestServer(t)
	token := signup(t, mux, "alice@example.com", "hunter2")

	rr := doJSON(t, mux, http.MethodPost, "/predict/save_quote", token, map[string]any{
		"quote_date": "2025-04-30", "profile_ref": "Glaskil",
		"weight_kg_m": 1.055, "length_m": 20.2, "quantity": 68000,
		"alloy": "Rå", "quoted_price_sek": -5,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuthRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.AuthRateLimit = 1
	cfg.Server.AuthRateBurst = 2

	dir := t.TempDir()
	as := artifacts.NewStore(filepath.Join(dir, "data"), filepath.Join(dir, "models"))
	mux, err := buildMux(cfg, store.NewMemory(), as)
	require.NoError(t, err)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := doJSON(t, mux, http.MethodPost, "/auth/login", "", map[string]string{
			"email": "nobody@example.com", "password": "x",
		})
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}
