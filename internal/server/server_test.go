package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/metr/internal/config"
	"github.com/smallbiznis/metr/internal/gateway"
	meterdomain "github.com/smallbiznis/metr/internal/meter/domain"
	"github.com/smallbiznis/metr/internal/meter/repository"
	"github.com/smallbiznis/metr/internal/meter/service"
	"github.com/smallbiznis/metr/internal/observability"
	"github.com/smallbiznis/metr/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn := dbtest.Open(t, &meterdomain.Meter{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := service.New(service.Params{
		DB:      conn,
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    repository.Provide(),
		Listing: config.NewStaticListingConfigHolder(config.DefaultListingConfig()),
	})

	r := NewEngine(observability.Config{Environment: "test"})
	RegisterRoutes(r, gateway.NewHandler(gateway.Params{Service: svc, Log: zap.NewNop()}))
	return r
}

func perform(r http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMeterLifecycleOverHTTP(t *testing.T) {
	r := newTestEngine(t)

	w := perform(r, http.MethodPost, "/meters", `{"meter_id":7,"external_reference":"EXT-7","supply_start_date":"2022-03-01","enabled":true,"annual_quantity":12.5}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = perform(r, http.MethodGet, "/meters/7", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "EXT-7", got["external_reference"])
	assert.Equal(t, "2022-03-01", got["supply_start_date"])

	w = perform(r, http.MethodPut, "/meters/7", `{"meter_id":7,"enabled":false}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, false, got["enabled"])

	w = perform(r, http.MethodGet, "/meters?enabled=false", "", map[string]string{"Accept": "text/csv"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "meter_id,"), w.Body.String())

	w = perform(r, http.MethodDelete, "/meters/7", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = perform(r, http.MethodGet, "/meters/7", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newTestEngine(t)

	w := perform(r, http.MethodGet, "/meters", "", map[string]string{"X-Request-Id": "abc-123"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))
}

func TestUnknownRoutes(t *testing.T) {
	r := newTestEngine(t)

	w := perform(r, http.MethodGet, "/readings", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not Found","status_code":404}`, w.Body.String())

	w = perform(r, http.MethodPatch, "/meters/1", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHealth(t *testing.T) {
	r := newTestEngine(t)

	w := perform(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestOversizedBodyIsRejected(t *testing.T) {
	r := newTestEngine(t)

	body := `{"meter_id":1,"external_reference":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	w := perform(r, http.MethodPost, "/meters", body, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"error":"request body too large","status_code":413}`, w.Body.String())

	w = perform(r, http.MethodGet, "/meters", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
