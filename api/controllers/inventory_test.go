package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantops/plantops-backend/api/middleware"
	"github.com/plantops/plantops-backend/internal/alerts"
	"github.com/plantops/plantops-backend/internal/inventory"
	"github.com/plantops/plantops-backend/internal/notifications"
	"github.com/plantops/plantops-backend/pkg/access"
	"github.com/plantops/plantops-backend/pkg/db/dbtest"
	"github.com/plantops/plantops-backend/pkg/enums"
)

func newInventoryRouter(t *testing.T) http.Handler {
	t.Helper()
	client := dbtest.Open(t)
	logg := testLogger()
	emitter, err := alerts.NewEmitter(alerts.EmitterParams{
		Notifications: notifications.NewRepository(client.DB()),
		Logger:        logg,
		Clock:         func() time.Time { return time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	svc, err := inventory.NewService(inventory.ServiceParams{
		Repo:    inventory.NewRepository(client.DB()),
		DB:      client,
		Emitter: emitter,
		Logger:  logg,
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Get("/", InventoryList(svc, logg))
		r.Get("/summary", InventorySummary(svc, logg))
		r.Post("/", InventoryCreate(svc, logg))
		r.Get("/{itemId}", InventoryGet(svc, logg))
		r.Put("/{itemId}", InventoryUpdate(svc, logg))
		r.Post("/{itemId}/adjust", InventoryAdjust(svc, logg))
		r.Get("/{itemId}/movements", InventoryMovements(svc, logg))
	})
	return r
}

func callInventory(t *testing.T, h http.Handler, viewer access.Viewer, method, target, body string) (int, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req = req.WithContext(middleware.WithViewer(req.Context(), viewer))
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.Code, decoded
}

func TestInventoryCreateAdjustFlow(t *testing.T) {
	h := newInventoryRouter(t)

	status, body := callInventory(t, h, testManager, http.MethodPost, "/api/v1/inventory",
		`{"code":"PR-PUREE","name":"Mango Puree","unit":"L","section":2,"quantity":"40","min_threshold":20,"max_threshold":400,"unit_cost":"3.25"}`)
	require.Equal(t, http.StatusCreated, status, "%v", body)
	item := body["item"].(map[string]any)
	assert.Equal(t, "normal", item["alert_status"])
	assert.Equal(t, "130", item["total_value"])
	id := int64(item["id"].(float64))

	status, body = callInventory(t, h, testManager, http.MethodPost, "/api/v1/inventory/"+itoa(id)+"/adjust",
		`{"delta":"-20","reason":"batch 7"}`)
	require.Equal(t, http.StatusOK, status, "%v", body)
	assert.Equal(t, "low_stock", body["alert_to"])
	assert.Equal(t, true, body["notified"])

	status, body = callInventory(t, h, testManager, http.MethodPost, "/api/v1/inventory/"+itoa(id)+"/adjust",
		`{"delta":"-25","reason":"batch 8"}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "insufficient stock", body["message"])

	status, body = callInventory(t, h, testManager, http.MethodGet, "/api/v1/inventory/"+itoa(id), "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "20", body["item"].(map[string]any)["quantity"])
}

func TestInventoryMovementsHistory(t *testing.T) {
	h := newInventoryRouter(t)

	status, body := callInventory(t, h, testManager, http.MethodPost, "/api/v1/inventory",
		`{"code":"PR-PULP","name":"Guava Pulp","unit":"L","section":2,"quantity":"60","min_threshold":10,"max_threshold":300,"unit_cost":"2"}`)
	require.Equal(t, http.StatusCreated, status, "%v", body)
	id := int64(body["item"].(map[string]any)["id"].(float64))

	status, body = callInventory(t, h, testManager, http.MethodPost, "/api/v1/inventory/"+itoa(id)+"/adjust",
		`{"delta":"-15","reason":"batch 3"}`)
	require.Equal(t, http.StatusOK, status, "%v", body)

	status, body = callInventory(t, h, testManager, http.MethodGet, "/api/v1/inventory/"+itoa(id)+"/movements", "")
	require.Equal(t, http.StatusOK, status, "%v", body)
	movements := body["movements"].([]any)
	require.Len(t, movements, 2)
	newest := movements[0].(map[string]any)
	assert.Equal(t, "batch 3", newest["reason"])
	assert.Equal(t, "-15", newest["delta"])
	assert.Equal(t, "45", newest["quantity_after"])

	status, _ = callInventory(t, h, testManager, http.MethodGet, "/api/v1/inventory/"+itoa(id)+"/movements?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, status)

	outsider := access.Viewer{UserID: 31, Role: enums.RoleRawMaterialManager, Sections: []enums.Section{enums.SectionRawMaterial}}
	status, _ = callInventory(t, h, outsider, http.MethodGet, "/api/v1/inventory/"+itoa(id)+"/movements", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestInventoryCreateValidation(t *testing.T) {
	h := newInventoryRouter(t)

	status, body := callInventory(t, h, testAdmin, http.MethodPost, "/api/v1/inventory",
		`{"name":"Mango Puree","unit":"L","section":2,"quantity":1,"min_threshold":1,"max_threshold":2,"unit_cost":1}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Field 'code' is required", body["message"])

	status, _ = callInventory(t, h, testAdmin, http.MethodPost, "/api/v1/inventory",
		`{"code":"X","name":"Mango Puree","unit":"L","section":2,"quantity":1,"min_threshold":5,"max_threshold":2,"unit_cost":1}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = callInventory(t, h, testManager, http.MethodPost, "/api/v1/inventory",
		`{"code":"X","name":"Sugar","unit":"kg","section":1,"quantity":1,"min_threshold":1,"max_threshold":2,"unit_cost":1}`)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestInventoryScopedReads(t *testing.T) {
	h := newInventoryRouter(t)

	status, body := callInventory(t, h, testAdmin, http.MethodPost, "/api/v1/inventory",
		`{"code":"RM-SUGAR","name":"Sugar","unit":"kg","section":1,"quantity":5,"min_threshold":10,"max_threshold":100,"unit_cost":2}`)
	require.Equal(t, http.StatusCreated, status, "%v", body)
	id := int64(body["item"].(map[string]any)["id"].(float64))

	status, _ = callInventory(t, h, testManager, http.MethodGet, "/api/v1/inventory/"+itoa(id), "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = callInventory(t, h, testManager, http.MethodGet, "/api/v1/inventory?limit=10", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["items"])

	supervisor := access.Viewer{UserID: 30, Role: enums.RoleSupervisor, Sections: enums.AllSections()}
	status, body = callInventory(t, h, supervisor, http.MethodGet, "/api/v1/inventory?alert_status=low_stock", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 1)

	status, body = callInventory(t, h, supervisor, http.MethodGet, "/api/v1/inventory/summary", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["summary"], 3)

	status, _ = callInventory(t, h, supervisor, http.MethodPut, "/api/v1/inventory/"+itoa(id), `{"name":"Cane Sugar"}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = callInventory(t, h, supervisor, http.MethodGet, "/api/v1/inventory/abc", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
