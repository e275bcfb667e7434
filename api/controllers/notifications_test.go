package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantops/plantops-backend/api/middleware"
	"github.com/plantops/plantops-backend/internal/notifications"
	"github.com/plantops/plantops-backend/pkg/access"
	"github.com/plantops/plantops-backend/pkg/db/dbtest"
	"github.com/plantops/plantops-backend/pkg/db/models"
	"github.com/plantops/plantops-backend/pkg/enums"
	pkgerrors "github.com/plantops/plantops-backend/pkg/errors"
	"github.com/plantops/plantops-backend/pkg/logger"
	"github.com/plantops/plantops-backend/pkg/pagination"
)

var (
	testAdmin   = access.Viewer{UserID: 1, Role: enums.RoleAdmin, Sections: enums.AllSections()}
	testManager = access.Viewer{UserID: 7, Role: enums.RoleProcessingManager, Sections: []enums.Section{enums.SectionProcessing}}
)

type testNotificationsService struct {
	unreadCountFn func(ctx context.Context, viewer access.Viewer) (int64, error)
	recentFn      func(ctx context.Context, viewer access.Viewer, limit int) ([]notifications.View, error)
	listFn        func(ctx context.Context, viewer access.Viewer, params notifications.ListParams) (*notifications.ListResult, error)
	getFn         func(ctx context.Context, viewer access.Viewer, id int64) (*notifications.View, error)
	markReadFn    func(ctx context.Context, viewer access.Viewer, id int64) error
	markAllReadFn func(ctx context.Context, viewer access.Viewer) (int64, error)
	archiveFn     func(ctx context.Context, viewer access.Viewer, id int64) error
	createFn      func(ctx context.Context, viewer access.Viewer, input notifications.CreateInput) (*models.Notification, error)
	updateFn      func(ctx context.Context, viewer access.Viewer, id int64, input notifications.UpdateInput) error
	deleteFn      func(ctx context.Context, viewer access.Viewer, id int64) error
}

func (s *testNotificationsService) UnreadCount(ctx context.Context, viewer access.Viewer) (int64, error) {
	if s.unreadCountFn != nil {
		return s.unreadCountFn(ctx, viewer)
	}
	return 0, nil
}

func (s *testNotificationsService) Recent(ctx context.Context, viewer access.Viewer, limit int) ([]notifications.View, error) {
	if s.recentFn != nil {
		return s.recentFn(ctx, viewer, limit)
	}
	return []notifications.View{}, nil
}

func (s *testNotificationsService) List(ctx context.Context, viewer access.Viewer, params notifications.ListParams) (*notifications.ListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, viewer, params)
	}
	return &notifications.ListResult{Notifications: []notifications.View{}}, nil
}

func (s *testNotificationsService) Get(ctx context.Context, viewer access.Viewer, id int64) (*notifications.View, error) {
	if s.getFn != nil {
		return s.getFn(ctx, viewer, id)
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
}

func (s *testNotificationsService) MarkRead(ctx context.Context, viewer access.Viewer, id int64) error {
	if s.markReadFn != nil {
		return s.markReadFn(ctx, viewer, id)
	}
	return nil
}

func (s *testNotificationsService) MarkAllRead(ctx context.Context, viewer access.Viewer) (int64, error) {
	if s.markAllReadFn != nil {
		return s.markAllReadFn(ctx, viewer)
	}
	return 0, nil
}

func (s *testNotificationsService) Archive(ctx context.Context, viewer access.Viewer, id int64) error {
	if s.archiveFn != nil {
		return s.archiveFn(ctx, viewer, id)
	}
	return nil
}

func (s *testNotificationsService) Create(ctx context.Context, viewer access.Viewer, input notifications.CreateInput) (*models.Notification, error) {
	if s.createFn != nil {
		return s.createFn(ctx, viewer, input)
	}
	return &models.Notification{ID: 1}, nil
}

func (s *testNotificationsService) Update(ctx context.Context, viewer access.Viewer, id int64, input notifications.UpdateInput) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, viewer, id, input)
	}
	return nil
}

func (s *testNotificationsService) Delete(ctx context.Context, viewer access.Viewer, id int64) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, viewer, id)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func serveNotifications(t *testing.T, svc notifications.Service, viewer *access.Viewer, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if viewer != nil {
		req = req.WithContext(middleware.WithViewer(req.Context(), *viewer))
	}
	resp := httptest.NewRecorder()
	Notifications(svc, testLogger())(resp, req)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestNotificationsRequiresViewer(t *testing.T) {
	resp, body := serveNotifications(t, &testNotificationsService{}, nil, http.MethodGet, "/api/notifications?action=get_unread_count", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Unauthorized", body["message"])
}

func TestNotificationsUnreadCount(t *testing.T) {
	svc := &testNotificationsService{
		unreadCountFn: func(ctx context.Context, viewer access.Viewer) (int64, error) {
			assert.Equal(t, int64(7), viewer.UserID)
			return 4, nil
		},
	}
	resp, body := serveNotifications(t, svc, &testManager, http.MethodGet, "/api/notifications?action=get_unread_count", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(4), body["count"])
}

func TestNotificationsRecentPassesLimit(t *testing.T) {
	var gotLimit int
	svc := &testNotificationsService{
		recentFn: func(ctx context.Context, viewer access.Viewer, limit int) ([]notifications.View, error) {
			gotLimit = limit
			return []notifications.View{{ID: 3, Title: "Low stock"}}, nil
		},
	}
	resp, body := serveNotifications(t, svc, &testManager, http.MethodGet, "/api/notifications?action=get_recent&limit=10", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 10, gotLimit)
	require.Len(t, body["notifications"], 1)

	resp, _ = serveNotifications(t, svc, &testManager, http.MethodGet, "/api/notifications?action=get_recent&limit=500", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestNotificationsGetAllParsesQuery(t *testing.T) {
	var got notifications.ListParams
	svc := &testNotificationsService{
		listFn: func(ctx context.Context, viewer access.Viewer, params notifications.ListParams) (*notifications.ListResult, error) {
			got = params
			return &notifications.ListResult{
				Notifications: []notifications.View{},
				Pagination:    pagination.Meta{CurrentPage: 2, TotalPages: 3, TotalCount: 60, PerPage: 25},
			}, nil
		},
	}
	resp, body := serveNotifications(t, svc, &testManager, http.MethodGet,
		"/api/notifications?action=get_all&page=2&limit=25&filter=unread&type=inventory_alert&priority=high", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, notifications.ListParams{Filter: "unread", Type: "inventory_alert", Priority: "high", Page: 2, Limit: 25}, got)

	meta := body["pagination"].(map[string]any)
	assert.Equal(t, float64(2), meta["current_page"])
	assert.Equal(t, float64(3), meta["total_pages"])
	assert.Equal(t, float64(60), meta["total_count"])
	assert.Equal(t, float64(25), meta["per_page"])
}

func TestNotificationsGetByIDNotFound(t *testing.T) {
	resp, body := serveNotifications(t, &testNotificationsService{}, &testManager, http.MethodGet, "/api/notifications?action=get_by_id&id=99", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, false, body["success"])

	resp, _ = serveNotifications(t, &testNotificationsService{}, &testManager, http.MethodGet, "/api/notifications?action=get_by_id", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestNotificationsInvalidAction(t *testing.T) {
	cases := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodGet, "/api/notifications", ""},
		{http.MethodGet, "/api/notifications?action=explode", ""},
		{http.MethodPost, "/api/notifications", `{"action":"update","id":1}`},
		{http.MethodPut, "/api/notifications", `{"action":"mark_read","notification_id":1}`},
		{http.MethodDelete, "/api/notifications", `{"action":"archive","notification_id":1}`},
	}
	for _, tc := range cases {
		resp, body := serveNotifications(t, &testNotificationsService{}, &testManager, tc.method, tc.target, tc.body)
		assert.Equal(t, http.StatusBadRequest, resp.Code, "%s %s %s", tc.method, tc.target, tc.body)
		assert.Equal(t, "Invalid action", body["message"])
	}
}

func TestNotificationsMethodNotAllowed(t *testing.T) {
	resp, body := serveNotifications(t, &testNotificationsService{}, &testManager, http.MethodPatch, "/api/notifications", `{"action":"update"}`)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, resp.Header().Get("Allow"))
}

func TestNotificationsMarkRead(t *testing.T) {
	var gotID int64
	svc := &testNotificationsService{
		markReadFn: func(ctx context.Context, viewer access.Viewer, id int64) error {
			gotID = id
			if id == 404 {
				return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
			}
			return nil
		},
	}
	resp, body := serveNotifications(t, svc, &testManager, http.MethodPost, "/api/notifications", `{"action":"mark_read","notification_id":12}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, int64(12), gotID)
	assert.Equal(t, "Notification marked as read", body["message"])

	resp, _ = serveNotifications(t, svc, &testManager, http.MethodPost, "/api/notifications", `{"action":"mark_read","notification_id":404}`)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp, body = serveNotifications(t, svc, &testManager, http.MethodPost, "/api/notifications", `{"action":"mark_read"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Field 'notification_id' is required", body["message"])
}

func TestNotificationsMarkAllRead(t *testing.T) {
	svc := &testNotificationsService{
		markAllReadFn: func(ctx context.Context, viewer access.Viewer) (int64, error) { return 5, nil },
	}
	resp, body := serveNotifications(t, svc, &testManager, http.MethodPost, "/api/notifications", `{"action":"mark_all_read"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, float64(5), body["count"])
	assert.NotEmpty(t, body["message"])

	resp, _ = serveNotifications(t, svc, &testManager, http.MethodPost, "/api/notifications?action=mark_all_read", "")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestNotificationsUpdateAndDelete(t *testing.T) {
	var updatedID, deletedID int64
	var input notifications.UpdateInput
	svc := &testNotificationsService{
		updateFn: func(ctx context.Context, viewer access.Viewer, id int64, in notifications.UpdateInput) error {
			updatedID, input = id, in
			return nil
		},
		deleteFn: func(ctx context.Context, viewer access.Viewer, id int64) error {
			deletedID = id
			return nil
		},
	}
	resp, _ := serveNotifications(t, svc, &testAdmin, http.MethodPut, "/api/notifications", `{"action":"update","id":8,"priority":"low"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, int64(8), updatedID)
	require.NotNil(t, input.Priority)
	assert.Equal(t, "low", *input.Priority)

	resp, _ = serveNotifications(t, svc, &testAdmin, http.MethodPut, "/api/notifications", `{"action":"update","id":8,"is_read":true}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code, "read state is not an updatable field")

	resp, _ = serveNotifications(t, svc, &testAdmin, http.MethodDelete, "/api/notifications", `{"action":"delete","notification_id":9}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, int64(9), deletedID)

	resp, _ = serveNotifications(t, svc, &testAdmin, http.MethodDelete, "/api/notifications?action=delete&notification_id=10", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, int64(10), deletedID)
}

func TestNotificationsCreateEndToEnd(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := notifications.NewService(notifications.ServiceParams{
		Repo:   notifications.NewRepository(client.DB()),
		Logger: testLogger(),
	})
	require.NoError(t, err)

	resp, body := serveNotifications(t, svc, &testAdmin, http.MethodPost, "/api/notifications",
		`{"action":"create","title":"Audit","message":"Quarterly audit on Friday","type":"system_announcement"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Field 'priority' is required", body["message"])

	var count int64
	require.NoError(t, client.DB().Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)

	resp, body = serveNotifications(t, svc, &testManager, http.MethodPost, "/api/notifications",
		`{"action":"create","title":"Audit","message":"Quarterly audit","type":"system_announcement","priority":"low"}`)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp, body = serveNotifications(t, svc, &testAdmin, http.MethodPost, "/api/notifications",
		`{"action":"create","title":"Audit","message":"Quarterly audit","type":"system_announcement","priority":"low","section":2}`)
	require.Equal(t, http.StatusOK, resp.Code)
	id := int64(body["notification_id"].(float64))
	assert.Positive(t, id)
	assert.True(t, strings.HasPrefix(body["code"].(string), "SYSTEM_ANNOUNCEMENT_"))

	resp, body = serveNotifications(t, svc, &testManager, http.MethodGet, "/api/notifications?action=get_unread_count", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, float64(1), body["count"])
}
