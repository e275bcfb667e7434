package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/plantops/plantops-backend/api/middleware"
	"github.com/plantops/plantops-backend/api/responses"
	"github.com/plantops/plantops-backend/api/validators"
	"github.com/plantops/plantops-backend/internal/notifications"
	"github.com/plantops/plantops-backend/pkg/access"
	pkgerrors "github.com/plantops/plantops-backend/pkg/errors"
	"github.com/plantops/plantops-backend/pkg/logger"
	"github.com/plantops/plantops-backend/pkg/pagination"
	"github.com/plantops/plantops-backend/pkg/types"
)

const (
	actionGetUnreadCount = "get_unread_count"
	actionGetRecent      = "get_recent"
	actionGetAll         = "get_all"
	actionGetByID        = "get_by_id"
	actionMarkRead       = "mark_read"
	actionMarkAllRead    = "mark_all_read"
	actionCreate         = "create"
	actionArchive        = "archive"
	actionUpdate         = "update"
	actionDelete         = "delete"
)

type actionEnvelope struct {
	Action string `json:"action"`
}

type notificationIDRequest struct {
	Action         string `json:"action"`
	NotificationID int64  `json:"notification_id" validate:"required,gt=0"`
}

type markAllReadRequest struct {
	Action string `json:"action"`
}

type createNotificationRequest struct {
	Action         string         `json:"action"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	Type           string         `json:"type"`
	Priority       string         `json:"priority"`
	Category       *string        `json:"category"`
	ActionRequired bool           `json:"action_required"`
	ActionURL      *string        `json:"action_url"`
	Data           map[string]any `json:"data"`
	UserID         *int64         `json:"user_id"`
	Section        *int           `json:"section"`
	ExpiresAt      *time.Time     `json:"expires_at"`
}

type updateNotificationRequest struct {
	Action         string  `json:"action"`
	ID             int64   `json:"id" validate:"required,gt=0"`
	Title          *string `json:"title"`
	Message        *string `json:"message"`
	Type           *string `json:"type"`
	Priority       *string `json:"priority"`
	Category       *string `json:"category"`
	ActionRequired *bool   `json:"action_required"`
	ActionURL      *string `json:"action_url"`
}

// Notifications serves the action-dispatched notifications endpoint. GET
// actions come from the query string, the rest from the JSON body.
func Notifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}
		viewer, ok := middleware.ViewerFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "viewer missing"))
			return
		}

		var err error
		switch r.Method {
		case http.MethodGet:
			err = handleNotificationQuery(w, r, svc, viewer)
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			err = handleNotificationCommand(w, r, svc, viewer)
		default:
			w.Header().Set("Allow", "GET, POST, PUT, DELETE")
			err = pkgerrors.New(pkgerrors.CodeMethod, "Method not allowed")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
		}
	}
}

func handleNotificationQuery(w http.ResponseWriter, r *http.Request, svc notifications.Service, viewer access.Viewer) error {
	ctx := r.Context()
	query := r.URL.Query()

	switch strings.TrimSpace(query.Get("action")) {
	case actionGetUnreadCount:
		count, err := svc.UnreadCount(ctx, viewer)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, types.SuccessFields{"count": count})
	case actionGetRecent:
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 50)
		if err != nil {
			return err
		}
		views, err := svc.Recent(ctx, viewer, limit)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, types.SuccessFields{"notifications": views})
	case actionGetAll:
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<20)
		if err != nil {
			return err
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			return err
		}
		result, err := svc.List(ctx, viewer, notifications.ListParams{
			Filter:   query.Get("filter"),
			Type:     query.Get("type"),
			Priority: query.Get("priority"),
			Page:     page,
			Limit:    limit,
		})
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, types.SuccessFields{
			"notifications": result.Notifications,
			"pagination":    result.Pagination,
		})
	case actionGetByID:
		id, err := validators.ParseID("id", query.Get("id"))
		if err != nil {
			return err
		}
		view, err := svc.Get(ctx, viewer, id)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, types.SuccessFields{"notification": view})
	default:
		return invalidAction()
	}
	return nil
}

func handleNotificationCommand(w http.ResponseWriter, r *http.Request, svc notifications.Service, viewer access.Viewer) error {
	ctx := r.Context()
	body, err := validators.ReadBody(r)
	if err != nil {
		return err
	}

	action := strings.TrimSpace(r.URL.Query().Get("action"))
	if hasBody(body) {
		var envelope actionEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
		}
		if envelope.Action != "" {
			action = strings.TrimSpace(envelope.Action)
		}
	}
	if !actionAllowed(r.Method, action) {
		return invalidAction()
	}

	switch action {
	case actionMarkRead:
		var req notificationIDRequest
		if err := validators.DecodeJSON(body, &req); err != nil {
			return err
		}
		if err := svc.MarkRead(ctx, viewer, req.NotificationID); err != nil {
			return err
		}
		responses.WriteSuccess(w, types.SuccessFields{"message": "Notification marked as read"})
	case actionMarkAllRead:
		if hasBody(body) {
			var req markAllReadRequest
			if err := validators.DecodeJSON(body, &req); err != nil {
				return err
			}
		}
		count, err := svc.MarkAllRead(ctx, viewer)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, types.SuccessFields{"message": "All notifications marked as read", "count": count})
	case actionCreate:
		var req createNotificationRequest
		if err := validators.DecodeJSON(body, &req); err != nil {
			return err
		}
		created, err := svc.Create(ctx, viewer, notifications.CreateInput{
			Title:          req.Title,
			Message:        req.Message,
			Type:           req.Type,
			Priority:       req.Priority,
			Category:       req.Category,
			ActionRequired: req.ActionRequired,
			ActionURL:      req.ActionURL,
			Data:           req.Data,
			UserID:         req.UserID,
			Section:        req.Section,
			ExpiresAt:      req.ExpiresAt,
		})
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, types.SuccessFields{"notification_id": created.ID, "code": created.Code})
	case actionArchive:
		var req notificationIDRequest
		if err := validators.DecodeJSON(body, &req); err != nil {
			return err
		}
		if err := svc.Archive(ctx, viewer, req.NotificationID); err != nil {
			return err
		}
		responses.WriteSuccess(w, types.SuccessFields{})
	case actionUpdate:
		var req updateNotificationRequest
		if err := validators.DecodeJSON(body, &req); err != nil {
			return err
		}
		if err := svc.Update(ctx, viewer, req.ID, notifications.UpdateInput{
			Title:          req.Title,
			Message:        req.Message,
			Priority:       req.Priority,
			Type:           req.Type,
			Category:       req.Category,
			ActionRequired: req.ActionRequired,
			ActionURL:      req.ActionURL,
		}); err != nil {
			return err
		}
		responses.WriteSuccess(w, types.SuccessFields{})
	case actionDelete:
		id, err := deleteTarget(r, body)
		if err != nil {
			return err
		}
		if err := svc.Delete(ctx, viewer, id); err != nil {
			return err
		}
		responses.WriteSuccess(w, types.SuccessFields{})
	}
	return nil
}

// deleteTarget reads notification_id from the body, or from the query string
// when the client sends DELETE without a body.
func deleteTarget(r *http.Request, body []byte) (int64, error) {
	if !hasBody(body) {
		return validators.ParseID("notification_id", r.URL.Query().Get("notification_id"))
	}
	var req notificationIDRequest
	if err := validators.DecodeJSON(body, &req); err != nil {
		return 0, err
	}
	return req.NotificationID, nil
}

func hasBody(body []byte) bool {
	return len(bytes.TrimSpace(body)) > 0
}

func actionAllowed(method, action string) bool {
	switch method {
	case http.MethodPost:
		return action == actionMarkRead || action == actionMarkAllRead || action == actionCreate || action == actionArchive
	case http.MethodPut:
		return action == actionUpdate
	case http.MethodDelete:
		return action == actionDelete
	}
	return false
}

func invalidAction() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "Invalid action")
}
