package notifications

import (
	"time"

	"github.com/plantops/plantops-backend/pkg/db/models"
)

// View is the JSON shape of a notification returned to clients.
type View struct {
	ID                 int64          `json:"id"`
	Code               string         `json:"code"`
	Priority           string         `json:"priority"`
	Type               string         `json:"type"`
	Category           *string        `json:"category"`
	Title              string         `json:"title"`
	Message            string         `json:"message"`
	ActionRequired     bool           `json:"action_required"`
	ActionURL          *string        `json:"action_url"`
	Data               map[string]any `json:"data"`
	IsRead             bool           `json:"is_read"`
	IsArchived         bool           `json:"is_archived"`
	Section            *int           `json:"section"`
	UserID             *int64         `json:"user_id"`
	ReadAt             *time.Time     `json:"read_at,omitempty"`
	ExpiresAt          *time.Time     `json:"expires_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	CreatedAtFormatted string         `json:"created_at_formatted"`
}

func toView(n models.Notification, now time.Time) View {
	view := View{
		ID:                 n.ID,
		Code:               n.Code,
		Priority:           string(n.Priority),
		Type:               string(n.Type),
		Category:           n.Category,
		Title:              n.Title,
		Message:            n.Message,
		ActionRequired:     n.ActionRequired,
		ActionURL:          n.ActionURL,
		Data:               map[string]any(n.Data),
		IsRead:             n.IsRead,
		IsArchived:         n.IsArchived,
		UserID:             n.UserID,
		ReadAt:             n.ReadAt,
		ExpiresAt:          n.ExpiresAt,
		CreatedAt:          n.CreatedAt,
		CreatedAtFormatted: relativeTime(n.CreatedAt, now),
	}
	if view.Data == nil {
		view.Data = map[string]any{}
	}
	if n.Section != nil {
		section := int(*n.Section)
		view.Section = &section
	}
	return view
}

func toViews(rows []models.Notification, now time.Time) []View {
	views := make([]View, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row, now))
	}
	return views
}
