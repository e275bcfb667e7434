package notifications

import (
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/plantops/plantops-backend/pkg/db/models"
	"github.com/plantops/plantops-backend/pkg/enums"
	pkgerrors "github.com/plantops/plantops-backend/pkg/errors"
)

const maxTitleLength = 255

// CreateInput carries the fields an admin may set on a manual notification.
type CreateInput struct {
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

func (in CreateInput) build(now time.Time) (*models.Notification, error) {
	title := strings.TrimSpace(in.Title)
	message := strings.TrimSpace(in.Message)
	rawType := strings.TrimSpace(in.Type)
	rawPriority := strings.TrimSpace(in.Priority)

	required := []struct {
		name  string
		value string
	}{
		{"title", title},
		{"message", message},
		{"type", rawType},
		{"priority", rawPriority},
	}
	for _, field := range required {
		if field.value == "" {
			return nil, requiredField(field.name)
		}
	}
	if len(title) > maxTitleLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is too long")
	}

	notificationType, err := enums.ParseNotificationType(rawType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification type")
	}
	priority, err := enums.ParseNotificationPriority(rawPriority)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification priority")
	}

	notification := &models.Notification{
		Code:           NewCode(notificationType, now),
		Type:           notificationType,
		Priority:       priority,
		Category:       trimmedOrNil(in.Category),
		Title:          title,
		Message:        message,
		ActionRequired: in.ActionRequired,
		ActionURL:      trimmedOrNil(in.ActionURL),
	}
	if len(in.Data) > 0 {
		notification.Data = datatypes.JSONMap(in.Data)
	}
	if in.UserID != nil {
		if *in.UserID <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "user_id must be positive")
		}
		userID := *in.UserID
		notification.UserID = &userID
	}
	if in.Section != nil {
		section := enums.Section(*in.Section)
		if !section.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "section must be 1, 2 or 3")
		}
		notification.Section = &section
	}
	if in.ExpiresAt != nil {
		if !in.ExpiresAt.After(now) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "expires_at must be in the future")
		}
		expires := in.ExpiresAt.UTC()
		notification.ExpiresAt = &expires
	}
	return notification, nil
}

// UpdateInput is the allow-listed set of fields an admin may change.
type UpdateInput struct {
	Title          *string `json:"title"`
	Message        *string `json:"message"`
	Priority       *string `json:"priority"`
	Type           *string `json:"type"`
	Category       *string `json:"category"`
	ActionRequired *bool   `json:"action_required"`
	ActionURL      *string `json:"action_url"`
}

func (in UpdateInput) updates() (map[string]any, error) {
	updates := map[string]any{}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, requiredField("title")
		}
		if len(title) > maxTitleLength {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is too long")
		}
		updates["title"] = title
	}
	if in.Message != nil {
		message := strings.TrimSpace(*in.Message)
		if message == "" {
			return nil, requiredField("message")
		}
		updates["message"] = message
	}
	if in.Priority != nil {
		priority, err := enums.ParseNotificationPriority(strings.TrimSpace(*in.Priority))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification priority")
		}
		updates["priority"] = priority
	}
	if in.Type != nil {
		notificationType, err := enums.ParseNotificationType(strings.TrimSpace(*in.Type))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification type")
		}
		updates["type"] = notificationType
	}
	if in.Category != nil {
		updates["category"] = trimmedOrNil(in.Category)
	}
	if in.ActionRequired != nil {
		updates["action_required"] = *in.ActionRequired
	}
	if in.ActionURL != nil {
		updates["action_url"] = trimmedOrNil(in.ActionURL)
	}

	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no updatable fields provided")
	}
	return updates, nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
