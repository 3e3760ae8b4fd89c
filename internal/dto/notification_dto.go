package dto

import (
	"time"

	"github.com/advait122/ROADmap/internal/models"
)

// NotificationCreateRequest describes a notification emitted by the engines.
type NotificationCreateRequest struct {
	StudentID            uint   `json:"student_id" validate:"required"`
	GoalID               *uint  `json:"goal_id"`
	Type                 string `json:"notification_type" validate:"required,max=64"`
	Title                string `json:"title" validate:"required,min=1,max=255"`
	Body                 string `json:"body" validate:"required,min=1,max=2000"`
	RelatedOpportunityID *uint  `json:"related_opportunity_id"`
}

// NotificationListQuery pages through a student's notifications.
type NotificationListQuery struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

// NotificationResponse represents notification data returned to clients.
type NotificationResponse struct {
	ID                   uint      `json:"id"`
	StudentID            uint      `json:"student_id"`
	GoalID               *uint     `json:"goal_id,omitempty"`
	Type                 string    `json:"notification_type"`
	Title                string    `json:"title"`
	Body                 string    `json:"body"`
	RelatedOpportunityID *uint     `json:"related_opportunity_id,omitempty"`
	IsRead               bool      `json:"is_read"`
	CreatedAt            time.Time `json:"created_at"`
}

// NotificationListResponse wraps a page of notifications with the unread count.
type NotificationListResponse struct {
	Items       []NotificationResponse `json:"items"`
	UnreadCount int64                  `json:"unread_count"`
}

// NewNotificationResponse converts a notification model to DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:                   model.ID,
		StudentID:            model.StudentID,
		GoalID:               model.GoalID,
		Type:                 model.Type,
		Title:                model.Title,
		Body:                 model.Body,
		RelatedOpportunityID: model.RelatedOpportunityID,
		IsRead:               model.IsRead,
		CreatedAt:            model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice to DTOs.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}
