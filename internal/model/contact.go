// Package model defines data structures used throughout the application.
package model

import "time"

// Contact represents a single entry in the directory.
//
// Location, Address and Birthday are optional; absence is represented by a
// nil pointer, never by an empty string.
type Contact struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Location   *string `json:"location,omitempty"`
	Address    *string `json:"address,omitempty"`
	Birthday   *string `json:"birthday,omitempty"`
	IsFavorite bool    `json:"is_favorite"`
}

// ContactInput carries the caller-editable fields of a contact.
// The id and favorite flag are managed by the store, not the caller.
type ContactInput struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Location *string `json:"location,omitempty"`
	Address  *string `json:"address,omitempty"`
	Birthday *string `json:"birthday,omitempty"`
}

// SearchRequest carries a search text update.
type SearchRequest struct {
	Text string `json:"text"`
}

// APIResponse is a generic wrapper for API responses.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewSuccessResponse creates a successful API response.
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error API response.
func NewErrorResponse[T any](errMsg string) APIResponse[T] {
	return APIResponse[T]{
		Success: false,
		Error:   errMsg,
	}
}

// ErrorResponse represents an error response structure.
type ErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Notification is a timed feedback event emitted by the engine for the
// presentation layer to render and auto-dismiss.
type Notification struct {
	Event     string    `json:"event"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Notification event names.
const (
	EventContactCreated  = "contact_created"
	EventContactUpdated  = "contact_updated"
	EventContactDeleted  = "contact_deleted"
	EventDeleteUndone    = "delete_undone"
	EventFavoriteToggled = "favorite_toggled"
)

// WebSocketMessage represents a message sent over a WebSocket connection.
type WebSocketMessage struct {
	Type         string        `json:"type"`
	Notification *Notification `json:"notification,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

// WebSocket message types.
const (
	WSMessageTypeNotification = "notification"
	WSMessageTypeDismiss      = "dismiss"
	WSMessageTypePing         = "ping"
	WSMessageTypePong         = "pong"
	WSMessageTypeError        = "error"
)

// NewNotificationMessage wraps a notification for the stream.
func NewNotificationMessage(n Notification) WebSocketMessage {
	return WebSocketMessage{
		Type:         WSMessageTypeNotification,
		Notification: &n,
		Timestamp:    time.Now().UTC(),
	}
}

// NewDismissMessage signals that a previously delivered notification expired.
func NewDismissMessage(n Notification) WebSocketMessage {
	return WebSocketMessage{
		Type:         WSMessageTypeDismiss,
		Notification: &n,
		Timestamp:    time.Now().UTC(),
	}
}
