package events

import (
	"time"

	"github.com/google/uuid"
)

// NoteEvent is published after a note change commits. Slug is the current
// public slug, PreviousSlug the one in force before the change; consumers
// drop cached public pages for PreviousSlug.
type NoteEvent struct {
	EventType    string    `json:"eventType"`
	NoteID       string    `json:"noteId"`
	OwnerID      string    `json:"ownerId"`
	ActionBy     string    `json:"actionBy"`
	Visibility   string    `json:"visibility,omitempty"`
	Slug         string    `json:"slug,omitempty"`
	PreviousSlug string    `json:"previousSlug,omitempty"`
	TargetUserID string    `json:"targetUserId,omitempty"`
	CommentID    string    `json:"commentId,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewNoteEvent creates a note event stamped with at, in UTC.
func NewNoteEvent(eventType string, noteID, ownerID, actionBy uuid.UUID, at time.Time) *NoteEvent {
	return &NoteEvent{
		EventType: eventType,
		NoteID:    noteID.String(),
		OwnerID:   ownerID.String(),
		ActionBy:  actionBy.String(),
		Timestamp: at.UTC(),
	}
}

// WithTarget sets the user an event is about, such as an invited collaborator.
func (e *NoteEvent) WithTarget(userID *uuid.UUID) *NoteEvent {
	if userID != nil {
		e.TargetUserID = userID.String()
	}
	return e
}

// Topic returns the topic the event belongs on.
func (e *NoteEvent) Topic() string {
	if e.EventType == CommentAdded {
		return NoteCommentsTopic
	}
	return NoteActivityTopic
}
