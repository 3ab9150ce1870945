package events

// Note activity event types
const (
	NoteCreated           = "NOTE_CREATED"
	NoteUpdated           = "NOTE_UPDATED"
	NoteVisibilityChanged = "NOTE_VISIBILITY_CHANGED"
	NoteDeleted           = "NOTE_DELETED"
)

// Comment event types
const (
	CommentAdded = "COMMENT_ADDED"
)

// Kafka Topics
const (
	NoteActivityTopic = "note.activity"
	NoteCommentsTopic = "note.comments"
)
