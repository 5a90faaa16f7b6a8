package repositories

import (
	"context"

	"github.com/satriahrh/voicebridge/domain/entities"
)

// ObjectStorage uploads files to durable storage and returns a public URL
type ObjectStorage interface {
	Upload(ctx context.Context, filename string, data []byte, contentType string) (string, error)
}

// InteractionLogRepository is the append-only interaction log
type InteractionLogRepository interface {
	Create(ctx context.Context, entry *entities.InteractionLogEntry) error
	// ListByUser returns the user's entries newest first
	ListByUser(ctx context.Context, userID string, limit int) ([]*entities.InteractionLogEntry, error)
}

// LessonRepository serves the lesson catalog
type LessonRepository interface {
	// List returns one page of matching lessons newest first and the total match count
	List(ctx context.Context, filter entities.LessonFilter) ([]*entities.Lesson, int, error)
	Create(ctx context.Context, lesson *entities.Lesson) error
}

// ProfileRepository reads user preferences
type ProfileRepository interface {
	// GetByUserID returns nil, nil when the user has no profile
	GetByUserID(ctx context.Context, userID string) (*entities.UserProfile, error)
	Upsert(ctx context.Context, profile *entities.UserProfile) error
}
