package adapters

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/satriahrh/voicebridge/domain/entities"
	"github.com/satriahrh/voicebridge/domain/repositories"
)

var (
	_ repositories.InteractionLogRepository = (*MemoryInteractionLogRepository)(nil)
	_ repositories.LessonRepository         = (*MemoryLessonRepository)(nil)
	_ repositories.ProfileRepository        = (*MemoryProfileRepository)(nil)
)

// MemoryInteractionLogRepository is an in-memory append-only interaction log
type MemoryInteractionLogRepository struct {
	mu      sync.RWMutex
	entries []*entities.InteractionLogEntry
	byUser  map[string][]*entities.InteractionLogEntry // user_id -> entries in insertion order
}

// NewMemoryInteractionLogRepository creates a new in-memory interaction log
func NewMemoryInteractionLogRepository() *MemoryInteractionLogRepository {
	return &MemoryInteractionLogRepository{
		byUser: make(map[string][]*entities.InteractionLogEntry),
	}
}

// Create implements InteractionLogRepository interface
func (m *MemoryInteractionLogRepository) Create(ctx context.Context, entry *entities.InteractionLogEntry) error {
	if entry == nil {
		return errors.New("entry cannot be nil")
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entryCopy := *entry
	m.entries = append(m.entries, &entryCopy)
	m.byUser[entry.UserID] = append(m.byUser[entry.UserID], &entryCopy)
	return nil
}

// ListByUser implements InteractionLogRepository interface
func (m *MemoryInteractionLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*entities.InteractionLogEntry, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.byUser[userID]
	result := make([]*entities.InteractionLogEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if limit > 0 && len(result) == limit {
			break
		}
		entryCopy := *entries[i]
		result = append(result, &entryCopy)
	}
	return result, nil
}

// All returns a copy of every entry in insertion order
func (m *MemoryInteractionLogRepository) All() []*entities.InteractionLogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*entities.InteractionLogEntry, len(m.entries))
	for i, entry := range m.entries {
		entryCopy := *entry
		result[i] = &entryCopy
	}
	return result
}

// MemoryLessonRepository is an in-memory lesson catalog
type MemoryLessonRepository struct {
	mu      sync.RWMutex
	lessons []*entities.Lesson
}

// NewMemoryLessonRepository creates a catalog seeded with lessons
func NewMemoryLessonRepository(seed ...*entities.Lesson) *MemoryLessonRepository {
	m := &MemoryLessonRepository{}
	for _, lesson := range seed {
		_ = m.Create(context.Background(), lesson)
	}
	return m
}

// Create implements LessonRepository interface
func (m *MemoryLessonRepository) Create(ctx context.Context, lesson *entities.Lesson) error {
	if lesson == nil {
		return errors.New("lesson cannot be nil")
	}
	if lesson.Title == "" {
		return errors.New("lesson title cannot be empty")
	}
	if lesson.ID == "" {
		lesson.ID = uuid.New().String()
	}
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	lessonCopy := *lesson
	m.lessons = append(m.lessons, &lessonCopy)
	return nil
}

// List implements LessonRepository interface
func (m *MemoryLessonRepository) List(ctx context.Context, filter entities.LessonFilter) ([]*entities.Lesson, int, error) {
	m.mu.RLock()
	matched := make([]*entities.Lesson, 0, len(m.lessons))
	for _, lesson := range m.lessons {
		if filter.Matches(lesson) {
			lessonCopy := *lesson
			matched = append(matched, &lessonCopy)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset >= total {
		return []*entities.Lesson{}, total, nil
	}
	end := total
	if filter.Limit > 0 && filter.Offset+filter.Limit < total {
		end = filter.Offset + filter.Limit
	}
	return matched[filter.Offset:end], total, nil
}

// MemoryProfileRepository is an in-memory profile store
type MemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*entities.UserProfile // user_id -> profile
}

// NewMemoryProfileRepository creates a new in-memory profile store
func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{profiles: make(map[string]*entities.UserProfile)}
}

// GetByUserID implements ProfileRepository interface
func (m *MemoryProfileRepository) GetByUserID(ctx context.Context, userID string) (*entities.UserProfile, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	profile, exists := m.profiles[userID]
	if !exists {
		return nil, nil
	}
	profileCopy := *profile
	return &profileCopy, nil
}

// Upsert implements ProfileRepository interface
func (m *MemoryProfileRepository) Upsert(ctx context.Context, profile *entities.UserProfile) error {
	if profile == nil {
		return errors.New("profile cannot be nil")
	}
	if profile.UserID == "" {
		return errors.New("user ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	profileCopy := *profile
	m.profiles[profile.UserID] = &profileCopy
	return nil
}
