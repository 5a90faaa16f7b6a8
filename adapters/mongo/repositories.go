package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/satriahrh/voicebridge/domain/entities"
	"github.com/satriahrh/voicebridge/domain/repositories"
)

const (
	interactionsCollection = "interaction_logs"
	lessonsCollection      = "lessons"
	profilesCollection     = "profiles"
)

type InteractionLogRepository struct {
	collection *mongo.Collection
}

// NewInteractionLogRepository creates a new MongoDB interaction log
func NewInteractionLogRepository(db *mongo.Database) repositories.InteractionLogRepository {
	return &InteractionLogRepository{collection: db.Collection(interactionsCollection)}
}

// Create implements repositories.InteractionLogRepository
func (r *InteractionLogRepository) Create(ctx context.Context, entry *entities.InteractionLogEntry) error {
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

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to create interaction log: %w", err)
	}
	return nil
}

// ListByUser implements repositories.InteractionLogRepository
func (r *InteractionLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*entities.InteractionLogEntry, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions for user %s: %w", userID, err)
	}

	entries := []*entities.InteractionLogEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode interactions: %w", err)
	}
	return entries, nil
}

type LessonRepository struct {
	collection *mongo.Collection
}

// NewLessonRepository creates a new MongoDB lesson catalog
func NewLessonRepository(db *mongo.Database) repositories.LessonRepository {
	return &LessonRepository{collection: db.Collection(lessonsCollection)}
}

// Create implements repositories.LessonRepository
func (r *LessonRepository) Create(ctx context.Context, lesson *entities.Lesson) error {
	if lesson == nil {
		return errors.New("lesson cannot be nil")
	}
	if lesson.ID == "" {
		lesson.ID = uuid.New().String()
	}
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, lesson); err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

// List implements repositories.LessonRepository
func (r *LessonRepository) List(ctx context.Context, filter entities.LessonFilter) ([]*entities.Lesson, int, error) {
	query := lessonQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count lessons: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(filter.Offset))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list lessons: %w", err)
	}

	lessons := []*entities.Lesson{}
	if err := cursor.All(ctx, &lessons); err != nil {
		return nil, 0, fmt.Errorf("failed to decode lessons: %w", err)
	}
	return lessons, int(total), nil
}

func lessonQuery(filter entities.LessonFilter) bson.M {
	query := bson.M{}
	if filter.Language != "" {
		query["language"] = filter.Language
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Search != "" {
		pattern := regexp.QuoteMeta(filter.Search)
		query["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"body": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	return query
}

type ProfileRepository struct {
	collection *mongo.Collection
}

// NewProfileRepository creates a new MongoDB profile store
func NewProfileRepository(db *mongo.Database) repositories.ProfileRepository {
	return &ProfileRepository{collection: db.Collection(profilesCollection)}
}

// GetByUserID implements repositories.ProfileRepository
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*entities.UserProfile, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}

	var profile entities.UserProfile
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // No profile yet
		}
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}
	return &profile, nil
}

// Upsert implements repositories.ProfileRepository
func (r *ProfileRepository) Upsert(ctx context.Context, profile *entities.UserProfile) error {
	if profile == nil {
		return errors.New("profile cannot be nil")
	}
	if profile.UserID == "" {
		return errors.New("user ID cannot be empty")
	}

	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": profile.UserID},
		profile,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}
