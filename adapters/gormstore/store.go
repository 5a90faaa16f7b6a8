package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/satriahrh/voicebridge/domain/entities"
	"github.com/satriahrh/voicebridge/domain/repositories"
)

// Open connects to postgres or sqlite and migrates the schema
func Open(driver, dsn string, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported SQL driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if err := db.AutoMigrate(&InteractionLog{}, &Lesson{}, &Profile{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logger.Info("Connected to SQL database", zap.String("driver", driver))
	return db, nil
}

var (
	_ repositories.InteractionLogRepository = (*InteractionLogRepository)(nil)
	_ repositories.LessonRepository         = (*LessonRepository)(nil)
	_ repositories.ProfileRepository        = (*ProfileRepository)(nil)
)

type InteractionLogRepository struct {
	db *gorm.DB
}

func NewInteractionLogRepository(db *gorm.DB) *InteractionLogRepository {
	return &InteractionLogRepository{db: db}
}

// Create implements repositories.InteractionLogRepository
func (r *InteractionLogRepository) Create(ctx context.Context, entry *entities.InteractionLogEntry) error {
	if entry == nil {
		return errors.New("entry cannot be nil")
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	row := &InteractionLog{
		ID:        entry.ID,
		UserID:    entry.UserID,
		Query:     entry.Query,
		Response:  entry.Response,
		Category:  entry.Category,
		Language:  string(entry.Language),
		Timestamp: entry.Timestamp,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create interaction log: %w", err)
	}

	entry.ID = row.ID
	entry.Timestamp = row.Timestamp
	return nil
}

// ListByUser implements repositories.InteractionLogRepository
func (r *InteractionLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*entities.InteractionLogEntry, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}

	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []InteractionLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list interactions for user %s: %w", userID, err)
	}

	entries := make([]*entities.InteractionLogEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].toEntity()
	}
	return entries, nil
}

type LessonRepository struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// Create implements repositories.LessonRepository
func (r *LessonRepository) Create(ctx context.Context, lesson *entities.Lesson) error {
	if lesson == nil {
		return errors.New("lesson cannot be nil")
	}

	row := &Lesson{
		ID:        lesson.ID,
		Title:     lesson.Title,
		Category:  lesson.Category,
		Language:  string(lesson.Language),
		Body:      lesson.Body,
		CreatedAt: lesson.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}

	lesson.ID = row.ID
	lesson.CreatedAt = row.CreatedAt
	return nil
}

// List implements repositories.LessonRepository
func (r *LessonRepository) List(ctx context.Context, filter entities.LessonFilter) ([]*entities.Lesson, int, error) {
	query := r.db.WithContext(ctx).Model(&Lesson{})
	if filter.Language != "" {
		query = query.Where("language = ?", filter.Language)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(body) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count lessons: %w", err)
	}

	page := query.Order("created_at DESC").Offset(filter.Offset)
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}

	var rows []Lesson
	if err := page.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list lessons: %w", err)
	}

	lessons := make([]*entities.Lesson, len(rows))
	for i := range rows {
		lessons[i] = rows[i].toEntity()
	}
	return lessons, int(total), nil
}

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUserID implements repositories.ProfileRepository
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*entities.UserProfile, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}

	var row Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}
	return row.toEntity(), nil
}

// Upsert implements repositories.ProfileRepository
func (r *ProfileRepository) Upsert(ctx context.Context, profile *entities.UserProfile) error {
	if profile == nil {
		return errors.New("profile cannot be nil")
	}
	if profile.UserID == "" {
		return errors.New("user ID cannot be empty")
	}

	row := &Profile{
		UserID:     profile.UserID,
		Phone:      profile.Phone,
		Language:   string(profile.Language),
		DeviceType: profile.DeviceType,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"phone", "language", "device_type"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}
