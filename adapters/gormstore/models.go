// Package gormstore persists interactions, lessons and profiles in a SQL
// database through gorm. Postgres is used in production and SQLite for
// single-node deployments and tests.
package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/satriahrh/voicebridge/domain/entities"
)

// InteractionLog is the row shape of an interaction log entry.
type InteractionLog struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey;<-:create"`
	UserID    string    `gorm:"column:user_id;type:varchar(100);not null;index:idx_interaction_user_time,priority:1"`
	Query     string    `gorm:"column:query;type:text;not null"`
	Response  string    `gorm:"column:response;type:text;not null;default:''"`
	Category  string    `gorm:"column:category;type:varchar(50);not null"`
	Language  string    `gorm:"column:language;type:varchar(10);not null;default:'en'"`
	Timestamp time.Time `gorm:"column:timestamp;not null;index:idx_interaction_user_time,priority:2"`
}

func (InteractionLog) TableName() string {
	return "interaction_logs"
}

func (l *InteractionLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now()
	}
	return nil
}

func (l *InteractionLog) toEntity() *entities.InteractionLogEntry {
	return &entities.InteractionLogEntry{
		ID:        l.ID,
		UserID:    l.UserID,
		Query:     l.Query,
		Response:  l.Response,
		Category:  l.Category,
		Language:  entities.LanguageCode(l.Language),
		Timestamp: l.Timestamp,
	}
}

// Lesson is the row shape of a catalog entry.
type Lesson struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey;<-:create"`
	Title     string    `gorm:"column:title;type:varchar(255);not null"`
	Category  string    `gorm:"column:category;type:varchar(50);not null;index"`
	Language  string    `gorm:"column:language;type:varchar(10);not null;index"`
	Body      string    `gorm:"column:body;type:text;not null;default:''"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index"`
}

func (Lesson) TableName() string {
	return "lessons"
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	return nil
}

func (l *Lesson) toEntity() *entities.Lesson {
	return &entities.Lesson{
		ID:        l.ID,
		Title:     l.Title,
		Category:  l.Category,
		Language:  entities.LanguageCode(l.Language),
		Body:      l.Body,
		CreatedAt: l.CreatedAt,
	}
}

// Profile is the row shape of a user profile.
type Profile struct {
	UserID     string `gorm:"column:user_id;type:varchar(100);primaryKey"`
	Phone      string `gorm:"column:phone;type:varchar(50);not null;default:''"`
	Language   string `gorm:"column:language;type:varchar(10);not null;default:'en'"`
	DeviceType string `gorm:"column:device_type;type:varchar(50);not null;default:''"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) toEntity() *entities.UserProfile {
	return &entities.UserProfile{
		UserID:     p.UserID,
		Phone:      p.Phone,
		Language:   entities.LanguageCode(p.Language),
		DeviceType: p.DeviceType,
	}
}
