package entities

import (
	"errors"
	"strings"
	"time"
)

// Transcript is text derived from spoken audio, tagged with its source language.
// It is never mutated after creation.
type Transcript struct {
	Text           string       `json:"text"`
	SourceLanguage LanguageCode `json:"source_language"`
}

// ReplyResult is what every channel delivers back to the user
type ReplyResult struct {
	Text         string       `json:"text"`
	LanguageCode LanguageCode `json:"language_code"`
	AudioURL     string       `json:"audio_url,omitempty"`
}

// HasAudio reports whether synthesis produced a deliverable URL
func (r ReplyResult) HasAudio() bool {
	return r.AudioURL != ""
}

// Validate enforces that a reply never goes out with both text and audio absent
func (r ReplyResult) Validate() error {
	if strings.TrimSpace(r.Text) == "" && r.AudioURL == "" {
		return errors.New("reply has neither text nor audio")
	}
	return nil
}

// InteractionLogEntry is the append-only record written by the REST channel
type InteractionLogEntry struct {
	ID        string       `json:"id" bson:"_id"`
	UserID    string       `json:"user" bson:"user_id"`
	Query     string       `json:"query" bson:"query"`
	Response  string       `json:"response" bson:"response"`
	Category  string       `json:"category" bson:"category"`
	Language  LanguageCode `json:"language" bson:"language"`
	Timestamp time.Time    `json:"timestamp" bson:"timestamp"`
}

// Validate checks the fields the log store requires
func (e *InteractionLogEntry) Validate() error {
	if e.UserID == "" {
		return errors.New("user is required")
	}
	if e.Query == "" {
		return errors.New("query is required")
	}
	if e.Category == "" {
		return errors.New("category is required")
	}
	return nil
}

// Lesson is a catalog entry served by the topic-lessons route
type Lesson struct {
	ID        string       `json:"id" bson:"_id"`
	Title     string       `json:"title" bson:"title"`
	Category  string       `json:"category" bson:"category"`
	Language  LanguageCode `json:"language" bson:"language"`
	Body      string       `json:"body" bson:"body"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
}

// LessonFilter narrows a catalog listing. Empty fields do not filter.
type LessonFilter struct {
	Language string
	Category string
	Search   string
	Offset   int
	Limit    int
}

// Matches applies the filter to a single lesson, ignoring pagination
func (f LessonFilter) Matches(l *Lesson) bool {
	if f.Language != "" && string(l.Language) != f.Language {
		return false
	}
	if f.Category != "" && l.Category != f.Category {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(l.Title), q) && !strings.Contains(strings.ToLower(l.Body), q) {
			return false
		}
	}
	return true
}

// UserProfile carries the preferences the pipeline consumes
type UserProfile struct {
	UserID     string       `json:"user_id" bson:"_id"`
	Phone      string       `json:"phone,omitempty" bson:"phone"`
	Language   LanguageCode `json:"language" bson:"language"`
	DeviceType string       `json:"device_type" bson:"device_type"`
}
