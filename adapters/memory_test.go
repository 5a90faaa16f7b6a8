package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/satriahrh/voicebridge/domain/entities"
)

func TestMemoryInteractionLogRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryInteractionLogRepository()

	if err := repo.Create(ctx, &entities.InteractionLogEntry{UserID: "u1"}); err == nil {
		t.Error("Expected validation error for entry without query")
	}

	for _, q := range []string{"first", "second", "third"} {
		entry := &entities.InteractionLogEntry{UserID: "u1", Query: q, Category: "health", Language: entities.LanguageEnglish}
		if err := repo.Create(ctx, entry); err != nil {
			t.Fatalf("Failed to create entry: %v", err)
		}
		if entry.ID == "" {
			t.Error("Expected ID to be assigned")
		}
	}
	if err := repo.Create(ctx, &entities.InteractionLogEntry{UserID: "u2", Query: "other", Category: "general"}); err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	entries, err := repo.ListByUser(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Query != "third" || entries[1].Query != "second" {
		t.Errorf("Expected newest first, got %s, %s", entries[0].Query, entries[1].Query)
	}

	if got := len(repo.All()); got != 4 {
		t.Errorf("Expected 4 entries in total, got %d", got)
	}
}

func TestMemoryLessonRepository_List(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewMemoryLessonRepository(
		&entities.Lesson{Title: "Malaria basics", Category: "health", Language: entities.LanguageEnglish, CreatedAt: base},
		&entities.Lesson{Title: "Ibà", Body: "malaria", Category: "health", Language: entities.LanguageYoruba, CreatedAt: base.Add(time.Hour)},
		&entities.Lesson{Title: "Saving money", Category: "finance", Language: entities.LanguageEnglish, CreatedAt: base.Add(2 * time.Hour)},
	)

	lessons, total, err := repo.List(ctx, entities.LessonFilter{Search: "MALARIA"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 || len(lessons) != 2 {
		t.Fatalf("Expected 2 matches, got total=%d len=%d", total, len(lessons))
	}
	if lessons[0].Title != "Ibà" {
		t.Errorf("Expected newest lesson first, got %s", lessons[0].Title)
	}

	lessons, total, _ = repo.List(ctx, entities.LessonFilter{Offset: 1, Limit: 1})
	if total != 3 || len(lessons) != 1 || lessons[0].Title != "Ibà" {
		t.Errorf("Unexpected page: total=%d lessons=%v", total, lessons)
	}

	lessons, total, _ = repo.List(ctx, entities.LessonFilter{Offset: 10, Limit: 5})
	if total != 3 || len(lessons) != 0 {
		t.Errorf("Expected empty page past the end, got total=%d len=%d", total, len(lessons))
	}

	lessons, _, _ = repo.List(ctx, entities.LessonFilter{Category: "finance", Language: "en"})
	if len(lessons) != 1 || lessons[0].Title != "Saving money" {
		t.Errorf("Expected finance lesson, got %v", lessons)
	}
}

func TestMemoryProfileRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfileRepository()

	profile, err := repo.GetByUserID(ctx, "u1")
	if err != nil || profile != nil {
		t.Fatalf("Expected nil profile without error, got %v, %v", profile, err)
	}

	if err := repo.Upsert(ctx, &entities.UserProfile{UserID: "u1", Language: entities.LanguageHausa}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	profile, err = repo.GetByUserID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByUserID failed: %v", err)
	}
	if profile.Language != entities.LanguageHausa {
		t.Errorf("Expected language ha, got %s", profile.Language)
	}

	if err := repo.Upsert(ctx, &entities.UserProfile{}); err == nil {
		t.Error("Expected error for profile without user ID")
	}
}
