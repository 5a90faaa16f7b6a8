package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/voicebridge/domain/entities"
)

func TestSeedLessons(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	repo := NewMemoryLessonRepository()

	n, err := SeedLessons(ctx, repo, DefaultLessons(), logger)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultLessons()), n)

	// a populated catalog is left alone
	n, err = SeedLessons(ctx, repo, DefaultLessons(), logger)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, total, err := repo.List(ctx, entities.LessonFilter{})
	require.NoError(t, err)
	assert.Equal(t, len(DefaultLessons()), total)
}

func TestDefaultLessonsCoverEveryLanguage(t *testing.T) {
	seen := map[entities.LanguageCode]bool{}
	for _, lesson := range DefaultLessons() {
		seen[lesson.Language] = true
		assert.NotEmpty(t, lesson.Title)
		assert.False(t, lesson.CreatedAt.IsZero())
	}
	for _, lang := range entities.SupportedLanguages() {
		assert.True(t, seen[lang], "missing lessons for %s", lang)
	}
}
