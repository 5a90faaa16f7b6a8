package adapters

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/voicebridge/domain/entities"
	"github.com/satriahrh/voicebridge/domain/repositories"
)

// DefaultLessons is the starter catalog installed on an empty store
func DefaultLessons() []*entities.Lesson {
	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	lessons := []*entities.Lesson{
		{Title: "Preventing malaria", Category: "health", Language: entities.LanguageEnglish,
			Body: "Sleep under a treated mosquito net and clear standing water around your home."},
		{Title: "Safe drinking water", Category: "health", Language: entities.LanguageEnglish,
			Body: "Boil water for at least one minute or use purification tablets before drinking."},
		{Title: "Planting maize", Category: "agriculture", Language: entities.LanguageEnglish,
			Body: "Plant after the first steady rains and space rows about 75cm apart."},
		{Title: "Saving with a cooperative", Category: "finance", Language: entities.LanguageEnglish,
			Body: "Contribute a small fixed amount every week and keep a written record of deposits."},
		{Title: "Idena iba", Category: "health", Language: entities.LanguageYoruba,
			Body: "Sun labe apapo efon ki o si mu omi ti o duro kuro ni ayika ile re."},
		{Title: "Mmiri o nu nu di ocha", Category: "health", Language: entities.LanguageIgbo,
			Body: "Sie mmiri ruo otu nkeji tupu i nu ya."},
		{Title: "Rigakafin zazzabin cizon sauro", Category: "health", Language: entities.LanguageHausa,
			Body: "Ka kwana a cikin gidan sauro kuma ka kawar da ruwan da ke tsaye."},
		{Title: "Shuka masara", Category: "agriculture", Language: entities.LanguageHausa,
			Body: "Ka shuka bayan ruwan sama na farko ya tabbata."},
	}
	for i, lesson := range lessons {
		lesson.CreatedAt = base.Add(time.Duration(i) * time.Hour)
	}
	return lessons
}

// SeedLessons installs lessons when the catalog is empty and reports how many were written
func SeedLessons(ctx context.Context, repo repositories.LessonRepository, lessons []*entities.Lesson, logger *zap.Logger) (int, error) {
	_, total, err := repo.List(ctx, entities.LessonFilter{Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("failed to inspect lesson catalog: %w", err)
	}
	if total > 0 {
		logger.Info("Lesson catalog already populated", zap.Int("count", total))
		return 0, nil
	}

	for i, lesson := range lessons {
		if err := repo.Create(ctx, lesson); err != nil {
			return i, fmt.Errorf("failed to seed lesson %q: %w", lesson.Title, err)
		}
	}
	logger.Info("Seeded lesson catalog", zap.Int("count", len(lessons)))
	return len(lessons), nil
}
