package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todo-api/internal/model"
)

// upsertTags resolves each name to its shared tag row, inserting rows that do
// not exist yet. The insert ignores unique conflicts and the row is always
// re-read, so two writers racing on the same name end up with one row.
func upsertTags(tx *gorm.DB, names []string) ([]model.Tag, error) {
	names = uniqueNames(names)
	tags := make([]model.Tag, 0, len(names))
	for _, name := range names {
		candidate := model.Tag{Name: name}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&candidate).Error
		if err != nil {
			return nil, fmt.Errorf("upsert tag %q failed: %w", name, translateError(err))
		}

		var stored model.Tag
		if err := tx.Where("name = ?", name).First(&stored).Error; err != nil {
			return nil, fmt.Errorf("load tag %q failed: %w", name, translateError(err))
		}
		tags = append(tags, stored)
	}
	return tags, nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
