package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	matrixdomain "github.com/spitfire8790/landiqr/internal/matrix/domain"
)

// Default board layout created on first startup so the matrix endpoints
// return something usable before any manual setup.
var defaultGroups = map[string][]string{
	"Platform":   {"Data Pipeline", "Reporting"},
	"Engagement": {"Onboarding", "Training"},
	"Governance": {"Licensing", "Access Reviews"},
}

// EnsureDefaultBoard seeds the default groups and categories when the
// tables are empty. Existing rows are never touched.
func EnsureDefaultBoard(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&matrixdomain.Group{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		for name, categories := range defaultGroups {
			group := matrixdomain.Group{
				ID:        node.Generate(),
				Name:      name,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Create(&group).Error; err != nil {
				return err
			}
			for _, categoryName := range categories {
				category := matrixdomain.Category{
					ID:        node.Generate(),
					GroupID:   group.ID,
					Name:      categoryName,
					CreatedAt: now,
					UpdatedAt: now,
				}
				if err := tx.Create(&category).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
