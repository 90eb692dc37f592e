// Package migration keeps the sqlite schema in step with the domain models.
package migration

import (
	"gorm.io/gorm"

	auditdomain "github.com/spitfire8790/landiqr/internal/audit/domain"
	matrixdomain "github.com/spitfire8790/landiqr/internal/matrix/domain"
)

// Run applies the schema for every persisted model.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&auditdomain.AuditLog{},
		&matrixdomain.Group{},
		&matrixdomain.Category{},
		&matrixdomain.Person{},
		&matrixdomain.Task{},
		&matrixdomain.Allocation{},
	)
}
