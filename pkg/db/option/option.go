// Package option carries composable query modifiers for the generic store.
package option

import "gorm.io/gorm"

// Option mutates a gorm query before execution.
type Option func(*gorm.DB) *gorm.DB

// WithOrderBy appends an ORDER BY expression.
func WithOrderBy(expr string) Option {
	return func(query *gorm.DB) *gorm.DB {
		return query.Order(expr)
	}
}

// WithLimit caps the result set size.
func WithLimit(limit int) Option {
	return func(query *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return query
		}
		return query.Limit(limit)
	}
}
