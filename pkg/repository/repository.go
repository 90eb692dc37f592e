// Package repository provides a minimal generic store over gorm models.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/spitfire8790/landiqr/pkg/db/option"
)

// Repository is the persistence surface shared by all domain services.
type Repository[T any] interface {
	Create(ctx context.Context, record *T) error
	Find(ctx context.Context, filter *T, opts ...option.Option) ([]*T, error)
	FindOne(ctx context.Context, filter *T) (*T, error)
	Save(ctx context.Context, record *T) error
	Delete(ctx context.Context, filter *T) error
}

type store[T any] struct {
	db *gorm.DB
}

// ProvideStore builds a Repository bound to the given connection.
func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (s *store[T]) Create(ctx context.Context, record *T) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *store[T]) Find(ctx context.Context, filter *T, opts ...option.Option) ([]*T, error) {
	query := s.db.WithContext(ctx)
	if filter != nil {
		query = query.Where(filter)
	}
	for _, opt := range opts {
		query = opt(query)
	}

	var records []*T
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *store[T]) FindOne(ctx context.Context, filter *T) (*T, error) {
	var record T
	err := s.db.WithContext(ctx).Where(filter).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (s *store[T]) Save(ctx context.Context, record *T) error {
	return s.db.WithContext(ctx).Save(record).Error
}

func (s *store[T]) Delete(ctx context.Context, filter *T) error {
	return s.db.WithContext(ctx).Where(filter).Delete(new(T)).Error
}
