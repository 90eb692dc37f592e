package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	auditdomain "github.com/spitfire8790/landiqr/internal/audit/domain"
	"github.com/spitfire8790/landiqr/pkg/db/option"
	"github.com/spitfire8790/landiqr/pkg/repository"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	log     *zap.Logger
	genID   *snowflake.Node
	entries repository.Repository[auditdomain.AuditLog]
}

func NewService(p ServiceParam) auditdomain.Service {
	return &Service{
		log:     p.Log.Named("audit.service"),
		genID:   p.GenID,
		entries: repository.ProvideStore[auditdomain.AuditLog](p.DB),
	}
}

func (s *Service) Record(ctx context.Context, actor auditdomain.ActorType, action, targetType string, targetID *string, metadata map[string]any, ip string) error {
	entry := &auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		ActorType:  string(actor),
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   datatypes.JSONMap{},
		CreatedAt:  time.Now().UTC(),
	}
	if metadata != nil {
		entry.Metadata = datatypes.JSONMap(metadata)
	}
	if ip != "" {
		entry.IPAddress = &ip
	}
	return s.entries.Create(ctx, entry)
}

func (s *Service) List(ctx context.Context, filter auditdomain.ListFilter) ([]auditdomain.AuditLog, error) {
	query := &auditdomain.AuditLog{
		Action:     filter.Action,
		TargetType: filter.TargetType,
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	items, err := s.entries.Find(ctx, query,
		option.WithOrderBy("created_at DESC"),
		option.WithLimit(limit),
	)
	if err != nil {
		return nil, err
	}

	entries := make([]auditdomain.AuditLog, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		entries = append(entries, *item)
	}
	return entries, nil
}
