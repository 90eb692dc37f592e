package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	auditdomain "github.com/spitfire8790/landiqr/internal/audit/domain"
	"github.com/spitfire8790/landiqr/pkg/repository"
)

func setupAuditService(t *testing.T) auditdomain.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&auditdomain.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	return &Service{
		log:     zap.NewNop(),
		genID:   node,
		entries: repository.ProvideStore[auditdomain.AuditLog](db),
	}
}

func TestRecordAndList(t *testing.T) {
	svc := setupAuditService(t)
	ctx := context.Background()

	targetID := "42"
	if err := svc.Record(ctx, auditdomain.ActorTypeUser, "matrix.group.create", "group", &targetID, map[string]any{"name": "Delivery"}, "10.0.0.1"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := svc.Record(ctx, auditdomain.ActorTypeSystem, "analytics.refresh", "session", nil, nil, ""); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := svc.List(ctx, auditdomain.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestListFiltersByAction(t *testing.T) {
	svc := setupAuditService(t)
	ctx := context.Background()

	if err := svc.Record(ctx, auditdomain.ActorTypeUser, "matrix.group.create", "group", nil, nil, ""); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := svc.Record(ctx, auditdomain.ActorTypeUser, "matrix.group.delete", "group", nil, nil, ""); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := svc.List(ctx, auditdomain.ListFilter{Action: "matrix.group.delete"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != "matrix.group.delete" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestRecordKeepsMetadata(t *testing.T) {
	svc := setupAuditService(t)
	ctx := context.Background()

	if err := svc.Record(ctx, auditdomain.ActorTypeUser, "matrix.task.create", "task", nil, map[string]any{"name": "Monthly report"}, ""); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := svc.List(ctx, auditdomain.ListFilter{TargetType: "task"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Metadata["name"] != "Monthly report" {
		t.Fatalf("metadata not persisted: %+v", entries[0].Metadata)
	}
}
