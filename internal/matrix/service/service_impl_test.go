package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	matrixdomain "github.com/spitfire8790/landiqr/internal/matrix/domain"
	"github.com/spitfire8790/landiqr/pkg/repository"
)

func setupMatrixService(t *testing.T) matrixdomain.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&matrixdomain.Group{},
		&matrixdomain.Category{},
		&matrixdomain.Person{},
		&matrixdomain.Task{},
		&matrixdomain.Allocation{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	return &Service{
		log:         zap.NewNop(),
		genID:       node,
		groups:      repository.ProvideStore[matrixdomain.Group](db),
		categories:  repository.ProvideStore[matrixdomain.Category](db),
		people:      repository.ProvideStore[matrixdomain.Person](db),
		tasks:       repository.ProvideStore[matrixdomain.Task](db),
		allocations: repository.ProvideStore[matrixdomain.Allocation](db),
	}
}

func TestCreateGroupValidatesName(t *testing.T) {
	svc := setupMatrixService(t)

	if _, err := svc.CreateGroup(context.Background(), "   "); !errors.Is(err, matrixdomain.ErrInvalidName) {
		t.Fatalf("expected invalid name, got %v", err)
	}

	group, err := svc.CreateGroup(context.Background(), "  Governance  ")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if group.Name != "Governance" {
		t.Fatalf("expected trimmed name, got %q", group.Name)
	}
	if group.ID == 0 {
		t.Fatalf("expected generated id")
	}
}

func TestCreateCategoryRequiresGroup(t *testing.T) {
	svc := setupMatrixService(t)

	if _, err := svc.CreateCategory(context.Background(), 999, "Reporting", ""); !errors.Is(err, matrixdomain.ErrInvalidGroup) {
		t.Fatalf("expected invalid group, got %v", err)
	}

	group, err := svc.CreateGroup(context.Background(), "Delivery")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	category, err := svc.CreateCategory(context.Background(), group.ID, "Reporting", "https://example.org/source")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if category.GroupID != group.ID {
		t.Fatalf("expected category bound to group")
	}
}

func TestCreatePersonValidatesEmail(t *testing.T) {
	svc := setupMatrixService(t)

	if _, err := svc.CreatePerson(context.Background(), "Jane", "not-an-email", "", ""); !errors.Is(err, matrixdomain.ErrInvalidEmail) {
		t.Fatalf("expected invalid email, got %v", err)
	}

	person, err := svc.CreatePerson(context.Background(), "Jane", " JANE@Example.Org ", "Example Org", "Planner")
	if err != nil {
		t.Fatalf("create person: %v", err)
	}
	if person.Email != "jane@example.org" {
		t.Fatalf("expected normalised email, got %q", person.Email)
	}
}

func TestAllocateRejectsDuplicates(t *testing.T) {
	svc := setupMatrixService(t)
	ctx := context.Background()

	group, _ := svc.CreateGroup(ctx, "Delivery")
	category, _ := svc.CreateCategory(ctx, group.ID, "Reporting", "")
	task, err := svc.CreateTask(ctx, category.ID, "Monthly report", "", map[string]any{"cadence": "monthly"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	person, _ := svc.CreatePerson(ctx, "Jane", "jane@example.org", "", "")

	if _, err := svc.Allocate(ctx, task.ID, person.ID, true); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if _, err := svc.Allocate(ctx, task.ID, person.ID, false); !errors.Is(err, matrixdomain.ErrDuplicateAllocation) {
		t.Fatalf("expected duplicate allocation, got %v", err)
	}
}

func TestBoardAssemblesNestedStructure(t *testing.T) {
	svc := setupMatrixService(t)
	ctx := context.Background()

	group, _ := svc.CreateGroup(ctx, "Delivery")
	category, _ := svc.CreateCategory(ctx, group.ID, "Reporting", "")
	task, _ := svc.CreateTask(ctx, category.ID, "Monthly report", "", nil)
	lead, _ := svc.CreatePerson(ctx, "Jane", "jane@example.org", "", "")
	helper, _ := svc.CreatePerson(ctx, "Sam", "sam@example.org", "", "")

	if _, err := svc.Allocate(ctx, task.ID, lead.ID, true); err != nil {
		t.Fatalf("allocate lead: %v", err)
	}
	if _, err := svc.Allocate(ctx, task.ID, helper.ID, false); err != nil {
		t.Fatalf("allocate helper: %v", err)
	}

	board, err := svc.Board(ctx)
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if len(board.Groups) != 1 || len(board.Categories) != 1 || len(board.People) != 2 {
		t.Fatalf("unexpected board shape %+v", board)
	}
	cell := board.Categories[0].Cells[0]
	if len(cell.People) != 2 {
		t.Fatalf("expected 2 allocated people, got %d", len(cell.People))
	}
	if cell.LeadID != lead.ID.String() {
		t.Fatalf("expected lead %s, got %s", lead.ID, cell.LeadID)
	}
}

func TestDeleteGroupCascades(t *testing.T) {
	svc := setupMatrixService(t)
	ctx := context.Background()

	group, _ := svc.CreateGroup(ctx, "Delivery")
	category, _ := svc.CreateCategory(ctx, group.ID, "Reporting", "")
	task, _ := svc.CreateTask(ctx, category.ID, "Monthly report", "", nil)
	person, _ := svc.CreatePerson(ctx, "Jane", "jane@example.org", "", "")
	if _, err := svc.Allocate(ctx, task.ID, person.ID, false); err != nil {
		t.Fatalf("allocate: %v", err)
	}

	if err := svc.DeleteGroup(ctx, group.ID); err != nil {
		t.Fatalf("delete group: %v", err)
	}

	categories, err := svc.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(categories) != 0 {
		t.Fatalf("expected categories removed, got %d", len(categories))
	}
	tasks, err := svc.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected tasks removed, got %d", len(tasks))
	}

	// People survive group deletion, only their allocations go.
	people, err := svc.ListPeople(ctx)
	if err != nil {
		t.Fatalf("list people: %v", err)
	}
	if len(people) != 1 {
		t.Fatalf("expected person to remain, got %d", len(people))
	}
}

func TestDeallocateMissingAllocation(t *testing.T) {
	svc := setupMatrixService(t)

	if err := svc.Deallocate(context.Background(), 1, 2); !errors.Is(err, matrixdomain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
