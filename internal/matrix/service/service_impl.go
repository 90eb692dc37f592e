package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	matrixdomain "github.com/spitfire8790/landiqr/internal/matrix/domain"
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
	log   *zap.Logger
	genID *snowflake.Node

	groups      repository.Repository[matrixdomain.Group]
	categories  repository.Repository[matrixdomain.Category]
	people      repository.Repository[matrixdomain.Person]
	tasks       repository.Repository[matrixdomain.Task]
	allocations repository.Repository[matrixdomain.Allocation]
}

func NewService(p ServiceParam) matrixdomain.Service {
	return &Service{
		log:   p.Log.Named("matrix.service"),
		genID: p.GenID,

		groups:      repository.ProvideStore[matrixdomain.Group](p.DB),
		categories:  repository.ProvideStore[matrixdomain.Category](p.DB),
		people:      repository.ProvideStore[matrixdomain.Person](p.DB),
		tasks:       repository.ProvideStore[matrixdomain.Task](p.DB),
		allocations: repository.ProvideStore[matrixdomain.Allocation](p.DB),
	}
}

func (s *Service) CreateGroup(ctx context.Context, name string) (*matrixdomain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, matrixdomain.ErrInvalidName
	}

	now := time.Now().UTC()
	group := &matrixdomain.Group{
		ID:        s.genID.Generate(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *Service) ListGroups(ctx context.Context) ([]matrixdomain.Group, error) {
	items, err := s.groups.Find(ctx, nil, option.WithOrderBy("created_at ASC"))
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) RenameGroup(ctx context.Context, id snowflake.ID, name string) (*matrixdomain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, matrixdomain.ErrInvalidName
	}

	group, err := s.groups.FindOne(ctx, &matrixdomain.Group{ID: id})
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, matrixdomain.ErrNotFound
	}

	group.Name = name
	group.UpdatedAt = time.Now().UTC()
	if err := s.groups.Save(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// DeleteGroup removes a group and cascades through its categories and tasks.
func (s *Service) DeleteGroup(ctx context.Context, id snowflake.ID) error {
	group, err := s.groups.FindOne(ctx, &matrixdomain.Group{ID: id})
	if err != nil {
		return err
	}
	if group == nil {
		return matrixdomain.ErrNotFound
	}

	categories, err := s.categories.Find(ctx, &matrixdomain.Category{GroupID: id})
	if err != nil {
		return err
	}
	for _, category := range categories {
		if err := s.DeleteCategory(ctx, category.ID); err != nil {
			return err
		}
	}
	return s.groups.Delete(ctx, &matrixdomain.Group{ID: id})
}

func (s *Service) CreateCategory(ctx context.Context, groupID snowflake.ID, name, sourceLink string) (*matrixdomain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, matrixdomain.ErrInvalidName
	}

	group, err := s.groups.FindOne(ctx, &matrixdomain.Group{ID: groupID})
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, matrixdomain.ErrInvalidGroup
	}

	now := time.Now().UTC()
	category := &matrixdomain.Category{
		ID:         s.genID.Generate(),
		GroupID:    groupID,
		Name:       name,
		SourceLink: strings.TrimSpace(sourceLink),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]matrixdomain.Category, error) {
	items, err := s.categories.Find(ctx, nil, option.WithOrderBy("created_at ASC"))
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

// DeleteCategory removes a category together with its tasks and their allocations.
func (s *Service) DeleteCategory(ctx context.Context, id snowflake.ID) error {
	category, err := s.categories.FindOne(ctx, &matrixdomain.Category{ID: id})
	if err != nil {
		return err
	}
	if category == nil {
		return matrixdomain.ErrNotFound
	}

	tasks, err := s.tasks.Find(ctx, &matrixdomain.Task{CategoryID: id})
	if err != nil {
		return err
	}
	for _, task := range tasks {
		if err := s.DeleteTask(ctx, task.ID); err != nil {
			return err
		}
	}
	return s.categories.Delete(ctx, &matrixdomain.Category{ID: id})
}

func (s *Service) CreatePerson(ctx context.Context, name, email, organisation, role string) (*matrixdomain.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, matrixdomain.ErrInvalidName
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, matrixdomain.ErrInvalidEmail
	}

	now := time.Now().UTC()
	person := &matrixdomain.Person{
		ID:           s.genID.Generate(),
		Name:         name,
		Email:        email,
		Organisation: strings.TrimSpace(organisation),
		Role:         strings.TrimSpace(role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.people.Create(ctx, person); err != nil {
		return nil, err
	}
	return person, nil
}

func (s *Service) ListPeople(ctx context.Context) ([]matrixdomain.Person, error) {
	items, err := s.people.Find(ctx, nil, option.WithOrderBy("name ASC"))
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) DeletePerson(ctx context.Context, id snowflake.ID) error {
	person, err := s.people.FindOne(ctx, &matrixdomain.Person{ID: id})
	if err != nil {
		return err
	}
	if person == nil {
		return matrixdomain.ErrNotFound
	}
	if err := s.allocations.Delete(ctx, &matrixdomain.Allocation{PersonID: id}); err != nil {
		return err
	}
	return s.people.Delete(ctx, &matrixdomain.Person{ID: id})
}

func (s *Service) CreateTask(ctx context.Context, categoryID snowflake.ID, name, description string, metadata map[string]any) (*matrixdomain.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, matrixdomain.ErrInvalidName
	}

	category, err := s.categories.FindOne(ctx, &matrixdomain.Category{ID: categoryID})
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, matrixdomain.ErrInvalidCategory
	}

	now := time.Now().UTC()
	task := &matrixdomain.Task{
		ID:          s.genID.Generate(),
		CategoryID:  categoryID,
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if metadata != nil {
		task.Metadata = datatypes.JSONMap(metadata)
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) ListTasks(ctx context.Context) ([]matrixdomain.Task, error) {
	items, err := s.tasks.Find(ctx, nil, option.WithOrderBy("created_at ASC"))
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) DeleteTask(ctx context.Context, id snowflake.ID) error {
	task, err := s.tasks.FindOne(ctx, &matrixdomain.Task{ID: id})
	if err != nil {
		return err
	}
	if task == nil {
		return matrixdomain.ErrNotFound
	}
	if err := s.allocations.Delete(ctx, &matrixdomain.Allocation{TaskID: id}); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, &matrixdomain.Task{ID: id})
}

func (s *Service) Allocate(ctx context.Context, taskID, personID snowflake.ID, isLead bool) (*matrixdomain.Allocation, error) {
	task, err := s.tasks.FindOne(ctx, &matrixdomain.Task{ID: taskID})
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, matrixdomain.ErrNotFound
	}

	person, err := s.people.FindOne(ctx, &matrixdomain.Person{ID: personID})
	if err != nil {
		return nil, err
	}
	if person == nil {
		return nil, matrixdomain.ErrNotFound
	}

	existing, err := s.allocations.FindOne(ctx, &matrixdomain.Allocation{TaskID: taskID, PersonID: personID})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, matrixdomain.ErrDuplicateAllocation
	}

	allocation := &matrixdomain.Allocation{
		ID:        s.genID.Generate(),
		TaskID:    taskID,
		PersonID:  personID,
		IsLead:    isLead,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.allocations.Create(ctx, allocation); err != nil {
		return nil, err
	}
	return allocation, nil
}

func (s *Service) Deallocate(ctx context.Context, taskID, personID snowflake.ID) error {
	existing, err := s.allocations.FindOne(ctx, &matrixdomain.Allocation{TaskID: taskID, PersonID: personID})
	if err != nil {
		return err
	}
	if existing == nil {
		return matrixdomain.ErrNotFound
	}
	return s.allocations.Delete(ctx, &matrixdomain.Allocation{TaskID: taskID, PersonID: personID})
}

// Board assembles the full nested matrix in one pass over the tables.
func (s *Service) Board(ctx context.Context) (*matrixdomain.MatrixBoard, error) {
	groups, err := s.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	people, err := s.ListPeople(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	allocations, err := s.allocations.Find(ctx, nil, option.WithOrderBy("created_at ASC"))
	if err != nil {
		return nil, err
	}

	peopleByID := make(map[snowflake.ID]matrixdomain.Person, len(people))
	for _, person := range people {
		peopleByID[person.ID] = person
	}

	allocationsByTask := make(map[snowflake.ID][]*matrixdomain.Allocation)
	for _, allocation := range allocations {
		allocationsByTask[allocation.TaskID] = append(allocationsByTask[allocation.TaskID], allocation)
	}

	tasksByCategory := make(map[snowflake.ID][]matrixdomain.Task)
	for _, task := range tasks {
		tasksByCategory[task.CategoryID] = append(tasksByCategory[task.CategoryID], task)
	}

	board := &matrixdomain.MatrixBoard{
		Groups: groups,
		People: people,
	}
	for _, category := range categories {
		entry := matrixdomain.MatrixCategory{Category: category}
		for _, task := range tasksByCategory[category.ID] {
			cell := matrixdomain.MatrixCell{Task: task}
			for _, allocation := range allocationsByTask[task.ID] {
				person, ok := peopleByID[allocation.PersonID]
				if !ok {
					continue
				}
				cell.People = append(cell.People, person)
				if allocation.IsLead {
					cell.LeadID = person.ID.String()
				}
			}
			entry.Cells = append(entry.Cells, cell)
		}
		board.Categories = append(board.Categories, entry)
	}
	return board, nil
}

func deref[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, *item)
	}
	return out
}
