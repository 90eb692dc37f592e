// Package domain contains persistence models for the responsibility
// matrix: who (people in groups) owns what (tasks in categories).
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Group is a column grouping of people on the matrix board.
type Group struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Group) TableName() string { return "groups" }

// Category is a row grouping of tasks on the matrix board.
type Category struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	GroupID    snowflake.ID `gorm:"not null;index" json:"group_id"`
	Name       string       `gorm:"type:text;not null" json:"name"`
	SourceLink string       `gorm:"type:text" json:"source_link,omitempty"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Category) TableName() string { return "categories" }

// Person is a team member who can hold task responsibilities.
type Person struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	Email        string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Organisation string       `gorm:"type:text" json:"organisation,omitempty"`
	Role         string       `gorm:"type:text" json:"role,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Person) TableName() string { return "people" }

// Task is one unit of work within a category.
type Task struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	CategoryID  snowflake.ID      `gorm:"not null;index" json:"category_id"`
	Name        string            `gorm:"type:text;not null" json:"name"`
	Description string            `gorm:"type:text" json:"description,omitempty"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Task) TableName() string { return "tasks" }

// Allocation assigns a person to a task, optionally as lead.
type Allocation struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	TaskID    snowflake.ID `gorm:"not null;index:idx_alloc_task_person,unique" json:"task_id"`
	PersonID  snowflake.ID `gorm:"not null;index:idx_alloc_task_person,unique" json:"person_id"`
	IsLead    bool         `gorm:"not null;default:false" json:"is_lead"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Allocation) TableName() string { return "allocations" }

// MatrixCell is one task with its allocated people, for board rendering.
type MatrixCell struct {
	Task   Task     `json:"task"`
	People []Person `json:"people"`
	LeadID string   `json:"lead_id,omitempty"`
}

// MatrixCategory nests a category's cells.
type MatrixCategory struct {
	Category Category     `json:"category"`
	Cells    []MatrixCell `json:"cells"`
}

// MatrixBoard is the full nested board.
type MatrixBoard struct {
	Groups     []Group          `json:"groups"`
	Categories []MatrixCategory `json:"categories"`
	People     []Person         `json:"people"`
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidGroup        = errors.New("invalid_group")
	ErrInvalidCategory     = errors.New("invalid_category")
	ErrNotFound            = errors.New("not_found")
	ErrDuplicateAllocation = errors.New("duplicate_allocation")
)

// Service exposes matrix operations to the HTTP layer.
type Service interface {
	CreateGroup(ctx context.Context, name string) (*Group, error)
	ListGroups(ctx context.Context) ([]Group, error)
	RenameGroup(ctx context.Context, id snowflake.ID, name string) (*Group, error)
	DeleteGroup(ctx context.Context, id snowflake.ID) error

	CreateCategory(ctx context.Context, groupID snowflake.ID, name, sourceLink string) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	DeleteCategory(ctx context.Context, id snowflake.ID) error

	CreatePerson(ctx context.Context, name, email, organisation, role string) (*Person, error)
	ListPeople(ctx context.Context) ([]Person, error)
	DeletePerson(ctx context.Context, id snowflake.ID) error

	CreateTask(ctx context.Context, categoryID snowflake.ID, name, description string, metadata map[string]any) (*Task, error)
	ListTasks(ctx context.Context) ([]Task, error)
	DeleteTask(ctx context.Context, id snowflake.ID) error

	Allocate(ctx context.Context, taskID, personID snowflake.ID, isLead bool) (*Allocation, error)
	Deallocate(ctx context.Context, taskID, personID snowflake.ID) error

	Board(ctx context.Context) (*MatrixBoard, error)
}
