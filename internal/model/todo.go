package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

type Todo struct {
	ID          string     `gorm:"type:char(36);primaryKey" json:"id"`
	Title       string     `gorm:"size:100;not null" json:"title"`
	Description *string    `gorm:"size:500" json:"description"`
	Completed   bool       `gorm:"not null;index" json:"completed"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    Priority   `gorm:"size:16;not null;index" json:"priority"`
	UserID      string     `gorm:"type:char(36);not null;index" json:"userId"`
	Tags        []Tag      `gorm:"many2many:todo_tags;constraint:OnDelete:CASCADE" json:"tags"`
	CreatedAt   time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (t *Todo) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Priority == "" {
		t.Priority = PriorityNormal
	}
	return nil
}

// Optional distinguishes a field that was left out of a request from one
// that was explicitly set, including set to null.
type Optional[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// TodoPatch carries a partial update. Nil pointers and unset optionals leave
// the stored value untouched. Tags, when set, replace every association.
type TodoPatch struct {
	Title       *string
	Description Optional[*string]
	Completed   *bool
	DueDate     Optional[*time.Time]
	Priority    *Priority
	Tags        Optional[[]string]
}

// Columns returns the column assignments for the scalar part of the patch.
func (p TodoPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description.Set {
		if p.Description.Value == nil {
			cols["description"] = nil
		} else {
			cols["description"] = *p.Description.Value
		}
	}
	if p.Completed != nil {
		cols["completed"] = *p.Completed
	}
	if p.DueDate.Set {
		if p.DueDate.Value == nil {
			cols["due_date"] = nil
		} else {
			cols["due_date"] = *p.DueDate.Value
		}
	}
	if p.Priority != nil {
		cols["priority"] = string(*p.Priority)
	}
	return cols
}
