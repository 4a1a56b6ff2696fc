package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todo-api/internal/model"
)

// TodoFilter narrows a todo listing. Zero values mean "not filtered".
type TodoFilter struct {
	Completed *bool
	Priority  model.Priority
	Search    string
}

// TodoRepository scopes every query by owner: a todo that belongs to another
// user is indistinguishable from one that does not exist.
type TodoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// List returns one page of the user's todos, newest first, together with the
// number of rows matching the filter before pagination.
func (r *TodoRepository) List(ctx context.Context, userID string, filter TodoFilter, page, limit int) ([]model.Todo, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	scope := ownedBy(userID, filter)

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Todo{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count todos failed: %w", err)
	}

	todos := make([]model.Todo, 0, limit)
	err := r.db.WithContext(ctx).
		Scopes(scope).
		Preload("Tags", orderTags).
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&todos).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list todos failed: %w", err)
	}
	for i := range todos {
		ensureTags(&todos[i])
	}
	return todos, total, nil
}

func (r *TodoRepository) GetByID(ctx context.Context, userID, id string) (*model.Todo, error) {
	return getOwned(r.db.WithContext(ctx).Preload("Tags", orderTags), userID, id)
}

func (r *TodoRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Todo{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count user todos failed: %w", err)
	}
	return count, nil
}

// Create inserts the todo and attaches the named tags, creating missing ones.
func (r *TodoRepository) Create(ctx context.Context, todo *model.Todo, tagNames []string) (*model.Todo, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(todo).Error; err != nil {
			return fmt.Errorf("create todo failed: %w", translateError(err))
		}
		return attachTags(tx, todo, tagNames)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, todo.UserID, todo.ID)
}

// Update applies the patch to a todo owned by userID. When the patch carries
// tags the existing associations are dropped before the new ones are attached.
func (r *TodoRepository) Update(ctx context.Context, userID, id string, patch model.TodoPatch) (*model.Todo, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		todo, err := getOwned(tx, userID, id)
		if err != nil {
			return err
		}

		if cols := patch.Columns(); len(cols) > 0 {
			if err := tx.Model(todo).Omit(clause.Associations).Updates(cols).Error; err != nil {
				return fmt.Errorf("update todo failed: %w", translateError(err))
			}
		}

		if patch.Tags.Set {
			if err := tx.Model(todo).Association("Tags").Clear(); err != nil {
				return fmt.Errorf("clear todo tags failed: %w", err)
			}
			return attachTags(tx, todo, patch.Tags.Value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, userID, id)
}

// Delete removes a todo owned by userID. Shared tags are kept.
func (r *TodoRepository) Delete(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		todo, err := getOwned(tx, userID, id)
		if err != nil {
			return err
		}
		if err := tx.Model(todo).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("detach todo tags failed: %w", err)
		}
		if err := tx.Delete(todo).Error; err != nil {
			return fmt.Errorf("delete todo failed: %w", translateError(err))
		}
		return nil
	})
}

func getOwned(db *gorm.DB, userID, id string) (*model.Todo, error) {
	var todo model.Todo
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&todo).Error; err != nil {
		err = translateError(err)
		if err == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get todo failed: %w", err)
	}
	ensureTags(&todo)
	return &todo, nil
}

func attachTags(tx *gorm.DB, todo *model.Todo, names []string) error {
	if len(names) == 0 {
		return nil
	}
	tags, err := upsertTags(tx, names)
	if err != nil {
		return err
	}
	if err := tx.Model(todo).Association("Tags").Append(tags); err != nil {
		return fmt.Errorf("attach todo tags failed: %w", err)
	}
	return nil
}

func ownedBy(userID string, filter TodoFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ?", userID)
		if filter.Completed != nil {
			db = db.Where("completed = ?", *filter.Completed)
		}
		if filter.Priority != "" {
			db = db.Where("priority = ?", string(filter.Priority))
		}
		if filter.Search != "" {
			pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
			db = db.Where("(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')", pattern, pattern)
		}
		return db
	}
}

func orderTags(db *gorm.DB) *gorm.DB {
	return db.Order("name ASC")
}

// escapeLike makes LIKE wildcards in user input match literally. '!' is used
// as the escape character because backslash handling differs per dialect.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

func ensureTags(todo *model.Todo) {
	if todo.Tags == nil {
		todo.Tags = []model.Tag{}
	}
}
