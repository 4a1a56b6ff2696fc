package app

import (
	"context"
	"errors"
	"math"
	"time"

	"todo-api/internal/model"
	"todo-api/internal/repository"
)

type TodoService struct {
	todoRepo *repository.TodoRepository
}

type ListTodosInput struct {
	Page      int
	Limit     int
	Completed *bool
	Priority  model.Priority
	Search    string
}

type CreateTodoInput struct {
	Title       string
	Description *string
	Completed   bool
	DueDate     *time.Time
	Priority    model.Priority
	Tags        []string
}

type PageMeta struct {
	Total       int64 `json:"total"`
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

type TodoPage struct {
	Items []model.Todo
	Meta  PageMeta
}

func NewTodoService(todoRepo *repository.TodoRepository) *TodoService {
	return &TodoService{todoRepo: todoRepo}
}

func (s *TodoService) List(ctx context.Context, userID string, input ListTodosInput) (*TodoPage, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 10
	}

	items, total, err := s.todoRepo.List(ctx, userID, repository.TodoFilter{
		Completed: input.Completed,
		Priority:  input.Priority,
		Search:    input.Search,
	}, input.Page, input.Limit)
	if err != nil {
		return nil, err
	}

	return &TodoPage{Items: items, Meta: NewPageMeta(total, input.Page, input.Limit)}, nil
}

func NewPageMeta(total int64, page, limit int) PageMeta {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return PageMeta{
		Total:       total,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

func (s *TodoService) Get(ctx context.Context, userID, id string) (*model.Todo, error) {
	todo, err := s.todoRepo.GetByID(ctx, userID, id)
	return todo, notFoundAsTodo(err)
}

func (s *TodoService) Create(ctx context.Context, userID string, input CreateTodoInput) (*model.Todo, error) {
	priority := input.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}
	todo := &model.Todo{
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
		DueDate:     input.DueDate,
		Priority:    priority,
		UserID:      userID,
	}
	return s.todoRepo.Create(ctx, todo, input.Tags)
}

func (s *TodoService) Update(ctx context.Context, userID, id string, patch model.TodoPatch) (*model.Todo, error) {
	todo, err := s.todoRepo.Update(ctx, userID, id, patch)
	return todo, notFoundAsTodo(err)
}

func (s *TodoService) Delete(ctx context.Context, userID, id string) error {
	return notFoundAsTodo(s.todoRepo.Delete(ctx, userID, id))
}

func notFoundAsTodo(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTodoNotFound
	}
	return err
}
