package handler

import (
	"strconv"
	"time"

	"todo-api/internal/app"
	"todo-api/internal/model"
	"todo-api/internal/validation"
)

type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,bcrypt_len"`
	Name     *string `json:"name" validate:"omitnil,min=2"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateTodoRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=100"`
	Description *string  `json:"description" validate:"omitnil,max=500"`
	Completed   *bool    `json:"completed"`
	DueDate     *string  `json:"dueDate" validate:"omitnil,datetime=2006-01-02T15:04:05Z07:00"`
	Priority    *string  `json:"priority" validate:"omitnil,oneof=LOW NORMAL HIGH URGENT"`
	Tags        []string `json:"tags" validate:"omitempty,dive,required,max=191"`
}

// createNonNullable lists the create fields that accept omission but not null.
var createNonNullable = []string{"title", "completed", "priority"}

func (r CreateTodoRequest) input() app.CreateTodoInput {
	in := app.CreateTodoInput{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     parseDueDate(r.DueDate),
		Tags:        r.Tags,
	}
	if r.Completed != nil {
		in.Completed = *r.Completed
	}
	if r.Priority != nil {
		in.Priority = model.Priority(*r.Priority)
	}
	return in
}

type UpdateTodoRequest struct {
	Title       *string   `json:"title" validate:"omitnil,min=1,max=100"`
	Description *string   `json:"description" validate:"omitnil,max=500"`
	Completed   *bool     `json:"completed"`
	DueDate     *string   `json:"dueDate" validate:"omitnil,datetime=2006-01-02T15:04:05Z07:00"`
	Priority    *string   `json:"priority" validate:"omitnil,oneof=LOW NORMAL HIGH URGENT"`
	Tags        *[]string `json:"tags" validate:"omitnil,dive,required,max=191"`
}

// patch converts the request into a TodoPatch. presence tells an omitted
// description or dueDate apart from an explicit null; a null tags list is
// treated as omitted.
func (r UpdateTodoRequest) patch(presence validation.Presence) model.TodoPatch {
	p := model.TodoPatch{
		Title:     r.Title,
		Completed: r.Completed,
	}
	if presence.Has("description") {
		p.Description = model.Some(r.Description)
	}
	if presence.Has("dueDate") {
		p.DueDate = model.Some(parseDueDate(r.DueDate))
	}
	if r.Priority != nil {
		priority := model.Priority(*r.Priority)
		p.Priority = &priority
	}
	if r.Tags != nil {
		p.Tags = model.Some(*r.Tags)
	}
	return p
}

// TodoQuery pointers are nil only when the key is absent, so "?page=" is
// rejected rather than defaulted.
type TodoQuery struct {
	Page      *string `form:"page" validate:"omitnil,positive_int"`
	Limit     *string `form:"limit" validate:"omitnil,positive_int"`
	Completed string  `form:"completed"`
	Priority  string  `form:"priority" validate:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	Search    string  `form:"search"`
}

// input converts the query. Unrecognised completed values disable the
// filter instead of failing the request.
func (q TodoQuery) input() app.ListTodosInput {
	in := app.ListTodosInput{
		Page:     atoiOr(q.Page, 1),
		Limit:    atoiOr(q.Limit, 10),
		Priority: model.Priority(q.Priority),
		Search:   q.Search,
	}
	switch q.Completed {
	case "true":
		v := true
		in.Completed = &v
	case "false":
		v := false
		in.Completed = &v
	}
	return in
}

func atoiOr(s *string, fallback int) int {
	if s == nil {
		return fallback
	}
	n, err := strconv.Atoi(*s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// parseDueDate expects a value that already passed the datetime rule.
func parseDueDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
