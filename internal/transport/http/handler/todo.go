package handler

import (
	"github.com/gin-gonic/gin"

	"todo-api/internal/app"
	"todo-api/internal/transport/http/middleware"
	"todo-api/internal/transport/http/response"
	"todo-api/internal/validation"
)

type TodoHandler struct {
	todoService *app.TodoService
}

func NewTodoHandler(todoService *app.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

func (h *TodoHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var query TodoQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		_ = c.Error(err)
		return
	}
	if err := validation.Struct(query); err != nil {
		_ = c.Error(err)
		return
	}

	page, err := h.todoService.List(c.Request.Context(), userID, query.input())
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Page(c, page.Items, page.Meta)
}

func (h *TodoHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	todo, err := h.todoService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.OK(c, todo)
}

func (h *TodoHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateTodoRequest
	if err := decodeBody(c, &req, createNonNullable...); err != nil {
		_ = c.Error(err)
		return
	}

	todo, err := h.todoService.Create(c.Request.Context(), userID, req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Created(c, todo)
}

func (h *TodoHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateTodoRequest
	presence, err := decodeBodyWithPresence(c, &req, createNonNullable...)
	if err != nil {
		_ = c.Error(err)
		return
	}

	todo, err := h.todoService.Update(c.Request.Context(), userID, c.Param("id"), req.patch(presence))
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.OK(c, todo)
}

func (h *TodoHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.todoService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}

	response.Message(c, "Todo deleted successfully")
}

func currentUserID(c *gin.Context) (string, bool) {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(app.ErrAuthRequired)
		return "", false
	}
	return identity.ID, true
}
