package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecaro09/tasko-sub000/internal/marketplace"
)

// TaskHandler exposes the task lifecycle commands.
type TaskHandler struct {
	tasks   *marketplace.TaskService
	ratings *marketplace.RatingAggregator
}

func NewTaskHandler(tasks *marketplace.TaskService, ratings *marketplace.RatingAggregator) *TaskHandler {
	return &TaskHandler{tasks: tasks, ratings: ratings}
}

// Create posts a new task for the authenticated client.
func (h *TaskHandler) Create(c echo.Context) error {
	clientID, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var in marketplace.CreateTaskInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	task, err := h.tasks.CreateTask(c.Request().Context(), clientID, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

// Get returns a single task.
func (h *TaskHandler) Get(c echo.Context) error {
	task, err := h.tasks.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

// ListMine returns the authenticated client's tasks.
func (h *TaskHandler) ListMine(c echo.Context) error {
	clientID, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tasks, err := h.tasks.ListClientTasks(c.Request().Context(), clientID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": tasks})
}

// Start moves an assigned task to in_progress (assigned tasker only).
func (h *TaskHandler) Start(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	task, err := h.tasks.MarkInProgress(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

// Complete finishes an in_progress task with the client's review.
func (h *TaskHandler) Complete(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	taskID := c.Param("id")
	if err := h.tasks.CompleteWithReview(c.Request().Context(), taskID, req.Rating, req.Comment, actor); err != nil {
		return fail(c, err)
	}
	task, err := h.tasks.GetTask(c.Request().Context(), taskID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

// Cancel cancels a task and cascades to its open offers.
func (h *TaskHandler) Cancel(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	task, err := h.tasks.CancelTask(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

// Rating returns a tasker's review aggregate.
func (h *TaskHandler) Rating(c echo.Context) error {
	agg, err := h.ratings.GetRating(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, agg)
}
