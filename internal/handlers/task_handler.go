package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"crmmvp/internal/logging"
	"crmmvp/internal/models"
	"crmmvp/internal/pdf"
	"crmmvp/internal/services"
)

type TaskHandler struct {
	service   services.TaskService
	lifecycle services.TaskLifecycle
	users     services.UserService
	reports   pdf.Generator
}

func NewTaskHandler(
	service services.TaskService,
	lifecycle services.TaskLifecycle,
	users services.UserService,
	reports pdf.Generator,
) *TaskHandler {
	return &TaskHandler{service: service, lifecycle: lifecycle, users: users, reports: reports}
}

// ownListCaller checks that ?userId names the caller.
func ownListCaller(c *gin.Context, tag string) (string, bool) {
	uid, ok := callerID(c)
	if !ok {
		return "", false
	}
	if q := c.Query("userId"); q != uid {
		logging.Logger.WithFields(logrus.Fields{"user_id": uid, "requested": q}).Warn(tag + "[deny] user mismatch")
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden: user mismatch"})
		return "", false
	}
	return uid, true
}

// @Summary      List tasks visible to the caller
// @Description  Tasks the caller created, is assigned to, is the transfer target of, or collaborates on. Any listing option hides DELETED tasks.
// @Tags         Tasks
// @Produce      json
// @Param        userId      query  string  true   "Must equal the caller"
// @Param        type        query  string  false  "CALL|MEET|EMAIL|OFFER|PRESENTATION|ALL"
// @Param        priority    query  string  false  "LOW|MEDIUM|HIGH|ALL"
// @Param        client      query  string  false  "Client name substring"
// @Param        showClosed  query  bool    false  "Include CLOSED tasks"
// @Param        sort        query  string  false  "asc|desc"
// @Success      200  {array}   models.Task
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /task [get]
func (h *TaskHandler) List(c *gin.Context) {
	uid, ok := ownListCaller(c, "[task][list]")
	if !ok {
		return
	}
	settings, err := services.ParseTaskListSettings(c.Request.URL.Query())
	if err != nil {
		badRequest(c, "[task][list]", fmt.Errorf("invalid listing options: %w", err))
		return
	}
	tasks, err := h.service.ListVisible(c.Request.Context(), uid, settings)
	if err != nil {
		respondError(c, "[task][list]", err, "Failed to fetch tasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary      Create a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        task  body      models.TaskCreateRequest  true  "Task"
// @Success      201   {object}  models.Task
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /task [post]
func (h *TaskHandler) Create(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var req models.TaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[task][create]", err)
		return
	}
	task, err := h.service.Create(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, "[task][create]", err, "Failed to create task")
		return
	}
	logging.Logger.WithFields(logrus.Fields{"task_id": task.ID, "user_id": uid}).Info("[task][create][ok]")
	c.JSON(http.StatusCreated, task)
}

// @Summary      Get a task with its relations
// @Tags         Tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  models.Task
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /task/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	task, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "[task][getByID]", err, "Failed to fetch task")
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Partially update a task
// @Description  Applies only the fields present in the body. Emits no notification.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "Task ID"
// @Param        task  body      models.TaskUpdateRequest  true  "Fields to change"
// @Success      200   {object}  models.Task
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /task/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	var req models.TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[task][update]", err)
		return
	}
	task, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "[task][update]", err, "Failed to update task")
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Transfer a task to another user
// @Description  Sets the transfer fields (status UNDEFINED) and notifies the target. Re-initiating overwrites a pending transfer.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "Task ID"
// @Param        body  body      models.TransferRequest  true  "Transfer"
// @Success      200   {object}  models.LifecycleResult
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /task/{id}/transfer [post]
func (h *TaskHandler) Transfer(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var req models.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[task][transfer]", err)
		return
	}
	res, err := h.lifecycle.InitiateTransfer(c.Request.Context(), c.Param("id"), uid, req)
	if err != nil {
		respondError(c, "[task][transfer]", err, "Failed to transfer task")
		return
	}
	logging.Logger.WithFields(logrus.Fields{
		"task_id": c.Param("id"), "from": uid, "to": req.TransferToID, "delivered": res.NotificationDelivered,
	}).Info("[task][transfer][ok]")
	c.JSON(http.StatusOK, res)
}

// @Summary      Accept or reject a transfer
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string                         true  "Task ID"
// @Param        body  body      models.ResolveTransferRequest  true  "Decision"
// @Success      200   {object}  models.LifecycleResult
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /task/{id}/transfer/resolve [post]
func (h *TaskHandler) ResolveTransfer(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var req models.ResolveTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[task][resolve]", err)
		return
	}
	res, err := h.lifecycle.ResolveTransfer(c.Request.Context(), c.Param("id"), uid, req)
	if err != nil {
		respondError(c, "[task][resolve]", err, "Failed to resolve transfer")
		return
	}
	logging.Logger.WithFields(logrus.Fields{
		"task_id": c.Param("id"), "by": uid, "decision": req.Decision, "delivered": res.NotificationDelivered,
	}).Info("[task][resolve][ok]")
	c.JSON(http.StatusOK, res)
}

// @Summary      Change task status
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string                      true  "Task ID"
// @Param        body  body      models.StatusChangeRequest  true  "New status"
// @Success      200   {object}  models.LifecycleResult
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /task/{id}/status [post]
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	var req models.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[task][status]", err)
		return
	}
	res, err := h.lifecycle.ChangeStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "[task][status]", err, "Failed to change task status")
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Task report as PDF
// @Tags         Tasks
// @Produce      application/pdf
// @Param        userId  query  string  true  "Must equal the caller"
// @Success      200
// @Failure      403  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /task/report [get]
func (h *TaskHandler) Report(c *gin.Context) {
	uid, ok := ownListCaller(c, "[task][report]")
	if !ok {
		return
	}
	settings, err := services.ParseTaskListSettings(c.Request.URL.Query())
	if err != nil {
		badRequest(c, "[task][report]", fmt.Errorf("invalid listing options: %w", err))
		return
	}
	ctx := c.Request.Context()
	tasks, err := h.service.ListVisible(ctx, uid, settings)
	if err != nil {
		respondError(c, "[task][report]", err, "Failed to build report")
		return
	}
	user, err := h.users.GetByID(ctx, uid)
	if err != nil {
		respondError(c, "[task][report]", err, "Failed to build report")
		return
	}

	var buf bytes.Buffer
	now := time.Now()
	if err := h.reports.TaskReport(&buf, pdf.TaskReportData{UserName: user.Name, GeneratedAt: now, Tasks: tasks}); err != nil {
		respondError(c, "[task][report]", err, "Failed to build report")
		return
	}
	filename := fmt.Sprintf("tasks_%s.pdf", now.Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
