package handlers

import (
	"net/http"
	"time"

	"github.com/collabdeck-dev/collabdeck/db"
	"github.com/collabdeck-dev/collabdeck/internal/logging"
	"github.com/collabdeck-dev/collabdeck/internal/models"
	"github.com/collabdeck-dev/collabdeck/internal/types"
	"github.com/collabdeck-dev/collabdeck/internal/utils"
	"github.com/gin-gonic/gin"
)

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	MilestoneID *uint      `json:"milestone_id"`
	AssigneeID  *uint      `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status" binding:"omitempty,oneof=todo in_progress done"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	MilestoneID *uint      `json:"milestone_id"`
	AssigneeID  *uint      `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
}

type TaskResponse struct {
	ID          uint       `json:"id"`
	ProjectID   uint       `json:"project_id"`
	MilestoneID *uint      `json:"milestone_id"`
	AssigneeID  *uint      `json:"assignee_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Overdue     bool       `json:"overdue"`
	DueDate     *time.Time `json:"due_date"`
}

func taskResponse(t models.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		MilestoneID: t.MilestoneID,
		AssigneeID:  t.AssigneeID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Overdue:     t.Overdue,
		DueDate:     t.DueDate,
	}
}

// validateTaskRefs checks that the milestone belongs to the project and the
// assignee is a member.
func validateTaskRefs(projectID uint, milestoneID, assigneeID *uint) (string, bool) {
	if milestoneID != nil {
		var milestone models.Milestone
		if err := db.DB.Where("id = ? AND project_id = ?", *milestoneID, projectID).First(&milestone).Error; err != nil {
			return "Milestone does not belong to this project", false
		}
	}

	if assigneeID != nil {
		if _, err := getMembership(projectID, *assigneeID); err != nil {
			return "Assignee must be a project member", false
		}
	}

	return "", true
}

func CreateTask(ctx *gin.Context) {
	projectID, _, ok := requireMember(ctx)

	if !ok {
		return
	}

	var body CreateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if msg, ok := validateTaskRefs(projectID, body.MilestoneID, body.AssigneeID); !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	priority := body.Priority
	if priority == "" {
		priority = "medium"
	}

	task := models.Task{
		ProjectID:   projectID,
		MilestoneID: body.MilestoneID,
		AssigneeID:  body.AssigneeID,
		Title:       body.Title,
		Description: body.Description,
		Status:      types.TaskTodo,
		Priority:    priority,
		DueDate:     body.DueDate,
	}

	if err := db.DB.Create(&task).Error; err != nil {
		logging.Logger.Errorf("Failed to create task in project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	ctx.JSON(http.StatusCreated, taskResponse(task))
}

func ListTasks(ctx *gin.Context) {
	projectID, _, ok := requireMember(ctx)

	if !ok {
		return
	}

	query := db.DB.Where("project_id = ?", projectID)

	if status := ctx.Query("status"); status != "" {
		if !types.ValidTaskStatus(status) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		query = query.Where("status = ?", status)
	}

	if priority := ctx.Query("priority"); priority != "" {
		if !types.ValidTaskPriority(priority) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority filter"})
			return
		}
		query = query.Where("priority = ?", priority)
	}

	if m := ctx.Query("milestone_id"); m != "" {
		query = query.Where("milestone_id = ?", m)
	}

	if a := ctx.Query("assignee_id"); a != "" {
		query = query.Where("assignee_id = ?", a)
	}

	var tasks []models.Task

	if err := query.Order("created_at ASC").Find(&tasks).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	response := make([]TaskResponse, 0, len(tasks))

	for _, t := range tasks {
		response = append(response, taskResponse(t))
	}

	ctx.JSON(http.StatusOK, response)
}

func UpdateTask(ctx *gin.Context) {
	projectID, membership, ok := requireMember(ctx)

	if !ok {
		return
	}

	taskID, err := utils.GetIDParam(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body UpdateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var task models.Task

	if err := db.DB.Where("id = ? AND project_id = ?", taskID, projectID).First(&task).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	// Plain members may only move their own tasks across statuses;
	// structural edits need the owner or a mentor.
	canEdit := membership.Role == types.RoleOwner || membership.Role == types.RoleMentor
	isAssignee := task.AssigneeID != nil && *task.AssigneeID == membership.UserID

	if !canEdit {
		structural := body.Title != "" || body.Description != nil || body.Priority != "" ||
			body.MilestoneID != nil || body.AssigneeID != nil || body.DueDate != nil

		if structural {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner or a mentor may edit task details"})
			return
		}

		if body.Status != "" && !isAssignee {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the assignee may change task status"})
			return
		}
	}

	if msg, ok := validateTaskRefs(projectID, body.MilestoneID, body.AssigneeID); !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	if body.Title != "" {
		task.Title = body.Title
	}

	if body.Description != nil {
		task.Description = *body.Description
	}

	if body.Status != "" {
		task.Status = body.Status

		if body.Status == types.TaskDone {
			task.Overdue = false
		}
	}

	if body.Priority != "" {
		task.Priority = body.Priority
	}

	if body.MilestoneID != nil {
		task.MilestoneID = body.MilestoneID
	}

	if body.AssigneeID != nil {
		task.AssigneeID = body.AssigneeID
	}

	if body.DueDate != nil {
		task.DueDate = body.DueDate
	}

	if err := db.DB.Save(&task).Error; err != nil {
		logging.Logger.Errorf("Failed to update task %d: %v", task.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	ctx.JSON(http.StatusOK, taskResponse(task))
}

func DeleteTask(ctx *gin.Context) {
	projectID, membership, ok := requireMember(ctx)

	if !ok {
		return
	}

	if membership.Role != types.RoleOwner && membership.Role != types.RoleMentor {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner or a mentor may delete tasks"})
		return
	}

	taskID, err := utils.GetIDParam(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var task models.Task

	if err := db.DB.Where("id = ? AND project_id = ?", taskID, projectID).First(&task).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	if err := db.DB.Delete(&task).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
