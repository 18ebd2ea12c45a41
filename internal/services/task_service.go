package services

import (
	"strings"
	"time"

	"github.com/yukikurage/workforce-portal/internal/constants"
	"github.com/yukikurage/workforce-portal/internal/models"
	"github.com/yukikurage/workforce-portal/internal/repository"
	"github.com/yukikurage/workforce-portal/internal/storage"
	"go.uber.org/zap"
)

var (
	ErrTaskNotFound        = newError(ErrNotFound, "task not found")
	ErrAttachmentNotFound  = newError(ErrNotFound, "attachment not found")
	ErrTaskAccessDenied    = newError(ErrAuthorization, "you do not have access to this task")
	ErrNotHOD              = newError(ErrAuthorization, "only heads of department have a department overview")
	ErrTitleRequired       = newError(ErrValidation, "title is required")
	ErrAssigneesRequired   = newError(ErrValidation, "at least one assignee is required")
	ErrInvalidTaskPriority = newError(ErrValidation, "priority must be one of low, medium, high, urgent")
	ErrInvalidTaskStatus   = newError(ErrValidation, "status must be one of pending, due, completed")
)

// taskPreloads are the relations every task response carries.
var taskPreloads = []string{"CreatedBy", "Assignments.User", "Attachments"}

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	files    attachmentStore
	logger   *zap.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, blobs storage.BlobStore, logger *zap.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		files:    attachmentStore{blobs: blobs, logger: logger},
		logger:   logger,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    string
	Status      string
	DueDate     *time.Time
	Assignees   []string
	Attachments []Upload
}

// ListTasksInput represents the optional filters of the visibility query
type ListTasksInput struct {
	Priority string
	Status   string
}

// CreateTask creates a task assigned within the actor's scope. Blobs are
// written first and removed again if the rows cannot be committed.
func (s *TaskService) CreateTask(actor *models.User, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	priority, err := parsePriority(input.Priority)
	if err != nil {
		return nil, err
	}
	status, err := parseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	assignees, err := s.resolveAssignees(actor, input.Assignees)
	if err != nil {
		return nil, err
	}

	metas, err := s.files.store(constants.NamespaceTasks, taskFileTypes, actor.ID, input.Attachments)
	if err != nil {
		return nil, err
	}

	creatorID := actor.ID
	task := &models.Task{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Priority:    priority,
		DueDate:     input.DueDate,
		CreatedByID: &creatorID,
	}
	task.ApplyStatus(status, time.Now().UTC())

	assigneeIDs := make([]uint64, len(assignees))
	for i, u := range assignees {
		assigneeIDs[i] = u.ID
	}

	attachments := make([]models.TaskAttachment, len(metas))
	for i, m := range metas {
		attachments[i] = models.TaskAttachment{FileMeta: m}
	}

	if err := s.taskRepo.Create(task, assigneeIDs, attachments); err != nil {
		s.files.discard(metas)
		return nil, persistence("create task", err, nil)
	}

	s.logger.Info("task created",
		zap.Uint64("task_id", task.ID),
		zap.Uint64("by", actor.ID),
		zap.Int("assignees", len(assigneeIDs)),
		zap.Int("attachments", len(attachments)),
	)

	return s.reload(task.ID)
}

// GetTask returns a task the actor can see, with assignees and attachments
func (s *TaskService) GetTask(actor *models.User, taskID uint64) (*models.Task, error) {
	return s.visibleTask(actor, taskID, taskPreloads...)
}

// ListVisible runs the visibility query: everything for admins and
// directors, otherwise the tasks assigned to the actor.
func (s *TaskService) ListVisible(actor *models.User, input ListTasksInput) ([]models.Task, error) {
	filter := repository.TaskFilter{}

	if input.Priority != "" {
		p := models.TaskPriority(strings.ToLower(strings.TrimSpace(input.Priority)))
		if !p.Valid() {
			return nil, ErrInvalidTaskPriority
		}
		filter.Priority = &p
	}
	if input.Status != "" {
		st := models.TaskStatus(strings.ToLower(strings.TrimSpace(input.Status)))
		if !st.Valid() {
			return nil, ErrInvalidTaskStatus
		}
		filter.Status = &st
	}
	if !actor.SeesAllTasks() {
		filter.AssignedUserID = &actor.ID
	}

	tasks, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, persistence("list tasks", err, nil)
	}
	return tasks, nil
}

// DepartmentOverview lists tasks with at least one assignee in the HOD's department
func (s *TaskService) DepartmentOverview(actor *models.User) ([]models.Task, error) {
	if !actor.IsHOD() {
		return nil, ErrNotHOD
	}

	department := actor.Department
	tasks, err := s.taskRepo.List(repository.TaskFilter{Department: &department})
	if err != nil {
		return nil, persistence("list department tasks", err, nil)
	}
	return tasks, nil
}

// UpdateStatus changes the status, keeping completed_at in step with it
func (s *TaskService) UpdateStatus(actor *models.User, taskID uint64, status string) (*models.Task, error) {
	st := models.TaskStatus(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return nil, ErrInvalidTaskStatus
	}

	task, err := s.visibleTask(actor, taskID)
	if err != nil {
		return nil, err
	}

	task.ApplyStatus(st, time.Now().UTC())
	if err := s.taskRepo.UpdateFields(task.ID, map[string]interface{}{
		"status":       task.Status,
		"completed_at": task.CompletedAt,
	}); err != nil {
		return nil, persistence("update task status", err, ErrTaskNotFound)
	}

	return s.reload(task.ID)
}

// UpdatePriority changes the priority only
func (s *TaskService) UpdatePriority(actor *models.User, taskID uint64, priority string) (*models.Task, error) {
	p := models.TaskPriority(strings.ToLower(strings.TrimSpace(priority)))
	if !p.Valid() {
		return nil, ErrInvalidTaskPriority
	}

	task, err := s.visibleTask(actor, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.UpdateFields(task.ID, map[string]interface{}{"priority": p}); err != nil {
		return nil, persistence("update task priority", err, ErrTaskNotFound)
	}

	return s.reload(task.ID)
}

// DeleteTask hard-deletes a task. Blob removal afterwards is best-effort.
func (s *TaskService) DeleteTask(actor *models.User, taskID uint64) error {
	if _, err := s.visibleTask(actor, taskID); err != nil {
		return err
	}

	attachments, err := s.taskRepo.Delete(taskID)
	if err != nil {
		return persistence("delete task", err, ErrTaskNotFound)
	}

	paths := make([]string, len(attachments))
	for i, a := range attachments {
		paths[i] = a.FilePath
	}
	s.files.remove(paths)

	s.logger.Info("task deleted", zap.Uint64("task_id", taskID), zap.Uint64("by", actor.ID))
	return nil
}

// OpenAttachment opens an attachment of a task the actor can see
func (s *TaskService) OpenAttachment(actor *models.User, taskID, attachmentID uint64) (*Blob, error) {
	if _, err := s.visibleTask(actor, taskID); err != nil {
		return nil, err
	}

	attachment, err := s.taskRepo.FindAttachment(taskID, attachmentID)
	if err != nil {
		return nil, persistence("find attachment", err, ErrAttachmentNotFound)
	}

	return s.files.open(attachment.FileMeta)
}

// resolveAssignees applies the assignment scope of the actor's role tier.
// Admin is checked before director, director before HOD.
func (s *TaskService) resolveAssignees(actor *models.User, usernames []string) ([]models.User, error) {
	if !actor.SeesAllTasks() && !actor.IsHOD() {
		return []models.User{*actor}, nil
	}

	names := uniqueUsernames(usernames)
	if len(names) == 0 {
		return nil, ErrAssigneesRequired
	}

	found, err := s.userRepo.FindByUsernames(names)
	if err != nil {
		return nil, persistence("find assignees", err, nil)
	}

	byName := make(map[string]models.User, len(found))
	for _, u := range found {
		byName[u.Username] = u
	}

	users := make([]models.User, 0, len(names))
	for _, name := range names {
		u, ok := byName[name]
		if !ok {
			return nil, notFoundf("user %q not found", name)
		}
		if actor.IsHOD() && !hodMayAssign(actor, &u) {
			return nil, forbiddenf("a head of department can only assign SUB-HOD or EMPLOYEE users of %s; %s is not eligible", actor.Department, name)
		}
		users = append(users, u)
	}

	return users, nil
}

func hodMayAssign(hod, target *models.User) bool {
	if target.Department != hod.Department {
		return false
	}
	return target.Designation == constants.DesignationSubHOD || target.Designation == constants.DesignationEmployee
}

// visibleTask loads a task and checks the actor may see it
func (s *TaskService) visibleTask(actor *models.User, taskID uint64, preload ...string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, preload...)
	if err != nil {
		return nil, persistence("find task", err, ErrTaskNotFound)
	}

	if actor.SeesAllTasks() {
		return task, nil
	}

	assigned, err := s.taskRepo.IsAssigned(taskID, actor.ID)
	if err != nil {
		return nil, persistence("check assignment", err, nil)
	}
	if !assigned {
		return nil, ErrTaskAccessDenied
	}
	return task, nil
}

func (s *TaskService) reload(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, taskPreloads...)
	if err != nil {
		return nil, persistence("load task", err, ErrTaskNotFound)
	}
	return task, nil
}

// parsePriority accepts a priority name; blank means medium
func parsePriority(raw string) (models.TaskPriority, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return models.TaskPriorityMedium, nil
	}
	p := models.TaskPriority(raw)
	if !p.Valid() {
		return "", ErrInvalidTaskPriority
	}
	return p, nil
}

// parseStatus accepts a status name; blank means pending
func parseStatus(raw string) (models.TaskStatus, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return models.TaskStatusPending, nil
	}
	st := models.TaskStatus(raw)
	if !st.Valid() {
		return "", ErrInvalidTaskStatus
	}
	return st, nil
}

// uniqueUsernames trims, drops blanks and collapses duplicates, keeping first-seen order
func uniqueUsernames(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
