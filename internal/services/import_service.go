package services

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yukikurage/workforce-portal/internal/models"
	"github.com/yukikurage/workforce-portal/internal/repository"
	"github.com/yukikurage/workforce-portal/internal/tabular"
	"go.uber.org/zap"
)

var (
	ErrImportForbidden = newError(ErrAuthorization, "only admins and directors can import tasks")
	ErrImportEmpty     = newError(ErrValidation, "the file contains no task rows")
)

// Import columns, positionally.
const (
	colTitle = iota
	colDescription
	colPriority
	colStatus
	colDueDate
	colAssignees
)

// ImportService turns spreadsheet rows into tasks.
type ImportService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewImportService creates a new ImportService.
func NewImportService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, logger *zap.Logger) *ImportService {
	return &ImportService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// ImportResult lists the created task ids and one message per rejected row.
type ImportResult struct {
	Created []uint64 `json:"created"`
	Errors  []string `json:"errors"`
}

type importRow struct {
	number      int
	task        *models.Task
	assigneeIDs []uint64
}

// ImportTasks reads a CSV or XLSX file whose first row is a header. Rows are
// validated independently; the accepted ones are committed together, each in
// its own savepoint so a failing insert only rejects its row.
func (s *ImportService) ImportTasks(actor *models.User, filename string, r io.Reader) (*ImportResult, error) {
	if !actor.SeesAllTasks() {
		return nil, ErrImportForbidden
	}

	rows, err := tabular.ReadRows(filename, r)
	if err != nil {
		if errors.Is(err, tabular.ErrUnsupportedFormat) {
			return nil, newError(ErrValidation, err.Error())
		}
		return nil, validationf("could not read %s: %v", filename, err)
	}
	if len(rows) < 2 {
		return nil, ErrImportEmpty
	}
	rows = rows[1:]

	users, err := s.lookupAssignees(rows)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Created: []uint64{}, Errors: []string{}}
	now := time.Now().UTC()
	creatorID := actor.ID

	prepared := make([]importRow, 0, len(rows))
	for i, row := range rows {
		// header is spreadsheet row 1
		number := i + 2

		p, msg := prepareRow(row, users, now)
		if msg != "" {
			result.Errors = append(result.Errors, rowError(number, msg))
			continue
		}
		p.number = number
		p.task.CreatedByID = &creatorID
		prepared = append(prepared, p)
	}

	err = s.taskRepo.Transaction(func(repo repository.TaskRepository) error {
		for _, p := range prepared {
			if err := repo.Create(p.task, p.assigneeIDs, nil); err != nil {
				s.logger.Warn("import row rejected", zap.Int("row", p.number), zap.Error(err))
				result.Errors = append(result.Errors, rowError(p.number, "failed to save task"))
				continue
			}
			result.Created = append(result.Created, p.task.ID)
		}
		return nil
	})
	if err != nil {
		return nil, persistence("commit import", err, nil)
	}

	s.logger.Info("tasks imported",
		zap.String("file", filename),
		zap.Int("created", len(result.Created)),
		zap.Int("rejected", len(result.Errors)),
		zap.Uint64("by", actor.ID),
	)
	return result, nil
}

// lookupAssignees resolves every username mentioned in the file in one query
func (s *ImportService) lookupAssignees(rows [][]string) (map[string]uint64, error) {
	var names []string
	for _, row := range rows {
		cell := tabular.Cell(row, colAssignees)
		if tabular.IsBlank(cell) {
			continue
		}
		names = append(names, strings.Split(cell, ",")...)
	}

	found, err := s.userRepo.FindByUsernames(uniqueUsernames(names))
	if err != nil {
		return nil, persistence("find assignees", err, nil)
	}

	users := make(map[string]uint64, len(found))
	for _, u := range found {
		users[u.Username] = u.ID
	}
	return users, nil
}

// prepareRow validates one row. Unknown priorities and statuses fall back
// to medium and pending; unknown usernames are skipped.
func prepareRow(row []string, users map[string]uint64, now time.Time) (importRow, string) {
	title := tabular.Cell(row, colTitle)
	if tabular.IsBlank(title) {
		return importRow{}, "Missing title"
	}

	assigneeCell := tabular.Cell(row, colAssignees)
	if tabular.IsBlank(assigneeCell) {
		return importRow{}, "Missing assigned users"
	}

	var ids []uint64
	for _, name := range uniqueUsernames(strings.Split(assigneeCell, ",")) {
		if id, ok := users[name]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return importRow{}, "No valid users found"
	}

	description := tabular.Cell(row, colDescription)
	if tabular.IsBlank(description) {
		description = ""
	}

	priority := models.TaskPriority(strings.ToLower(tabular.Cell(row, colPriority)))
	if !priority.Valid() {
		priority = models.TaskPriorityMedium
	}
	status := models.TaskStatus(strings.ToLower(tabular.Cell(row, colStatus)))
	if !status.Valid() {
		status = models.TaskStatusPending
	}

	var dueDate *time.Time
	if cell := tabular.Cell(row, colDueDate); !tabular.IsBlank(cell) {
		d, err := tabular.ParseDate(cell)
		if err != nil {
			return importRow{}, fmt.Sprintf("Invalid due date %q", cell)
		}
		dueDate = &d
	}

	task := &models.Task{
		Title:       title,
		Description: description,
		Priority:    priority,
		DueDate:     dueDate,
	}
	task.ApplyStatus(status, now)

	return importRow{task: task, assigneeIDs: ids}, ""
}

func rowError(number int, msg string) string {
	return fmt.Sprintf("Row %d: %s", number, msg)
}
