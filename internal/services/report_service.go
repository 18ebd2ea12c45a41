package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/yukikurage/workforce-portal/internal/constants"
	"github.com/yukikurage/workforce-portal/internal/models"
	"github.com/yukikurage/workforce-portal/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrAdminOnlyReport   = newError(ErrAuthorization, "only admins can view this report")
	ErrOverviewForbidden = newError(ErrAuthorization, "only admins and directors can view the task overview")
	ErrInvalidOverview   = newError(ErrValidation, "filter must be one of all, daily, monthly, user")
	ErrInvalidReportDate = newError(ErrValidation, "date must be YYYY-MM-DD and month YYYY-MM")
)

// Report column sets.
var (
	DirectorsHeader = []string{"Username", "Employee ID", "First Name", "Last Name", "Department", "Designation"}
	AllTasksHeader  = []string{"Task ID", "Title", "Description", "Priority", "Status", "Assigned To", "Created At", "Due Date", "Completed At", "Attachments"}
	OverviewHeader  = []string{"ID", "Title", "Description", "Priority", "Status", "Assigned To", "Created", "Due Date", "Completed", "Attachments"}
)

// Overview filter kinds.
const (
	OverviewAll     = "all"
	OverviewDaily   = "daily"
	OverviewMonthly = "monthly"
	OverviewUser    = "user"
)

// Report is a flat table ready for CSV serialization.
type Report struct {
	Header []string
	Rows   [][]string
}

// Empty reports whether the table has no data rows.
func (r *Report) Empty() bool {
	return len(r.Rows) == 0
}

// OverviewFilter narrows the task overview.
type OverviewFilter struct {
	Kind     string
	Date     string // YYYY-MM-DD, daily
	Month    string // YYYY-MM, monthly
	Username string // user
}

// NormalizedKind folds case and whitespace; an empty kind means all.
func (f OverviewFilter) NormalizedKind() string {
	kind := strings.ToLower(strings.TrimSpace(f.Kind))
	if kind == "" {
		return OverviewAll
	}
	return kind
}

// ReportService builds read-only tabular projections.
type ReportService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
	logger   *zap.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(userRepo repository.UserRepository, taskRepo repository.TaskRepository, logger *zap.Logger) *ReportService {
	return &ReportService{
		userRepo: userRepo,
		taskRepo: taskRepo,
		logger:   logger,
	}
}

// DirectorsRoster lists every director account.
func (s *ReportService) DirectorsRoster(actor *models.User) (*Report, error) {
	if !actor.IsAdmin {
		return nil, ErrAdminOnlyReport
	}

	directors, err := s.userRepo.ListDirectors()
	if err != nil {
		return nil, persistence("list directors", err, nil)
	}

	report := &Report{Header: DirectorsHeader, Rows: make([][]string, 0, len(directors))}
	for _, d := range directors {
		report.Rows = append(report.Rows, []string{
			d.Username, d.EmployeeID, d.FirstName, d.LastName, d.Department, d.Designation,
		})
	}
	return report, nil
}

// AllTasks lists every task with plain assignee usernames.
func (s *ReportService) AllTasks(actor *models.User) (*Report, error) {
	if !actor.IsAdmin {
		return nil, ErrAdminOnlyReport
	}

	tasks, err := s.taskRepo.List(repository.TaskFilter{})
	if err != nil {
		return nil, persistence("list tasks", err, nil)
	}

	report := &Report{Header: AllTasksHeader, Rows: make([][]string, 0, len(tasks))}
	for _, t := range tasks {
		names := make([]string, 0, len(t.Assignments))
		for _, a := range t.Assignments {
			names = append(names, a.User.Username)
		}

		report.Rows = append(report.Rows, []string{
			strconv.FormatUint(t.ID, 10),
			t.Title,
			orDefault(t.Description, "No description"),
			strings.ToUpper(string(t.Priority)),
			strings.ToUpper(string(t.Status)),
			orDefault(strings.Join(names, ", "), "Unassigned"),
			formatTimestamp(&t.CreatedAt, "N/A"),
			formatDate(t.DueDate, "Not set"),
			formatTimestamp(t.CompletedAt, "Not completed"),
			strconv.Itoa(len(t.Attachments)),
		})
	}
	return report, nil
}

// TaskOverview lists tasks for admins and directors, optionally restricted to
// a creation day, a creation month or one assignee.
func (s *ReportService) TaskOverview(actor *models.User, filter OverviewFilter) (*Report, error) {
	if !actor.SeesAllTasks() {
		return nil, ErrOverviewForbidden
	}

	var taskFilter repository.TaskFilter

	switch filter.NormalizedKind() {
	case OverviewAll:
	case OverviewDaily:
		day, err := time.Parse(constants.ReportDateLayout, filter.Date)
		if err != nil {
			return nil, ErrInvalidReportDate
		}
		next := day.AddDate(0, 0, 1)
		taskFilter.CreatedFrom, taskFilter.CreatedTo = &day, &next
	case OverviewMonthly:
		month, err := time.Parse("2006-01", filter.Month)
		if err != nil {
			return nil, ErrInvalidReportDate
		}
		next := month.AddDate(0, 1, 0)
		taskFilter.CreatedFrom, taskFilter.CreatedTo = &month, &next
	case OverviewUser:
		user, err := s.userRepo.FindByUsername(strings.TrimSpace(filter.Username))
		if err != nil {
			return nil, persistence("find user", err, ErrUserNotFound)
		}
		taskFilter.AssignedUserID = &user.ID
	default:
		return nil, ErrInvalidOverview
	}

	tasks, err := s.taskRepo.List(taskFilter)
	if err != nil {
		return nil, persistence("list tasks", err, nil)
	}
	return overviewReport(tasks, ""), nil
}

// DepartmentTasks is the HOD's export: tasks touching the department, with
// only the department's assignees listed.
func (s *ReportService) DepartmentTasks(actor *models.User) (*Report, error) {
	if !actor.IsHOD() {
		return nil, ErrNotHOD
	}

	department := actor.Department
	tasks, err := s.taskRepo.List(repository.TaskFilter{Department: &department})
	if err != nil {
		return nil, persistence("list department tasks", err, nil)
	}
	return overviewReport(tasks, department), nil
}

// overviewReport renders tasks in the overview layout. A non-empty department
// hides assignees from other departments.
func overviewReport(tasks []models.Task, department string) *Report {
	report := &Report{Header: OverviewHeader, Rows: make([][]string, 0, len(tasks))}

	for _, t := range tasks {
		assignees := make([]string, 0, len(t.Assignments))
		for _, a := range t.Assignments {
			if department != "" && a.User.Department != department {
				continue
			}
			assignees = append(assignees, a.User.Username+" ("+a.User.Designation+")")
		}

		report.Rows = append(report.Rows, []string{
			strconv.FormatUint(t.ID, 10),
			t.Title,
			previewDescription(t.Description),
			strings.ToUpper(string(t.Priority)),
			strings.ToUpper(string(t.Status)),
			orDefault(strings.Join(assignees, ", "), "Unassigned"),
			formatTimestamp(&t.CreatedAt, "N/A"),
			formatDate(t.DueDate, "Not set"),
			formatTimestamp(t.CompletedAt, "Not completed"),
			strconv.Itoa(len(t.Attachments)),
		})
	}
	return report
}

func previewDescription(desc string) string {
	if desc == "" {
		return "No description"
	}
	runes := []rune(desc)
	if len(runes) > constants.DescriptionPreviewLen {
		return string(runes[:constants.DescriptionPreviewLen]) + "..."
	}
	return desc
}

func formatDate(t *time.Time, placeholder string) string {
	if t == nil || t.IsZero() {
		return placeholder
	}
	return t.Format(constants.ReportDateLayout)
}

func formatTimestamp(t *time.Time, placeholder string) string {
	if t == nil || t.IsZero() {
		return placeholder
	}
	return t.Format(constants.ReportTimestampLayout)
}

func orDefault(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}
