package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
	"github.com/yukikurage/workforce-portal/internal/models"
)

type ImportServiceTestSuite struct {
	serviceSuite
	service *ImportService
}

func (suite *ImportServiceTestSuite) SetupTest() {
	suite.serviceSuite.SetupTest()
	suite.service = NewImportService(suite.tasks, suite.users, suite.logger)
}

func TestImportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ImportServiceTestSuite))
}

const importHeader = "Title,Description,Priority,Status,Due Date,Assigned Users\n"

func (suite *ImportServiceTestSuite) TestImport_BlankTitleRowIsReported() {
	admin := suite.createAdmin()
	suite.createUser("bob", "IT", "EMPLOYEE")
	suite.createUser("carol", "IT", "EMPLOYEE")

	csv := importHeader +
		"First,desc,high,pending,2025-03-01,bob\n" +
		",missing title,low,pending,,bob\n" +
		"Third,,urgent,completed,,\"bob, carol, bob\"\n"

	result, err := suite.service.ImportTasks(admin, "tasks.csv", strings.NewReader(csv))
	suite.Require().NoError(err)

	suite.Len(result.Created, 2)
	suite.Require().Len(result.Errors, 1)
	// the header is spreadsheet row 1, so the second data row is row 3
	suite.Equal("Row 3: Missing title", result.Errors[0])

	var tasks []models.Task
	suite.Require().NoError(suite.db.Preload("Assignments").Order("id").Find(&tasks).Error)
	suite.Require().Len(tasks, 2)

	suite.Equal("First", tasks[0].Title)
	suite.Equal(models.TaskPriorityHigh, tasks[0].Priority)
	suite.Require().NotNil(tasks[0].DueDate)
	suite.Equal("2025-03-01", tasks[0].DueDate.Format("2006-01-02"))
	suite.Require().NotNil(tasks[0].CreatedByID)
	suite.Equal(admin.ID, *tasks[0].CreatedByID)

	suite.Equal("Third", tasks[1].Title)
	suite.Equal(models.TaskStatusCompleted, tasks[1].Status)
	suite.NotNil(tasks[1].CompletedAt)
	suite.Len(tasks[1].Assignments, 2)
}

func (suite *ImportServiceTestSuite) TestImport_RowRules() {
	director := suite.createDirector("dir")
	suite.createUser("bob", "IT", "EMPLOYEE")

	csv := importHeader +
		"No users,,,,,\n" +
		"Ghosts,,,,,\"ghost, phantom\"\n" +
		"Bad date,,,,someday,bob\n" +
		"Fallbacks,,critical,archived,nan,bob\n"

	result, err := suite.service.ImportTasks(director, "tasks.CSV", strings.NewReader(csv))
	suite.Require().NoError(err)

	suite.Equal([]string{
		"Row 2: Missing assigned users",
		"Row 3: No valid users found",
		`Row 4: Invalid due date "someday"`,
	}, result.Errors)
	suite.Require().Len(result.Created, 1)

	var task models.Task
	suite.Require().NoError(suite.db.First(&task, result.Created[0]).Error)
	suite.Equal(models.TaskPriorityMedium, task.Priority)
	suite.Equal(models.TaskStatusPending, task.Status)
	suite.Nil(task.DueDate)
	suite.Nil(task.CompletedAt)
}

func (suite *ImportServiceTestSuite) TestImport_Workbook() {
	admin := suite.createAdmin()
	suite.createUser("bob", "IT", "EMPLOYEE")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Title", "Description", "Priority", "Status", "Due Date", "Assigned Users"},
		{"From workbook", "xlsx row", "low", "due", "2025-04-15", "bob"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		suite.Require().NoError(err)
		suite.Require().NoError(f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	suite.Require().NoError(f.Write(&buf))
	suite.Require().NoError(f.Close())

	result, err := suite.service.ImportTasks(admin, "tasks.xlsx", &buf)
	suite.Require().NoError(err)
	suite.Empty(result.Errors)
	suite.Require().Len(result.Created, 1)

	var task models.Task
	suite.Require().NoError(suite.db.First(&task, result.Created[0]).Error)
	suite.Equal("From workbook", task.Title)
	suite.Equal(models.TaskStatusDue, task.Status)
}

func (suite *ImportServiceTestSuite) TestImport_Rejections() {
	admin := suite.createAdmin()
	hod := suite.createUser("hod", "IT", "HOD")

	_, err := suite.service.ImportTasks(hod, "tasks.csv", strings.NewReader(importHeader))
	suite.ErrorIs(err, ErrImportForbidden)
	suite.ErrorIs(err, ErrAuthorization)

	_, err = suite.service.ImportTasks(admin, "tasks.txt", strings.NewReader(importHeader))
	suite.ErrorIs(err, ErrValidation)

	_, err = suite.service.ImportTasks(admin, "tasks.csv", strings.NewReader(importHeader))
	suite.ErrorIs(err, ErrImportEmpty)
}
