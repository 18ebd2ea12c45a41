package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/workforce-portal/internal/dto"
	apierrors "github.com/yukikurage/workforce-portal/internal/errors"
	"github.com/yukikurage/workforce-portal/internal/models"
	"github.com/yukikurage/workforce-portal/internal/services"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	apiSuite
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}

func (suite *TaskHandlerTestSuite) createTask(cookies []*http.Cookie, payload gin.H) dto.TaskDTO {
	w := suite.request(http.MethodPost, "/api/tasks", payload, cookies)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var task dto.TaskDTO
	suite.decode(w, &task)
	return task
}

func (suite *TaskHandlerTestSuite) TestCreateTask_JSON() {
	suite.createDirector("dora")
	suite.createUser("alice", "IT", "EMPLOYEE")
	suite.createUser("bob", "IT", "EMPLOYEE")
	cookies := suite.login("dora")

	task := suite.createTask(cookies, gin.H{
		"title":     "Quarterly report",
		"priority":  "HIGH",
		"status":    "completed",
		"due_date":  "2025-03-01",
		"assignees": []string{"alice", "bob", "alice"},
	})

	suite.Equal("Quarterly report", task.Title)
	suite.Equal(models.TaskPriorityHigh, task.Priority)
	suite.Equal(models.TaskStatusCompleted, task.Status)
	suite.NotNil(task.CompletedAt)
	suite.Require().NotNil(task.DueDate)
	suite.Equal("2025-03-01", task.DueDate.Format("2006-01-02"))
	suite.Len(task.Assignees, 2)
	suite.Require().NotNil(task.CreatedBy)
	suite.Equal("dora", task.CreatedBy.Username)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Validation() {
	suite.createDirector("dora")
	cookies := suite.login("dora")

	tests := []struct {
		name    string
		payload gin.H
		status  int
	}{
		{"missing title", gin.H{"title": " ", "assignees": []string{"dora"}}, http.StatusBadRequest},
		{"bad priority", gin.H{"title": "x", "priority": "someday", "assignees": []string{"dora"}}, http.StatusBadRequest},
		{"bad due date", gin.H{"title": "x", "due_date": "03/01/2025", "assignees": []string{"dora"}}, http.StatusBadRequest},
		{"no assignees", gin.H{"title": "x"}, http.StatusBadRequest},
		{"unknown assignee", gin.H{"title": "x", "assignees": []string{"ghost"}}, http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w := suite.request(http.MethodPost, "/api/tasks", tt.payload, cookies)
			suite.Equal(tt.status, w.Code, w.Body.String())
		})
	}
}

func (suite *TaskHandlerTestSuite) TestCreateTask_EmployeeAssignsSelf() {
	suite.createUser("alice", "IT", "EMPLOYEE")
	suite.createUser("bob", "IT", "EMPLOYEE")

	task := suite.createTask(suite.login("alice"), gin.H{
		"title":     "Own work",
		"assignees": []string{"bob"},
	})

	suite.Require().Len(task.Assignees, 1)
	suite.Equal("alice", task.Assignees[0].Username)
	suite.Equal(models.TaskPriorityMedium, task.Priority)
	suite.Equal(models.TaskStatusPending, task.Status)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_HODOutsideDepartmentForbidden() {
	suite.createUser("hank", "IT", "HOD")
	suite.createUser("fran", "Finance", "EMPLOYEE")

	w := suite.request(http.MethodPost, "/api/tasks", gin.H{
		"title":     "Cross team",
		"assignees": []string{"fran"},
	}, suite.login("hank"))

	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal(apierrors.ErrCodeForbidden, suite.errorCode(w))
}

func (suite *TaskHandlerTestSuite) TestCreateTask_MultipartWithAttachment() {
	suite.createDirector("dora")
	suite.createUser("alice", "IT", "EMPLOYEE")
	dora := suite.login("dora")

	w := suite.multipartRequest(http.MethodPost, "/api/tasks", map[string]string{
		"title":     "With file",
		"assignees": "alice,dora",
	}, []upload{{field: "attachments", filename: "notes.txt", content: []byte("hello")}}, dora)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var task dto.TaskDTO
	suite.decode(w, &task)
	suite.Len(task.Assignees, 2)
	suite.Require().Len(task.Attachments, 1)
	suite.Equal("notes.txt", task.Attachments[0].Filename)

	path := fmt.Sprintf("/api/tasks/%d/attachments/%d", task.ID, task.Attachments[0].ID)

	w = suite.request(http.MethodGet, path, nil, suite.login("alice"))
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("hello", w.Body.String())
	suite.Contains(w.Header().Get("Content-Disposition"), "notes.txt")

	w = suite.request(http.MethodGet, fmt.Sprintf("/api/tasks/%d/attachments/999", task.ID), nil, dora)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetTask_Access() {
	suite.createDirector("dora")
	suite.createUser("alice", "IT", "EMPLOYEE")
	suite.createUser("bob", "IT", "EMPLOYEE")

	task := suite.createTask(suite.login("dora"), gin.H{"title": "Alice only", "assignees": []string{"alice"}})
	path := fmt.Sprintf("/api/tasks/%d", task.ID)

	w := suite.request(http.MethodGet, path, nil, suite.login("alice"))
	suite.Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, path, nil, suite.login("bob"))
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodGet, "/api/tasks/999", nil, suite.login("bob"))
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/api/tasks/abc", nil, suite.login("bob"))
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasks_Visibility() {
	suite.createDirector("dora")
	suite.createUser("alice", "IT", "EMPLOYEE")
	suite.createUser("bob", "IT", "EMPLOYEE")
	dora := suite.login("dora")

	suite.createTask(dora, gin.H{"title": "A", "priority": "low", "assignees": []string{"alice"}})
	suite.createTask(dora, gin.H{"title": "B", "priority": "urgent", "assignees": []string{"bob"}})

	var list dto.TaskListResponse
	w := suite.request(http.MethodGet, "/api/tasks", nil, dora)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &list)
	suite.Equal(2, list.Count)

	w = suite.request(http.MethodGet, "/api/tasks?priority=urgent", nil, dora)
	suite.decode(w, &list)
	suite.Require().Equal(1, list.Count)
	suite.Equal("B", list.Tasks[0].Title)

	w = suite.request(http.MethodGet, "/api/tasks", nil, suite.login("alice"))
	suite.decode(w, &list)
	suite.Require().Equal(1, list.Count)
	suite.Equal("A", list.Tasks[0].Title)

	w = suite.request(http.MethodGet, "/api/tasks?status=done", nil, dora)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateStatusAndPriority() {
	suite.createDirector("dora")
	suite.createUser("alice", "IT", "EMPLOYEE")
	suite.createUser("bob", "IT", "EMPLOYEE")

	task := suite.createTask(suite.login("dora"), gin.H{"title": "Flow", "assignees": []string{"alice"}})
	alice := suite.login("alice")

	var updated dto.TaskDTO
	w := suite.request(http.MethodPatch, fmt.Sprintf("/api/tasks/%d/status", task.ID), gin.H{"status": "completed"}, alice)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.decode(w, &updated)
	suite.Equal(models.TaskStatusCompleted, updated.Status)
	suite.NotNil(updated.CompletedAt)

	w = suite.request(http.MethodPatch, fmt.Sprintf("/api/tasks/%d/status", task.ID), gin.H{"status": "due"}, alice)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &updated)
	suite.Nil(updated.CompletedAt)

	w = suite.request(http.MethodPatch, fmt.Sprintf("/api/tasks/%d/priority", task.ID), gin.H{"priority": "urgent"}, alice)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &updated)
	suite.Equal(models.TaskPriorityUrgent, updated.Priority)
	suite.Equal(models.TaskStatusDue, updated.Status)

	w = suite.request(http.MethodPatch, fmt.Sprintf("/api/tasks/%d/priority", task.ID), gin.H{"priority": "urgent"}, suite.login("bob"))
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPatch, fmt.Sprintf("/api/tasks/%d/status", task.ID), gin.H{}, alice)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask() {
	suite.createDirector("dora")
	suite.createUser("alice", "IT", "EMPLOYEE")
	dora := suite.login("dora")

	task := suite.createTask(dora, gin.H{"title": "Temp", "assignees": []string{"alice"}})

	w := suite.request(http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), nil, dora)
	suite.Require().Equal(http.StatusOK, w.Code)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.TaskAssignment{}).Count(&count).Error)
	suite.Zero(count)

	w = suite.request(http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), nil, dora)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDepartmentOverview() {
	suite.createDirector("dora")
	suite.createUser("hank", "IT", "HOD")
	suite.createUser("alice", "IT", "EMPLOYEE")
	suite.createUser("fran", "Finance", "EMPLOYEE")
	dora := suite.login("dora")

	suite.createTask(dora, gin.H{"title": "IT work", "assignees": []string{"alice"}})
	suite.createTask(dora, gin.H{"title": "Finance work", "assignees": []string{"fran"}})

	var list dto.TaskListResponse
	w := suite.request(http.MethodGet, "/api/tasks/department", nil, suite.login("hank"))
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.decode(w, &list)
	suite.Require().Equal(1, list.Count)
	suite.Equal("IT work", list.Tasks[0].Title)

	w = suite.request(http.MethodGet, "/api/tasks/department", nil, suite.login("alice"))
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *TaskHandlerTestSuite) TestImportTasks() {
	suite.createAdmin()
	suite.createUser("bob", "IT", "EMPLOYEE")
	admin := suite.login("admin")

	csv := "Title,Description,Priority,Status,Due Date,Assigned Users\n" +
		"Imported,desc,high,pending,2025-03-01,bob\n" +
		"Orphan,,low,pending,,ghost\n"

	w := suite.multipartRequest(http.MethodPost, "/api/tasks/import", nil,
		[]upload{{field: "file", filename: "tasks.csv", content: []byte(csv)}}, admin)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var result services.ImportResult
	suite.decode(w, &result)
	suite.Len(result.Created, 1)
	suite.Equal([]string{"Row 3: No valid users found"}, result.Errors)

	onlyBad := "Title,Description,Priority,Status,Due Date,Assigned Users\n" +
		",,,,,bob\n"
	w = suite.multipartRequest(http.MethodPost, "/api/tasks/import", nil,
		[]upload{{field: "file", filename: "tasks.csv", content: []byte(onlyBad)}}, admin)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "Row 2: Missing title")

	w = suite.request(http.MethodPost, "/api/tasks/import", nil, admin)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.multipartRequest(http.MethodPost, "/api/tasks/import", nil,
		[]upload{{field: "file", filename: "tasks.csv", content: []byte(csv)}}, suite.login("bob"))
	suite.Equal(http.StatusForbidden, w.Code)
}
