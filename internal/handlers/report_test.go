package handlers

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/workforce-portal/internal/dto"
	"github.com/yukikurage/workforce-portal/internal/services"
)

type ReportHandlerTestSuite struct {
	apiSuite
}

func TestReportHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ReportHandlerTestSuite))
}

func (suite *ReportHandlerTestSuite) TestAllTasks_JSONAndCSV() {
	suite.createAdmin()
	suite.createUser("bob", "IT", "EMPLOYEE")
	admin := suite.login("admin")

	w := suite.request(http.MethodPost, "/api/tasks", gin.H{
		"title":       "Export me",
		"description": "a, quoted \"value\"",
		"assignees":   []string{"bob"},
	}, admin)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var report dto.ReportDTO
	w = suite.request(http.MethodGet, "/api/reports/tasks", nil, admin)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &report)
	suite.False(report.Empty)
	suite.Equal(services.AllTasksHeader, report.Header)
	suite.Require().Len(report.Rows, 1)

	w = suite.request(http.MethodGet, "/api/reports/tasks?format=csv", nil, admin)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Contains(w.Header().Get("Content-Type"), "text/csv")
	suite.Contains(w.Header().Get("Content-Disposition"), "all_tasks_")

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	suite.Require().NoError(err)
	suite.Require().Len(records, 2)
	suite.Equal(services.AllTasksHeader, records[0])
	suite.Equal("Export me", records[1][1])
	suite.Equal("a, quoted \"value\"", records[1][2])
	suite.Equal("bob", records[1][5])
}

func (suite *ReportHandlerTestSuite) TestPermissions() {
	suite.createAdmin()
	suite.createDirector("dora")
	suite.createUser("hank", "IT", "HOD")
	dora := suite.login("dora")
	hank := suite.login("hank")

	suite.Equal(http.StatusForbidden, suite.request(http.MethodGet, "/api/reports/tasks", nil, dora).Code)
	suite.Equal(http.StatusForbidden, suite.request(http.MethodGet, "/api/reports/directors", nil, dora).Code)
	suite.Equal(http.StatusOK, suite.request(http.MethodGet, "/api/reports/overview", nil, dora).Code)
	suite.Equal(http.StatusForbidden, suite.request(http.MethodGet, "/api/reports/overview", nil, hank).Code)
	suite.Equal(http.StatusOK, suite.request(http.MethodGet, "/api/reports/department", nil, hank).Code)
	suite.Equal(http.StatusForbidden, suite.request(http.MethodGet, "/api/reports/department", nil, dora).Code)
}

func (suite *ReportHandlerTestSuite) TestDirectorsRoster() {
	suite.createAdmin()
	suite.createDirector("dora")

	var report dto.ReportDTO
	w := suite.request(http.MethodGet, "/api/reports/directors", nil, suite.login("admin"))
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &report)
	suite.Require().Len(report.Rows, 1)
	suite.Equal("dora", report.Rows[0][0])
	suite.NotContains(w.Body.String(), "$2a$")
}

func (suite *ReportHandlerTestSuite) TestOverviewFilters() {
	suite.createDirector("dora")
	dora := suite.login("dora")

	w := suite.request(http.MethodGet, "/api/reports/overview?filter=weekly", nil, dora)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodGet, "/api/reports/overview?filter=daily&date=15-10-2026", nil, dora)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodGet, "/api/reports/overview?filter=user&username=ghost", nil, dora)
	suite.Equal(http.StatusNotFound, w.Code)

	var report dto.ReportDTO
	w = suite.request(http.MethodGet, "/api/reports/overview?filter=monthly&month=2024-05", nil, dora)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &report)
	suite.True(report.Empty)
	suite.Equal(services.OverviewHeader, report.Header)
}

func (suite *ReportHandlerTestSuite) TestOverview_CSVFilenameUsesNormalizedKind() {
	suite.createDirector("dora")
	dora := suite.login("dora")

	w := suite.request(http.MethodGet, "/api/reports/overview?filter=%20DAILY%20&date=2024-05-01&format=csv", nil, dora)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Contains(w.Header().Get("Content-Disposition"), `filename="tasks_daily_`)

	w = suite.request(http.MethodGet, "/api/reports/overview?filter=&format=csv", nil, dora)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Contains(w.Header().Get("Content-Disposition"), `filename="tasks_all_`)
}
