package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/workforce-portal/internal/models"
)

func TestToMessageDTO_SenderName(t *testing.T) {
	senderID := uint64(3)
	withSender := models.Message{
		ID:       1,
		SenderID: &senderID,
		Body:     "hi",
		Sender:   &models.User{ID: 3, Username: "bob", FirstName: "Bob", LastName: "Stone"},
	}
	assert.Equal(t, "Bob Stone", ToMessageDTO(withSender).SenderName)

	noNames := withSender
	noNames.Sender = &models.User{ID: 3, Username: "bob"}
	assert.Equal(t, "bob", ToMessageDTO(noNames).SenderName)

	orphan := models.Message{ID: 2, Body: "left behind"}
	dto := ToMessageDTO(orphan)
	assert.Equal(t, "Deleted user", dto.SenderName)
	assert.NotNil(t, dto.Attachments)
}

func TestToTaskDTO(t *testing.T) {
	task := models.Task{
		ID:       9,
		Title:    "Audit",
		Priority: models.TaskPriorityHigh,
		Status:   models.TaskStatusPending,
		Assignments: []models.TaskAssignment{
			{User: models.User{ID: 1, Username: "alice", Designation: "EMPLOYEE"}},
		},
		Attachments: []models.TaskAttachment{
			{ID: 4, FileMeta: models.FileMeta{Filename: "a.pdf", FilePath: "uploads/x.pdf", FileType: models.FileTypePDF}},
		},
	}

	dto := ToTaskDTO(task)
	assert.Nil(t, dto.CreatedBy)
	assert.Len(t, dto.Assignees, 1)
	assert.Equal(t, "alice", dto.Assignees[0].Username)
	assert.Equal(t, uint64(4), dto.Attachments[0].ID)
	assert.Equal(t, models.FileTypePDF, dto.Attachments[0].FileType)
}

func TestToUserListResponse_TotalPages(t *testing.T) {
	resp := ToUserListResponse(make([]models.User, 2), 1, 20, 41)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Len(t, resp.Users, 2)
}
