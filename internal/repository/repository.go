package repository

import (
	"errors"
	"time"

	"github.com/yukikurage/workforce-portal/internal/models"
	"github.com/yukikurage/workforce-portal/internal/utils"
)

var (
	// ErrReferenced is returned when a directory entry is still used by a user.
	ErrReferenced = errors.New("repository: entry is still referenced")
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// CreateWithBroadcast creates a user and enrols them in the broadcast
	// conversation within a single transaction.
	CreateWithBroadcast(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByUsernames returns the users among usernames that exist
	FindByUsernames(usernames []string) ([]models.User, error)

	// ExistsByEmployeeID reports whether an employee id is taken
	ExistsByEmployeeID(employeeID string) (bool, error)

	// List returns users matching search, admin first, then directors, then by name
	List(search string, params utils.PaginationParams) ([]models.User, int64, error)

	// ListDirectors returns every director ordered by username
	ListDirectors() ([]models.User, error)

	// SetDirector updates the persisted director flag
	SetDirector(id uint64, isDirector bool) error

	// Delete removes a user, their join rows, and nulls every reference to them
	Delete(id uint64) error
}

// DirectoryRepository defines the interface for departments and designations
type DirectoryRepository interface {
	ListDepartments() ([]models.Department, error)
	CreateDepartment(dept *models.Department) error
	// DeleteDepartment deletes a department unless a user references it (ErrReferenced)
	DeleteDepartment(id uint64) error

	ListDesignations() ([]models.Designation, error)
	CreateDesignation(desig *models.Designation) error
	// DeleteDesignation deletes a designation unless a user references it (ErrReferenced)
	DeleteDesignation(id uint64) error

	// SeedDefaults inserts the given names, skipping those already present
	SeedDefaults(departments, designations []string) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Transaction runs fn against a repository bound to one transaction.
	// Calls nested inside fn run in savepoints.
	Transaction(fn func(repo TaskRepository) error) error

	// Create persists a task with its assignments and attachment rows atomically
	Create(task *models.Task, assigneeIDs []uint64, attachments []models.TaskAttachment) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering in visibility order
	List(filter TaskFilter) ([]models.Task, error)

	// IsAssigned reports whether userID is among the task's assignees
	IsAssigned(taskID, userID uint64) (bool, error)

	// UpdateFields writes the given columns of a task
	UpdateFields(id uint64, fields map[string]interface{}) error

	// Delete removes a task with its assignments and attachment rows,
	// returning the removed attachments so their blobs can be cleaned up
	Delete(id uint64) ([]models.TaskAttachment, error)

	// FindAttachment finds an attachment belonging to a task
	FindAttachment(taskID, attachmentID uint64) (*models.TaskAttachment, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Priority       *models.TaskPriority
	Status         *models.TaskStatus
	AssignedUserID *uint64
	Department     *string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
}

// NoticeRepository defines the interface for notice data access
type NoticeRepository interface {
	// List returns notices newest first; activeOnly hides deactivated ones
	List(activeOnly bool) ([]models.Notice, error)

	// Create persists a notice with its attachment rows atomically
	Create(notice *models.Notice, attachments []models.NoticeAttachment) error

	FindByID(id uint64) (*models.Notice, error)

	UpdateFields(id uint64, fields map[string]interface{}) error

	// Delete removes a notice and returns its attachments for blob cleanup
	Delete(id uint64) ([]models.NoticeAttachment, error)

	// FindAttachment finds an attachment with its notice
	FindAttachment(id uint64) (*models.NoticeAttachment, *models.Notice, error)
}

// ChatRepository defines the interface for conversations and messages
type ChatRepository interface {
	// FindIndividual finds the individual conversation holding both users
	FindIndividual(userA, userB uint64) (*models.Conversation, error)

	// Create persists a conversation and its participants atomically
	Create(conv *models.Conversation, participantIDs []uint64) error

	// StartIndividual returns the pair's conversation, creating it when
	// absent. The lookup and insert share a transaction.
	StartIndividual(userA, userB uint64) (*models.Conversation, bool, error)

	FindByID(id uint64) (*models.Conversation, error)

	FindByJoinLink(token string) (*models.Conversation, error)

	// FindBroadcast returns the single broadcast conversation
	FindBroadcast() (*models.Conversation, error)

	// EnsureBroadcast creates the broadcast conversation if needed and
	// enrols every existing user in it
	EnsureBroadcast(name string) (*models.Conversation, error)

	// AddParticipant adds a member; adding an existing member is a no-op
	AddParticipant(conversationID, userID uint64) error

	IsParticipant(conversationID, userID uint64) (bool, error)

	// ListForUser lists conversations the user participates in
	ListForUser(userID uint64) ([]models.Conversation, error)

	// CreateMessage persists a message with its attachment rows atomically
	CreateMessage(msg *models.Message, attachments []models.MessageAttachment) error

	// RecentMessages returns the last limit messages, oldest first
	RecentMessages(conversationID uint64, limit int) ([]models.Message, error)

	// DeleteMessages removes messages of a conversation, all of them or only
	// those sent by senderID, returning their attachments for blob cleanup
	DeleteMessages(conversationID uint64, senderID *uint64) ([]models.MessageAttachment, error)

	// FindAttachment finds a message attachment and its conversation id
	FindAttachment(id uint64) (*models.MessageAttachment, uint64, error)
}
