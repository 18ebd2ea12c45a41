package constants

// Session and context keys
const (
	SessionCookieName      = "portal_session"
	ContextKeyUserID       = "user_id"
	ContextKeyActor        = "actor"
	SessionKeyIsAdmin      = "is_admin"
	SessionKeyIsDirector   = "is_director"
	SessionKeyDesignation  = "designation"
	SessionKeyActiveChatID = "active_chat_id"
	ContextKeyTask         = "task"
)

// Credential rules
const (
	MinPasswordLength = 4
	EmployeeIDLength  = 12
	AdminUsername     = "admin"
	AdminEmployeeID   = "000000000001"
)

// Designations
const (
	DesignationHOD      = "HOD"
	DesignationSubHOD   = "SUB-HOD"
	DesignationEmployee = "EMPLOYEE"
	DesignationDirector = "DIRECTOR"
	DesignationAdmin    = "Administrator"
)

// Departments with special meaning
const (
	DepartmentHR             = "HR"
	DepartmentAdministration = "Administration"
	DepartmentAllDepartments = "All Departments"
)

// Seed data for the org directory
var (
	DefaultDepartments  = []string{"IT", "HR", "Finance", "Operations", "Sales", "Marketing", "Administration"}
	DefaultDesignations = []string{"Manager", "Senior Manager", "Executive", "Senior Executive", "Associate", "Senior Associate", "Administrator"}
)

// Chat
const (
	BroadcastConversationName = "General Chat (All Users)"
	MessageHistoryLimit       = 100
	JoinTokenPrefix           = "GRP_"
)

// Blob namespaces
const (
	NamespaceTasks   = "uploads"
	NamespaceChat    = "uploads/chat_attachments"
	NamespaceNotices = "uploads/notices"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Report formatting
const (
	ReportDateLayout      = "2006-01-02"
	ReportTimestampLayout = "2006-01-02 15:04"
	DescriptionPreviewLen = 50
)
