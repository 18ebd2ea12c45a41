// Package session keeps the typed per-browser state: identity, a role
// snapshot taken at login and the active conversation. The role snapshot is
// informational; authorization always re-reads the user row.
package session

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workforce-portal/internal/constants"
	"github.com/yukikurage/workforce-portal/internal/models"
)

type State struct {
	UserID               uint64
	IsAdmin              bool
	IsDirector           bool
	Designation          string
	ActiveConversationID uint64
}

// FromUser builds the state established at login.
func FromUser(user *models.User) State {
	return State{
		UserID:      user.ID,
		IsAdmin:     user.IsAdmin,
		IsDirector:  user.IsDirector,
		Designation: user.Designation,
	}
}

// Load returns the state stored in the request's session. ok is false when
// nobody is logged in.
func Load(c *gin.Context) (State, bool) {
	s := sessions.Default(c)

	userID, ok := s.Get(constants.ContextKeyUserID).(uint64)
	if !ok || userID == 0 {
		return State{}, false
	}

	st := State{UserID: userID}
	st.IsAdmin, _ = s.Get(constants.SessionKeyIsAdmin).(bool)
	st.IsDirector, _ = s.Get(constants.SessionKeyIsDirector).(bool)
	st.Designation, _ = s.Get(constants.SessionKeyDesignation).(string)
	st.ActiveConversationID, _ = s.Get(constants.SessionKeyActiveChatID).(uint64)
	return st, true
}

// Save replaces the session contents with st.
func Save(c *gin.Context, st State) error {
	s := sessions.Default(c)
	s.Clear()
	s.Set(constants.ContextKeyUserID, st.UserID)
	s.Set(constants.SessionKeyIsAdmin, st.IsAdmin)
	s.Set(constants.SessionKeyIsDirector, st.IsDirector)
	s.Set(constants.SessionKeyDesignation, st.Designation)
	if st.ActiveConversationID != 0 {
		s.Set(constants.SessionKeyActiveChatID, st.ActiveConversationID)
	}
	return s.Save()
}

// SetActiveConversation records which conversation the user has open.
func SetActiveConversation(c *gin.Context, conversationID uint64) error {
	s := sessions.Default(c)
	s.Set(constants.SessionKeyActiveChatID, conversationID)
	return s.Save()
}

// Clear drops everything, logging the user out.
func Clear(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	return s.Save()
}
