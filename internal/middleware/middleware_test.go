package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workforce-portal/internal/constants"
	"github.com/yukikurage/workforce-portal/internal/models"
	"github.com/yukikurage/workforce-portal/internal/services"
	"github.com/yukikurage/workforce-portal/internal/session"
)

type stubUsers map[uint64]*models.User

func (s stubUsers) GetUser(id uint64) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, services.ErrUserNotFound
}

// newRouter exposes /login/:id to establish a session and protected routes behind gates.
func newRouter(users stubUsers, gates ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))

	r.POST("/login/:id", func(c *gin.Context) {
		id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
		u, ok := users[id]
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		if err := session.Save(c, session.FromUser(u)); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})

	handlers := append([]gin.HandlerFunc{RequireAuth(), LoadActor(users)}, gates...)
	handlers = append(handlers, func(c *gin.Context) {
		actor, _ := GetActor(c)
		c.String(http.StatusOK, actor.Username)
	})
	r.GET("/protected", handlers...)
	return r
}

func login(t *testing.T, r *gin.Engine, id string) []*http.Cookie {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login/"+id, nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	return w.Result().Cookies()
}

func get(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth_NoSession(t *testing.T) {
	r := newRouter(stubUsers{})

	w := get(r, "/protected", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoadActor_ReadsCurrentUser(t *testing.T) {
	users := stubUsers{1: {ID: 1, Username: "alice"}}
	r := newRouter(users)

	cookies := login(t, r, "1")
	w := get(r, "/protected", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())

	// the account disappears after login
	delete(users, 1)
	w = get(r, "/protected", cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleGates(t *testing.T) {
	users := stubUsers{
		1: {ID: 1, Username: "admin", IsAdmin: true},
		2: {ID: 2, Username: "dir", IsDirector: true},
		3: {ID: 3, Username: "emp", Designation: "EMPLOYEE"},
	}

	tests := []struct {
		name string
		gate gin.HandlerFunc
		want map[string]int
	}{
		{"admin only", RequireAdmin(), map[string]int{"1": http.StatusOK, "2": http.StatusForbidden, "3": http.StatusForbidden}},
		{"admin or director", RequireAdminOrDirector(), map[string]int{"1": http.StatusOK, "2": http.StatusOK, "3": http.StatusForbidden}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(users, tt.gate)
			for id, status := range tt.want {
				w := get(r, "/protected", login(t, r, id))
				assert.Equal(t, status, w.Code, "user %s", id)
			}
		})
	}

	// promotion is seen without logging in again
	r := newRouter(users, RequireAdminOrDirector())
	cookies := login(t, r, "3")
	users[3].IsDirector = true
	assert.Equal(t, http.StatusOK, get(r, "/protected", cookies).Code)
}

type stubTasks struct{}

func (stubTasks) GetTask(actor *models.User, taskID uint64) (*models.Task, error) {
	if taskID != 42 {
		return nil, services.ErrTaskNotFound
	}
	if !actor.SeesAllTasks() {
		return nil, services.ErrTaskAccessDenied
	}
	return &models.Task{ID: 42, Title: "answer"}, nil
}

func TestRequireTaskAccess(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(actor *models.User, id string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		c, r := gin.CreateTestContext(w)
		r.GET("/tasks/:id", func(c *gin.Context) {
			c.Set(constants.ContextKeyActor, actor)
		}, RequireTaskAccess(stubTasks{}), func(c *gin.Context) {
			task, _ := GetTask(c)
			c.String(http.StatusOK, task.Title)
		})
		c.Request = httptest.NewRequest(http.MethodGet, "/tasks/"+id, nil)
		r.HandleContext(c)
		return w
	}

	admin := &models.User{ID: 1, IsAdmin: true}
	emp := &models.User{ID: 2}

	assert.Equal(t, http.StatusOK, run(admin, "42").Code)
	assert.Equal(t, http.StatusForbidden, run(emp, "42").Code)
	assert.Equal(t, http.StatusNotFound, run(admin, "7").Code)
	assert.Equal(t, http.StatusBadRequest, run(admin, "abc").Code)
}

func TestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body),
		`portal_http_requests_total{method="GET",route="/ping",status="200"} 3`))
}
