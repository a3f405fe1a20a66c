package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"socialflow/domain/dto"
	"socialflow/domain/model"
	"socialflow/infrastructure/cache"
	"socialflow/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOAuthProvider struct {
	mock.Mock
}

func (m *MockOAuthProvider) AuthCodeURL(platform model.Platform, nonce string) (string, error) {
	args := m.Called(platform, nonce)
	return args.String(0), args.Error(1)
}

func (m *MockOAuthProvider) Exchange(ctx context.Context, platform model.Platform, code string) (model.TokenBundle, *model.UserInfo, error) {
	args := m.Called(ctx, platform, code)
	var info *model.UserInfo
	if v := args.Get(1); v != nil {
		info = v.(*model.UserInfo)
	}
	return args.Get(0).(model.TokenBundle), info, args.Error(2)
}

type MockPostLifecycle struct {
	mock.Mock
}

func (m *MockPostLifecycle) post(args mock.Arguments) (*model.Post, error) {
	var p *model.Post
	if v := args.Get(0); v != nil {
		p = v.(*model.Post)
	}
	return p, args.Error(1)
}

func (m *MockPostLifecycle) Submit(ctx context.Context, userID string, draft model.DraftPost, saveAsDraft bool) (*model.Post, error) {
	return m.post(m.Called(ctx, userID, draft, saveAsDraft))
}

func (m *MockPostLifecycle) Schedule(ctx context.Context, userID, postID string, at time.Time) (*model.Post, error) {
	return m.post(m.Called(ctx, userID, postID, at))
}

func (m *MockPostLifecycle) Publish(ctx context.Context, userID, postID string) (*model.Post, error) {
	return m.post(m.Called(ctx, userID, postID))
}

func (m *MockPostLifecycle) Dispatch(ctx context.Context, postID string) (*model.Post, error) {
	return m.post(m.Called(ctx, postID))
}

func (m *MockPostLifecycle) DispatchDue(ctx context.Context, limit int) (int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Error(1)
}

func (m *MockPostLifecycle) Get(ctx context.Context, userID, postID string) (*model.Post, error) {
	return m.post(m.Called(ctx, userID, postID))
}

func (m *MockPostLifecycle) List(ctx context.Context, userID string, limit, offset int) ([]*model.Post, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]*model.Post), args.Error(1)
}

func (m *MockPostLifecycle) Stats(ctx context.Context, userID string) (model.PostStats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.PostStats), args.Error(1)
}

type fixture struct {
	router    *gin.Engine
	provider  *MockOAuthProvider
	lifecycle *MockPostLifecycle
	sessions  *usecase.SessionManager
}

// newFixture mounts the handlers the way the server does, with a fixed
// authenticated user instead of the JWT middleware.
func newFixture() *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		provider:  new(MockOAuthProvider),
		lifecycle: new(MockPostLifecycle),
	}
	f.sessions = usecase.NewSessionManager(nil, cache.NewMemoryHandshakeStore(time.Minute), f.provider, time.UTC)
	conn := NewConnectionHandler(f.sessions)
	draft := NewDraftHandler(f.sessions, f.lifecycle)
	posts := NewPostHandler(f.lifecycle, time.UTC)

	r := gin.New()
	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			c.Set("user_id", uid)
		}
	})
	api.GET("/connections", conn.List)
	api.DELETE("/connections/:platform", conn.Disconnect)
	api.POST("/oauth/:platform/begin", conn.Begin)
	api.POST("/oauth/:platform/callback", conn.Callback)
	api.GET("/draft", draft.Get)
	api.PUT("/draft/content", draft.SetContent)
	api.POST("/draft/platforms/:platform", draft.SelectPlatform)
	api.PUT("/draft/schedule", draft.SetSchedule)
	api.POST("/draft/submit", draft.Submit)
	api.GET("/posts", posts.List)
	api.GET("/posts/:id", posts.Get)
	api.POST("/posts/:id/schedule", posts.Schedule)
	api.POST("/posts/:id/publish", posts.Publish)
	api.GET("/stats", posts.Stats)
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, dto.Res) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", "user-1")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	var res dto.Res
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	return w, res
}

// connect runs a full handshake for platform through the HTTP endpoints.
func (f *fixture) connect(t *testing.T, platform model.Platform) {
	t.Helper()
	var nonce string
	f.provider.On("AuthCodeURL", platform, mock.Anything).
		Run(func(args mock.Arguments) { nonce = args.String(1) }).
		Return("https://auth.example/"+platform.Slug(), nil).Once()
	f.provider.On("Exchange", mock.Anything, platform, "code-"+platform.Slug()).
		Return(model.TokenBundle{AccessToken: "at"}, &model.UserInfo{Username: "me"}, nil).Once()

	w, _ := f.do(t, http.MethodPost, "/api/oauth/"+platform.Slug()+"/begin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = f.do(t, http.MethodPost, "/api/oauth/"+platform.Slug()+"/callback", dto.CallbackRequest{Code: "code-" + platform.Slug(), State: nonce})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
