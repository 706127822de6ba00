package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"starweb/internal/repository"
	"starweb/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubUserService struct {
	service.UserService
	user   *repository.User
	err    error
	called bool
}

func (s *stubUserService) GetByToken(ctx context.Context, token string) (*repository.User, error) {
	s.called = true
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func adminTestRouter(stub *stubUserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/ping", AdminAuth(stub), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 200, "user_id": c.GetInt64("user_id")})
	})
	return r
}

func TestAdminAuthEmptyToken(t *testing.T) {
	stub := &stubUserService{}
	r := adminTestRouter(stub)

	// 没带Token直接拒绝，不能落到按空Token查用户
	req := httptest.NewRequest("GET", "/admin/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), `"code":401`)
	assert.False(t, stub.called)
}

func TestAdminAuthInvalidToken(t *testing.T) {
	stub := &stubUserService{err: errors.New("user not found")}
	r := adminTestRouter(stub)

	req := httptest.NewRequest("GET", "/admin/ping", nil)
	req.Header.Set("Authorization", "deadbeef")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), `"code":401`)
	assert.True(t, stub.called)
}

func TestAdminAuthNonAdmin(t *testing.T) {
	stub := &stubUserService{user: &repository.User{ID: 7, IsAdmin: false}}
	r := adminTestRouter(stub)

	req := httptest.NewRequest("GET", "/admin/ping", nil)
	req.Header.Set("Authorization", "usertoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), `"code":403`)
}

func TestAdminAuthAdminPasses(t *testing.T) {
	stub := &stubUserService{user: &repository.User{ID: 1, IsAdmin: true}}
	r := adminTestRouter(stub)

	req := httptest.NewRequest("GET", "/admin/ping", nil)
	req.Header.Set("Authorization", "admintoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), `"code":200`)
	assert.Contains(t, w.Body.String(), `"user_id":1`)
}
