package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"terravest/internal/domain"
	"terravest/internal/models"
	"terravest/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func adminTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *models.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	admin := &models.User{Name: "Site Admin", Email: "admin@example.com", Role: domain.RoleAdmin}
	require.NoError(t, db.Create(admin).Error)

	h := NewAdminHandler(repository.NewUserRepository(db), nil, nil, nil, nil, nil, nil)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", admin.ID) })
	r.GET("/admin/users/:id", h.GetUser)
	r.PUT("/admin/users/:id", h.UpdateUser)
	return r, db, admin
}

func TestAdminGetUser(t *testing.T) {
	r, db, _ := adminTestRouter(t)
	member := &models.User{Name: "Ada Obi", Email: "ada@example.com", Role: domain.RoleMember}
	require.NoError(t, db.Create(member).Error)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users/2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ada@example.com")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users/99", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminUpdateUser(t *testing.T) {
	r, db, admin := adminTestRouter(t)
	member := &models.User{Name: "Ada Obi", Email: "ada@example.com", Role: domain.RoleMember}
	require.NoError(t, db.Create(member).Error)

	req := httptest.NewRequest(http.MethodPut, "/admin/users/2", strings.NewReader(`{"name":"Ada O.","role":"ADMIN"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.User
	require.NoError(t, db.First(&got, member.ID).Error)
	require.Equal(t, "Ada O.", got.Name)
	require.Equal(t, domain.RoleAdmin, got.Role)

	// An unknown role is rejected before anything is written.
	req = httptest.NewRequest(http.MethodPut, "/admin/users/2", strings.NewReader(`{"role":"SUPERUSER"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Admins cannot demote themselves.
	req = httptest.NewRequest(http.MethodPut, "/admin/users/1", strings.NewReader(`{"role":"MEMBER"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var self models.User
	require.NoError(t, db.First(&self, admin.ID).Error)
	require.Equal(t, domain.RoleAdmin, self.Role)
}
