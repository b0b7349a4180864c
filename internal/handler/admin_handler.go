package handler

import (
	"errors"
	"net/http"

	"terravest/internal/domain"
	"terravest/internal/middleware"
	"terravest/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminHandler serves the dashboard counters and member administration.
type AdminHandler struct {
	users     *repository.UserRepository
	news      *repository.NewsRepository
	events    *repository.EventRepository
	projects  *repository.ProjectRepository
	gallery   *repository.GalleryRepository
	resources *repository.ResourceRepository
	partners  *repository.PartnerRepository
}

func NewAdminHandler(
	users *repository.UserRepository,
	news *repository.NewsRepository,
	events *repository.EventRepository,
	projects *repository.ProjectRepository,
	gallery *repository.GalleryRepository,
	resources *repository.ResourceRepository,
	partners *repository.PartnerRepository,
) *AdminHandler {
	return &AdminHandler{
		users:     users,
		news:      news,
		events:    events,
		projects:  projects,
		gallery:   gallery,
		resources: resources,
		partners:  partners,
	}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	counts := gin.H{}
	for name, count := range map[string]func() (int64, error){
		"users":     h.users.Count,
		"news":      h.news.Count,
		"events":    h.events.Count,
		"projects":  h.projects.Count,
		"gallery":   h.gallery.Count,
		"resources": h.resources.Count,
		"partners":  h.partners.Count,
	} {
		n, err := count()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "dashboard unavailable"})
			return
		}
		counts[name] = n
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := paginate(c)
	users, total, err := h.users.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	u, err := h.users.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

type updateUserRequest struct {
	Name  string `json:"name" binding:"omitempty,min=2,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
	Role  string `json:"role" binding:"omitempty,oneof=ADMIN MEMBER"`
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.users.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	if req.Role != "" {
		if id == middleware.GetUserID(c) && req.Role != domain.RoleAdmin {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot demote your own account"})
			return
		}
		u.Role = req.Role
	}
	if err := h.users.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if id == middleware.GetUserID(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete your own account"})
		return
	}
	if err := h.users.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
