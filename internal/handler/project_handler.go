package handler

import (
	"errors"
	"net/http"
	"strings"

	"terravest/internal/models"
	"terravest/internal/repository"
	"terravest/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	repo    *repository.ProjectRepository
	uploads cloudinary.Client
}

func NewProjectHandler(repo *repository.ProjectRepository, uploads cloudinary.Client) *ProjectHandler {
	return &ProjectHandler{repo: repo, uploads: uploads}
}

func (h *ProjectHandler) ListPublished(c *gin.Context) {
	limit, offset := paginate(c)
	list, total, err := h.repo.ListPublished(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": list, "total": total})
}

func (h *ProjectHandler) GetPublished(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	p, err := h.repo.GetPublishedByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *ProjectHandler) List(c *gin.Context) {
	limit, offset := paginate(c)
	list, total, err := h.repo.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": list, "total": total})
}

// Get returns a project regardless of publish state.
func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	p, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *ProjectHandler) Create(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	published, err := parseStrictBool(c.DefaultPostForm("published", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "published " + err.Error()})
		return
	}
	p := &models.Project{
		Title:       title,
		Summary:     c.PostForm("summary"),
		Body:        c.PostForm("body"),
		IsPublished: published,
	}
	if file, err := c.FormFile("cover"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable cover"})
			return
		}
		defer f.Close()
		url, err := h.uploads.UploadImage(c.Request.Context(), f, "projects", uuid.New().String())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "cover upload failed"})
			return
		}
		p.CoverURL = url
	}
	if err := h.repo.Create(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create project"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": p})
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	p, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	if title := strings.TrimSpace(c.PostForm("title")); title != "" {
		p.Title = title
	}
	if v, ok := c.GetPostForm("summary"); ok {
		p.Summary = v
	}
	if v, ok := c.GetPostForm("body"); ok {
		p.Body = v
	}
	if raw, ok := c.GetPostForm("published"); ok {
		published, err := parseStrictBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "published " + err.Error()})
			return
		}
		p.IsPublished = published
	}
	if file, err := c.FormFile("cover"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable cover"})
			return
		}
		defer f.Close()
		url, err := h.uploads.UploadImage(c.Request.Context(), f, "projects", uuid.New().String())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "cover upload failed"})
			return
		}
		p.CoverURL = url
	}
	if err := h.repo.Update(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update project"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.repo.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete project"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}
