package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"terravest/internal/models"
	"terravest/internal/repository"
	"terravest/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventHandler struct {
	repo    *repository.EventRepository
	uploads cloudinary.Client
}

func NewEventHandler(repo *repository.EventRepository, uploads cloudinary.Client) *EventHandler {
	return &EventHandler{repo: repo, uploads: uploads}
}

func (h *EventHandler) List(c *gin.Context) {
	limit, offset := paginate(c)
	list, total, err := h.repo.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": list, "total": total})
}

func (h *EventHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	e, err := h.repo.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": e})
}

// Create accepts a multipart form: title, description, location, start_date
// (RFC 3339), optional end_date and an optional banner image.
func (h *EventHandler) Create(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	start, err := time.Parse(time.RFC3339, c.PostForm("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be RFC 3339"})
		return
	}
	e := &models.Event{
		Title:       title,
		Description: c.PostForm("description"),
		Location:    c.PostForm("location"),
		StartDate:   start,
	}
	if raw := c.PostForm("end_date"); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be RFC 3339"})
			return
		}
		if end.Before(start) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must not be before start_date"})
			return
		}
		e.EndDate = &end
	}
	if file, err := c.FormFile("banner"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable banner"})
			return
		}
		defer f.Close()
		url, err := h.uploads.UploadImage(c.Request.Context(), f, "events", uuid.New().String())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "banner upload failed"})
			return
		}
		e.BannerURL = url
	}
	if err := h.repo.Create(e); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create event"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event": e})
}

func (h *EventHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	e, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	if title := strings.TrimSpace(c.PostForm("title")); title != "" {
		e.Title = title
	}
	if v, ok := c.GetPostForm("description"); ok {
		e.Description = v
	}
	if v, ok := c.GetPostForm("location"); ok {
		e.Location = v
	}
	if raw := c.PostForm("start_date"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be RFC 3339"})
			return
		}
		e.StartDate = start
	}
	if raw := c.PostForm("end_date"); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be RFC 3339"})
			return
		}
		e.EndDate = &end
	}
	if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must not be before start_date"})
		return
	}
	if file, err := c.FormFile("banner"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable banner"})
			return
		}
		defer f.Close()
		url, err := h.uploads.UploadImage(c.Request.Context(), f, "events", uuid.New().String())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "banner upload failed"})
			return
		}
		e.BannerURL = url
	}
	if err := h.repo.Update(e); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update event"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": e})
}

func (h *EventHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.repo.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete event"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event deleted"})
}
