package handler

import (
	"errors"
	"mime/multipart"
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

type NewsHandler struct {
	repo    *repository.NewsRepository
	uploads cloudinary.Client
}

func NewNewsHandler(repo *repository.NewsRepository, uploads cloudinary.Client) *NewsHandler {
	return &NewsHandler{repo: repo, uploads: uploads}
}

func (h *NewsHandler) ListPublished(c *gin.Context) {
	limit, offset := paginate(c)
	list, total, err := h.repo.ListPublished(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": list, "total": total})
}

func (h *NewsHandler) GetPublished(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	n, err := h.repo.GetPublishedByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": n})
}

func (h *NewsHandler) List(c *gin.Context) {
	limit, offset := paginate(c)
	list, total, err := h.repo.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": list, "total": total})
}

// Get returns an article regardless of publish state.
func (h *NewsHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	n, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": n})
}

// Create accepts a multipart form: title, content, published and an optional
// image file. The published flag must be one of true/false/1/0 exactly.
func (h *NewsHandler) Create(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	content := c.PostForm("content")
	if title == "" || content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and content are required"})
		return
	}
	published, err := parseStrictBool(c.DefaultPostForm("published", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "published " + err.Error()})
		return
	}

	n := &models.News{
		Title:       title,
		Slug:        slugify(title),
		Content:     content,
		IsPublished: published,
	}
	if published {
		now := time.Now()
		n.PublishedAt = &now
	}
	if file, err := c.FormFile("image"); err == nil {
		url, err := h.uploadImage(c, file, "news")
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
			return
		}
		n.ImageURL = url
	}
	if err := h.repo.Create(n); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create article"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"news": n})
}

func (h *NewsHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	n, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	if title := strings.TrimSpace(c.PostForm("title")); title != "" {
		n.Title = title
		n.Slug = slugify(title)
	}
	if content := c.PostForm("content"); content != "" {
		n.Content = content
	}
	if raw, ok := c.GetPostForm("published"); ok {
		published, err := parseStrictBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "published " + err.Error()})
			return
		}
		if published && !n.IsPublished {
			now := time.Now()
			n.PublishedAt = &now
		}
		n.IsPublished = published
	}
	if file, err := c.FormFile("image"); err == nil {
		url, err := h.uploadImage(c, file, "news")
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
			return
		}
		n.ImageURL = url
	}
	if err := h.repo.Update(n); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update article"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": n})
}

func (h *NewsHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.repo.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete article"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "article deleted"})
}

func (h *NewsHandler) uploadImage(c *gin.Context, file *multipart.FileHeader, folder string) (string, error) {
	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.uploads.UploadImage(c.Request.Context(), f, folder, uuid.New().String())
}

// slugify lowercases and collapses non-alphanumerics to single hyphens.
func slugify(s string) string {
	var b strings.Builder
	prevHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
