package handler

import (
	"net/http"
	"strings"

	"terravest/internal/repository"

	"github.com/gin-gonic/gin"
)

// SearchHandler runs one keyword query across the public collections.
type SearchHandler struct {
	news     *repository.NewsRepository
	events   *repository.EventRepository
	projects *repository.ProjectRepository
}

func NewSearchHandler(news *repository.NewsRepository, events *repository.EventRepository, projects *repository.ProjectRepository) *SearchHandler {
	return &SearchHandler{news: news, events: events, projects: projects}
}

func (h *SearchHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if len(q) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must be at least 2 characters"})
		return
	}
	news, err := h.news.Search(q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	events, err := h.events.Search(q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	projects, err := h.projects.Search(q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":    q,
		"news":     news,
		"events":   events,
		"projects": projects,
	})
}
