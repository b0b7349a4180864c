package handler

import (
	"net/http"

	"terravest/internal/models"
	"terravest/internal/repository"

	"github.com/gin-gonic/gin"
)

// ContactMailer is the slice of MailService the contact form needs.
type ContactMailer interface {
	ForwardContactMessage(fromName, fromEmail, subject, message string) error
	SendContactAutoReply(to, name string) error
}

type ContactHandler struct {
	repo *repository.ContactRepository
	mail ContactMailer
}

func NewContactHandler(repo *repository.ContactRepository, mail ContactMailer) *ContactHandler {
	return &ContactHandler{repo: repo, mail: mail}
}

type contactRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"max=200"`
	Message string `json:"message" binding:"required,min=10"`
}

// Submit stores the message, then forwards it to the admin inbox. The mail
// forward is best effort; the stored row is the source of truth.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m := &models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}
	if err := h.repo.Create(m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not submit message"})
		return
	}
	subject := req.Subject
	if subject == "" {
		subject = "Website enquiry"
	}
	_ = h.mail.ForwardContactMessage(req.Name, req.Email, subject, req.Message)
	_ = h.mail.SendContactAutoReply(req.Email, req.Name)
	c.JSON(http.StatusCreated, gin.H{"message": "thanks, we will get back to you"})
}

func (h *ContactHandler) List(c *gin.Context) {
	limit, offset := paginate(c)
	list, total, err := h.repo.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": list, "total": total})
}
