package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"terravest/internal/models"
	"terravest/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingMailer struct {
	forwarded     []string
	autoRepliedTo []string
}

func (m *recordingMailer) ForwardContactMessage(fromName, fromEmail, subject, message string) error {
	m.forwarded = append(m.forwarded, fromEmail)
	return nil
}

func (m *recordingMailer) SendContactAutoReply(to, name string) error {
	m.autoRepliedTo = append(m.autoRepliedTo, to)
	return nil
}

func TestContactSubmitStoresForwardsAndAcknowledges(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ContactMessage{}))

	mailer := &recordingMailer{}
	h := NewContactHandler(repository.NewContactRepository(db), mailer)
	r := gin.New()
	r.POST("/contact", h.Submit)

	body := `{"name":"Ada Obi","email":"ada@example.com","subject":"Plots","message":"I would like to know more about available plots."}`
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var stored models.ContactMessage
	require.NoError(t, db.First(&stored).Error)
	require.Equal(t, "ada@example.com", stored.Email)

	// Forwarded to the admin inbox and acknowledged to the sender.
	require.Equal(t, []string{"ada@example.com"}, mailer.forwarded)
	require.Equal(t, []string{"ada@example.com"}, mailer.autoRepliedTo)
}
