package service

import (
	"encoding/json"
	"log"

	"terravest/internal/models"
	"terravest/internal/repository"

	"gorm.io/gorm"
)

// NotificationService records user-visible notifications for wallet state
// transitions and CMS events. Failures here never abort the caller's flow
// unless the write is part of the caller's transaction.
type NotificationService struct {
	repo *repository.NotificationRepository
}

func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	n := s.build(userID, notifType, title, body, data)
	if err := s.repo.Create(n); err != nil {
		log.Printf("[Notify] create failed user=%d type=%s: %v", userID, notifType, err)
		return err
	}
	return nil
}

// NotifyTx writes the notification inside the caller's transaction so it
// commits or aborts together with the state transition it describes.
func (s *NotificationService) NotifyTx(tx *gorm.DB, userID uint, notifType, title, body string, data map[string]interface{}) error {
	return s.repo.CreateTx(tx, s.build(userID, notifType, title, body, data))
}

func (s *NotificationService) build(userID uint, notifType, title, body string, data map[string]interface{}) *models.Notification {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	return &models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	}
}
