package utils

import (
	"algoritmia/config"
	"algoritmia/database"
	"algoritmia/models"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

// sessionCreatedEvent is the payload the notification collaborator receives
// for every newly assigned reinforcement session.
type sessionCreatedEvent struct {
	SessionID   uint      `json:"session_id"`
	StudentID   uint      `json:"student_id"`
	StudentName string    `json:"student_name"`
	Tema        string    `json:"tema"`
	Difficulty  string    `json:"difficulty"`
	Origin      string    `json:"origin"`
	DueDate     time.Time `json:"due_date"`
	Link        string    `json:"link"`
}

// NotifySessionAssigned is wired as the session manager's Notifier. It mails
// the student and, when configured, posts the event to the notification
// webhook. Failures are logged and never bubble into the assignment flow.
func NotifySessionAssigned(session models.ReinforcementSession) {
	db := database.Database.Db

	var student models.User
	if err := db.First(&student, session.StudentID).Error; err != nil {
		log.Printf("[NOTIFY] student %d not found for session %d: %v", session.StudentID, session.ID, err)
		return
	}

	var difficulty models.Difficulty
	if err := db.First(&difficulty, session.DifficultyID).Error; err != nil {
		log.Printf("[NOTIFY] difficulty %d not found for session %d: %v", session.DifficultyID, session.ID, err)
		return
	}

	link := fmt.Sprintf("%s/session/code/%s", config.AppConfig.AppBaseURL, session.AccessCode)

	if student.Email != "" {
		SendSessionAssignedEmail(student.Email, student.Name, difficulty.Tema, difficulty.Name, session.DueDate, link)
	}

	if config.AppConfig.NotifyWebhook == "" {
		return
	}

	event := sessionCreatedEvent{
		SessionID:   session.ID,
		StudentID:   student.ID,
		StudentName: student.Name,
		Tema:        difficulty.Tema,
		Difficulty:  difficulty.Name,
		Origin:      session.Origin,
		DueDate:     session.DueDate,
		Link:        link,
	}

	client := resty.New().SetTimeout(10 * time.Second)
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(config.AppConfig.NotifyWebhook)
	if err != nil {
		log.Printf("[NOTIFY] webhook delivery failed for session %d: %v", session.ID, err)
		return
	}
	if resp.StatusCode() >= 300 {
		log.Printf("[NOTIFY] webhook returned %d for session %d", resp.StatusCode(), session.ID)
	}
}
