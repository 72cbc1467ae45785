package models

import (
	"errors"
	"time"
)

type Rating struct {
	ID         int       `json:"id"`
	EmployeeID int       `json:"employee_id"`
	ReviewerID int       `json:"reviewer_id"`
	Score      int       `json:"score"` // 1..5
	Comments   string    `json:"comments"`
	CreatedAt  time.Time `json:"created_at"`
}

// ValidateScore checks that a rating score is on the 1-5 scale.
func ValidateScore(score int) error {
	if score < 1 || score > 5 {
		return errors.New("score must be between 1 and 5")
	}
	return nil
}
