package entity

import (
	"time"

	"github.com/google/uuid"
)

// Agent is one entry in the sales agents roster.
type Agent struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Specialty        string    `json:"specialty,omitempty"`
	OpenLeads        int       `json:"open_leads"`
	ConversionWeight float64   `json:"conversion_weight"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
