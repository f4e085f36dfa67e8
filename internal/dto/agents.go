package dto

// CreateAgentRequest is used by administrators to add agents to the roster.
type CreateAgentRequest struct {
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Specialty        string  `json:"specialty"`
	ConversionWeight float64 `json:"conversion_weight"`
}
