// Model listing types
package llm

import "time"

// Model describes a model available to the client
type Model struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// ModelListParams selects a page of models
type ModelListParams struct {
	Limit int `json:"limit,omitempty"`
}

// ModelPage is one page of a model listing
type ModelPage struct {
	Data    []Model `json:"data"`
	HasMore bool    `json:"has_more"`
	FirstID string  `json:"first_id"`
	LastID  string  `json:"last_id"`
}
