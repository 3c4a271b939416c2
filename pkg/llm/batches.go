// Message batch types
package llm

import "time"

// ProcessingStatus is the lifecycle state of a message batch
type ProcessingStatus string

const (
	BatchStatusInProgress ProcessingStatus = "in_progress"
	BatchStatusCanceling  ProcessingStatus = "canceling"
	BatchStatusCanceled   ProcessingStatus = "canceled"
	BatchStatusCompleted  ProcessingStatus = "completed"
	BatchStatusEnded      ProcessingStatus = "ended"
)

// RequestCounts tallies the requests of a batch by outcome
type RequestCounts struct {
	Processing int `json:"processing"`
	Succeeded  int `json:"succeeded"`
	Errored    int `json:"errored"`
	Canceled   int `json:"canceled"`
	Expired    int `json:"expired"`
}

// Completed returns the number of requests that reached a terminal outcome
func (c RequestCounts) Completed() int {
	return c.Succeeded + c.Errored + c.Canceled + c.Expired
}

// Total returns the number of requests in the batch
func (c RequestCounts) Total() int {
	return c.Processing + c.Completed()
}

// MessageBatch is a bulk-submitted set of message requests
type MessageBatch struct {
	ID                string           `json:"id"`
	Type              string           `json:"type"`
	ProcessingStatus  ProcessingStatus `json:"processing_status"`
	RequestCounts     RequestCounts    `json:"request_counts"`
	CreatedAt         time.Time        `json:"created_at"`
	EndedAt           *time.Time       `json:"ended_at"`
	ExpiresAt         time.Time        `json:"expires_at"`
	CancelInitiatedAt *time.Time       `json:"cancel_initiated_at"`
	ArchivedAt        *time.Time       `json:"archived_at"`
	ResultsURL        *string          `json:"results_url"`
}

// BatchRequest is a single request inside a batch
type BatchRequest struct {
	CustomID string        `json:"custom_id"`
	Params   MessageParams `json:"params"`
}

// BatchCreateParams is the body of a batch create call
type BatchCreateParams struct {
	Requests []BatchRequest `json:"requests"`
}

// BatchListParams selects a page of batches
type BatchListParams struct {
	Limit    int    `json:"limit,omitempty"`
	AfterID  string `json:"after_id,omitempty"`
	BeforeID string `json:"before_id,omitempty"`
}

// BatchPage is one page of a batch listing
type BatchPage struct {
	Data    []MessageBatch `json:"data"`
	HasMore bool           `json:"has_more"`
	FirstID string         `json:"first_id"`
	LastID  string         `json:"last_id"`
}

// BatchResultType is the outcome of one request of a batch
type BatchResultType string

const (
	BatchResultSucceeded BatchResultType = "succeeded"
	BatchResultErrored   BatchResultType = "errored"
	BatchResultCanceled  BatchResultType = "canceled"
	BatchResultExpired   BatchResultType = "expired"
)

// BatchResult holds the outcome of one batch request
type BatchResult struct {
	Type    BatchResultType `json:"type"`
	Message *Message        `json:"message,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// BatchIndividualResponse is one line of a batch results file
type BatchIndividualResponse struct {
	CustomID string      `json:"custom_id"`
	Result   BatchResult `json:"result"`
}
