package models

import (
	"time"
)

// Query is the immutable input to the pipeline
type Query struct {
	ID         string    `json:"id"` // qry_{uuid}
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}
