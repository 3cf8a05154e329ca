package common

import (
	"github.com/google/uuid"
)

// NewQueryID generates a unique query ID with the "qry_" prefix
func NewQueryID() string {
	return "qry_" + uuid.New().String()
}

// NewTraceID generates a unique trace ID with the "trc_" prefix
func NewTraceID() string {
	return "trc_" + uuid.New().String()
}

// NewSpanID generates a unique span ID with the "spn_" prefix
func NewSpanID() string {
	return "spn_" + uuid.New().String()
}
