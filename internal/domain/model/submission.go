// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/ismailopm12/coffeeqc/internal/domain/intake"
)

// Submission is a record queued for asynchronous scoring.
type Submission struct {
	ID         string        // idempotency key
	Kind       intake.Kind   // scoring variant
	SampleID   string        // lot or sample the record belongs to, optional
	Fields     intake.Fields // raw form values
	ReceivedAt time.Time
}

// NewSubmission builds a Submission, generating an ID when id is blank.
func NewSubmission(id string, kind intake.Kind, sampleID string, fields intake.Fields) Submission {
	if id == "" {
		id = uuid.NewString()
	}
	return Submission{
		ID:         id,
		Kind:       kind,
		SampleID:   sampleID,
		Fields:     fields,
		ReceivedAt: time.Now().UTC(),
	}
}
