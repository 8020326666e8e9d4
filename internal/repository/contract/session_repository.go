package contract

import (
	"context"

	"session-intelligence-be/internal/entity"
)

// ISessionRepository aggregates session documents from every collection of
// the document store.
type ISessionRepository interface {
	FetchSessionDocuments(ctx context.Context, sessionID string) (*SessionLookupResult, error)
}

// SessionLookupResult carries everything one resolution produced, including
// the provenance a "not found" response needs. Consumers treat it read-only.
type SessionLookupResult struct {
	SessionID                string
	Documents                []entity.SessionDocument
	SessionIDFields          []string
	RequestedCollections     []string
	CandidateValues          []string // every candidate representation tried, rendered as text
	ScannedCollections       []string
	MatchedCollections       []string
	FallbackCollections      []string // matched only by the deep scan, lower confidence
	FallbackDocumentsScanned int
	ConnectionOK             bool
	CollectionSamples        []CollectionSample // populated only when zero documents matched
}

// CollectionSample is a per-collection diagnostic dump collected on total miss.
type CollectionSample struct {
	Collection     string   `json:"collection"`
	EstimatedCount int64    `json:"estimated_count"`
	Documents      []string `json:"documents"`
}
