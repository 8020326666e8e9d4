package entity

// SessionDocument is one record associated with a session, rendered for
// consumption by the LLM and by API clients.
type SessionDocument struct {
	Source       string   `json:"source"`                  // collection the record came from
	Content      string   `json:"content"`                 // human-readable rendering
	BatchIndex   *int     `json:"batch_index,omitempty"`   // optional chronological ordering key
	TotalEvents  *int     `json:"total_events,omitempty"`  // optional count of events the record represents
	EventPreview []string `json:"event_preview,omitempty"` // short descriptions of embedded events
}

// ChatMessage is one turn in a session conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}
