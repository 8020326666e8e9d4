package dto

import "session-intelligence-be/internal/entity"

type SessionChatRequest struct {
	Question       string `json:"question" validate:"required"`
	ConversationID string `json:"conversation_id"`
}

type SessionSummaryResponse struct {
	SessionID     string                   `json:"session_id"`
	Summary       string                   `json:"summary"`
	UsedDocuments []entity.SessionDocument `json:"used_documents"`
}

type SessionChatResponse struct {
	SessionID      string                   `json:"session_id"`
	Answer         string                   `json:"answer"`
	UsedDocuments  []entity.SessionDocument `json:"used_documents"`
	ConversationID string                   `json:"conversation_id"`
	History        []entity.ChatMessage     `json:"history"`
}
