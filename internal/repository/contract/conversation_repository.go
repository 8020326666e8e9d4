package contract

import "session-intelligence-be/internal/entity"

// IConversationRepository stores conversation turns for the lifetime of the
// process. Append-only; there is no eviction.
type IConversationRepository interface {
	GenerateID() string
	Append(conversationID, role, content string)
	Get(conversationID string) []entity.ChatMessage
	SetMetadata(conversationID string, metadata map[string]interface{})
	GetMetadata(conversationID string) (map[string]interface{}, bool)
}
