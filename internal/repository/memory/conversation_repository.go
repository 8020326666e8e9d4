package memory

import (
	"sync"

	"session-intelligence-be/internal/entity"
	"session-intelligence-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ConversationRepository keeps conversation turns in process memory for the
// lifetime of the service. Turns are append-only; nothing expires.
type ConversationRepository struct {
	turns *cache.Cache
	meta  *cache.Cache
	mu    sync.Mutex
}

var _ contract.IConversationRepository = (*ConversationRepository)(nil)

func NewConversationRepository() *ConversationRepository {
	return &ConversationRepository{
		turns: cache.New(cache.NoExpiration, 0),
		meta:  cache.New(cache.NoExpiration, 0),
	}
}

func (r *ConversationRepository) GenerateID() string {
	return uuid.NewString()
}

func (r *ConversationRepository) Append(conversationID, role, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var history []entity.ChatMessage
	if x, found := r.turns.Get(conversationID); found {
		history = x.([]entity.ChatMessage)
	}
	history = append(history, entity.ChatMessage{Role: role, Content: content})
	r.turns.Set(conversationID, history, cache.NoExpiration)
}

func (r *ConversationRepository) Get(conversationID string) []entity.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.turns.Get(conversationID)
	if !found {
		return nil
	}
	history := x.([]entity.ChatMessage)
	out := make([]entity.ChatMessage, len(history))
	copy(out, history)
	return out
}

// SetMetadata stores the most recent lookup metadata for a conversation,
// used only for debugging.
func (r *ConversationRepository) SetMetadata(conversationID string, metadata map[string]interface{}) {
	r.meta.Set(conversationID, metadata, cache.NoExpiration)
}

func (r *ConversationRepository) GetMetadata(conversationID string) (map[string]interface{}, bool) {
	if x, found := r.meta.Get(conversationID); found {
		return x.(map[string]interface{}), true
	}
	return nil, false
}
