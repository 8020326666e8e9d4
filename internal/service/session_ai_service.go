package service

import (
	"context"

	"session-intelligence-be/internal/dto"
	"session-intelligence-be/internal/entity"
	"session-intelligence-be/internal/pkg/logger"
	"session-intelligence-be/internal/pkg/serverutils"
	"session-intelligence-be/internal/repository/contract"
	"session-intelligence-be/pkg/llm"
)

// DefaultMaxContextChars bounds the total rendered text handed to the LLM.
const DefaultMaxContextChars = 12_000

type ISessionAIService interface {
	Summarize(ctx context.Context, sessionID string) (*dto.SessionSummaryResponse, error)
	Chat(ctx context.Context, sessionID string, req *dto.SessionChatRequest) (*dto.SessionChatResponse, error)
}

type sessionAIService struct {
	repository      contract.ISessionRepository
	llmProvider     llm.LLMProvider
	conversations   contract.IConversationRepository
	fallbackEnabled bool // echoed in "not found" payloads
	maxContextChars int
	log             logger.ILogger
}

func NewSessionAIService(
	repository contract.ISessionRepository,
	llmProvider llm.LLMProvider,
	conversations contract.IConversationRepository,
	fallbackEnabled bool,
	log logger.ILogger,
) ISessionAIService {
	return &sessionAIService{
		repository:      repository,
		llmProvider:     llmProvider,
		conversations:   conversations,
		fallbackEnabled: fallbackEnabled,
		maxContextChars: DefaultMaxContextChars,
		log:             log,
	}
}

func (s *sessionAIService) Summarize(ctx context.Context, sessionID string) (*dto.SessionSummaryResponse, error) {
	documents, _, err := s.loadDocuments(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	summary, err := s.llmProvider.Generate(ctx, buildSummaryPrompt(sessionID, documents))
	if err != nil {
		return nil, err
	}

	return &dto.SessionSummaryResponse{
		SessionID:     sessionID,
		Summary:       summary,
		UsedDocuments: documents,
	}, nil
}

func (s *sessionAIService) Chat(ctx context.Context, sessionID string, req *dto.SessionChatRequest) (*dto.SessionChatResponse, error) {
	documents, lookup, err := s.loadDocuments(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	conversationID := req.ConversationID
	var history []entity.ChatMessage
	if conversationID != "" {
		history = s.conversations.Get(conversationID)
	} else {
		conversationID = s.conversations.GenerateID()
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: chatSystemPrompt})
	for _, turn := range history {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, llm.Message{
		Role:    "user",
		Content: buildQuestionPrompt(sessionID, req.Question, documents, formatConversationHistory(history)),
	})

	answer, err := s.llmProvider.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}

	s.conversations.Append(conversationID, "user", req.Question)
	s.conversations.Append(conversationID, "assistant", answer)

	// Persist the most recent lookup metadata for debugging purposes.
	s.conversations.SetMetadata(conversationID, map[string]interface{}{
		"lookup": map[string]interface{}{
			"requested_collections": lookup.RequestedCollections,
			"collections":           lookup.ScannedCollections,
			"matched_collections":   lookup.MatchedCollections,
		},
	})

	return &dto.SessionChatResponse{
		SessionID:      sessionID,
		Answer:         answer,
		UsedDocuments:  documents,
		ConversationID: conversationID,
		History:        s.conversations.Get(conversationID),
	}, nil
}

func (s *sessionAIService) loadDocuments(ctx context.Context, sessionID string) ([]entity.SessionDocument, *contract.SessionLookupResult, error) {
	lookup, err := s.repository.FetchSessionDocuments(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if len(lookup.Documents) == 0 {
		return nil, nil, s.notFoundError(lookup)
	}
	return truncateDocuments(lookup.Documents, s.maxContextChars), lookup, nil
}

// notFoundError surfaces everything the lookup learned, so operators can see
// exactly what was searched without the store being queried again.
func (s *sessionAIService) notFoundError(lookup *contract.SessionLookupResult) error {
	s.log.Warn("session_ai", "session lookup found no documents", map[string]interface{}{
		"session_id":          lookup.SessionID,
		"collections_scanned": len(lookup.ScannedCollections),
		"connection_ok":       lookup.ConnectionOK,
	})

	collectionDocuments := make(map[string][]string, len(lookup.CollectionSamples))
	collectionCounts := make(map[string]int64, len(lookup.CollectionSamples))
	for _, sample := range lookup.CollectionSamples {
		collectionDocuments[sample.Collection] = sample.Documents
		collectionCounts[sample.Collection] = sample.EstimatedCount
	}

	return serverutils.NewNotFoundError("Session not found", map[string]interface{}{
		"session_id":                  lookup.SessionID,
		"checked_fields":              lookup.SessionIDFields,
		"target_collections":          lookup.RequestedCollections,
		"candidate_values":            lookup.CandidateValues,
		"mongo_connection_ok":         lookup.ConnectionOK,
		"collections_scanned":         lookup.ScannedCollections,
		"fallback_scan_enabled":       s.fallbackEnabled,
		"fallback_documents_scanned":  lookup.FallbackDocumentsScanned,
		"fallback_collections":        lookup.FallbackCollections,
		"collection_documents":        collectionDocuments,
		"collection_estimated_counts": collectionCounts,
	})
}

// truncateDocuments walks the ordered documents once, keeping whole documents
// while they fit and cutting the final one at the remaining budget. Strict
// streaming prefix: nothing past the cut is included, even if it would fit.
func truncateDocuments(documents []entity.SessionDocument, maxCharacters int) []entity.SessionDocument {
	var truncated []entity.SessionDocument
	runningTotal := 0
	for _, document := range documents {
		content := document.Content
		if runningTotal+len(content) > maxCharacters {
			remaining := maxCharacters - runningTotal
			if remaining <= 0 {
				break
			}
			content = content[:remaining]
		}
		document.Content = content
		truncated = append(truncated, document)
		runningTotal += len(content)
		if runningTotal >= maxCharacters {
			break
		}
	}
	return truncated
}
