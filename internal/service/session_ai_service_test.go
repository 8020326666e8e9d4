package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"session-intelligence-be/internal/dto"
	"session-intelligence-be/internal/entity"
	"session-intelligence-be/internal/pkg/serverutils"
	"session-intelligence-be/internal/repository/contract"
	"session-intelligence-be/internal/repository/memory"
	"session-intelligence-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeRepository struct {
	result *contract.SessionLookupResult
}

func (f *fakeRepository) FetchSessionDocuments(_ context.Context, sessionID string) (*contract.SessionLookupResult, error) {
	result := *f.result
	result.SessionID = sessionID
	return &result, nil
}

type fakeLLM struct {
	chatCalls [][]llm.Message
	prompts   []string
}

func (f *fakeLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	f.chatCalls = append(f.chatCalls, history)
	return fmt.Sprintf("answer-%d", len(f.chatCalls)), nil
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return "summary", nil
}

func lookupResultWith(documents []entity.SessionDocument) *contract.SessionLookupResult {
	return &contract.SessionLookupResult{
		Documents:            documents,
		SessionIDFields:      []string{"sessionId"},
		RequestedCollections: []string{"traces"},
		CandidateValues:      []string{"string:session-1"},
		ScannedCollections:   []string{"traces"},
		MatchedCollections:   []string{"traces"},
		ConnectionOK:         true,
	}
}

func newTestService(repo contract.ISessionRepository, provider llm.LLMProvider) ISessionAIService {
	return NewSessionAIService(repo, provider, memory.NewConversationRepository(), true, nopLogger{})
}

func TestTruncateDocumentsLimitsTotalCharacters(t *testing.T) {
	batchOne := 1
	documents := []entity.SessionDocument{
		{Source: "a", Content: strings.Repeat("x", 6000), BatchIndex: &batchOne, EventPreview: []string{"alpha"}},
		{Source: "b", Content: strings.Repeat("y", 6000)},
		{Source: "c", Content: strings.Repeat("z", 6000)},
	}

	truncated := truncateDocuments(documents, 12_000)

	assert.Len(t, truncated, 2)
	total := 0
	for _, doc := range truncated {
		total += len(doc.Content)
	}
	assert.Equal(t, 12_000, total)
	assert.Equal(t, "a", truncated[0].Source)
	assert.Equal(t, "b", truncated[1].Source)
	assert.Equal(t, &batchOne, truncated[0].BatchIndex)
	assert.Equal(t, []string{"alpha"}, truncated[0].EventPreview)
}

func TestTruncateDocumentsCutsFinalDocument(t *testing.T) {
	documents := []entity.SessionDocument{
		{Source: "a", Content: strings.Repeat("x", 10)},
		{Source: "b", Content: strings.Repeat("y", 10)},
		{Source: "c", Content: strings.Repeat("z", 10)},
	}

	truncated := truncateDocuments(documents, 15)

	assert.Len(t, truncated, 2)
	assert.Equal(t, 10, len(truncated[0].Content))
	assert.Equal(t, 5, len(truncated[1].Content))
}

func TestSummarize(t *testing.T) {
	provider := &fakeLLM{}
	service := newTestService(&fakeRepository{result: lookupResultWith([]entity.SessionDocument{
		{Source: "traces", Content: "payload"},
	})}, provider)

	res, err := service.Summarize(context.Background(), "session-1")

	assert.NoError(t, err)
	assert.Equal(t, "session-1", res.SessionID)
	assert.Equal(t, "summary", res.Summary)
	assert.Len(t, res.UsedDocuments, 1)
	assert.Contains(t, provider.prompts[0], "Session ID: session-1")
	assert.Contains(t, provider.prompts[0], "payload")
}

func TestChatTracksConversationTurns(t *testing.T) {
	provider := &fakeLLM{}
	service := newTestService(&fakeRepository{result: lookupResultWith([]entity.SessionDocument{
		{Source: "traces", Content: "payload"},
	})}, provider)

	first, err := service.Chat(context.Background(), "session-1", &dto.SessionChatRequest{Question: "What happened?"})
	assert.NoError(t, err)
	assert.Equal(t, "answer-1", first.Answer)
	assert.NotEmpty(t, first.ConversationID)
	assert.Equal(t, []entity.ChatMessage{
		{Role: "user", Content: "What happened?"},
		{Role: "assistant", Content: "answer-1"},
	}, first.History)

	// the first call carries no prior turns, only system + user prompt
	assert.Len(t, provider.chatCalls[0], 2)
	assert.Equal(t, "system", provider.chatCalls[0][0].Role)

	second, err := service.Chat(context.Background(), "session-1", &dto.SessionChatRequest{
		Question:       "Any errors?",
		ConversationID: first.ConversationID,
	})
	assert.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)

	// the second call replays the stored turns before the new question
	assert.Len(t, provider.chatCalls[1], 4)
	assert.Equal(t, llm.Message{Role: "user", Content: "What happened?"}, provider.chatCalls[1][1])
	assert.Equal(t, llm.Message{Role: "assistant", Content: "answer-1"}, provider.chatCalls[1][2])
	assert.Contains(t, provider.chatCalls[1][3].Content, "Any errors?")
	assert.Contains(t, provider.chatCalls[1][3].Content, "Conversation so far:")

	assert.Equal(t, []entity.ChatMessage{
		{Role: "user", Content: "What happened?"},
		{Role: "assistant", Content: "answer-1"},
		{Role: "user", Content: "Any errors?"},
		{Role: "assistant", Content: "answer-2"},
	}, second.History)
}

func TestLookupMissReturnsStructuredNotFound(t *testing.T) {
	result := lookupResultWith(nil)
	result.MatchedCollections = nil
	result.FallbackDocumentsScanned = 12
	result.CollectionSamples = []contract.CollectionSample{
		{Collection: "traces", EstimatedCount: 3, Documents: []string{`{"other":"doc"}`}},
	}
	service := newTestService(&fakeRepository{result: result}, &fakeLLM{})

	_, err := service.Summarize(context.Background(), "session-missing")

	assert.Error(t, err)
	apiErr, ok := err.(*serverutils.APIError)
	if !ok {
		t.Fatalf("error type = %T, want *serverutils.APIError", err)
	}
	assert.Equal(t, 404, apiErr.StatusCode)

	details := apiErr.Details.(map[string]interface{})
	assert.Equal(t, "session-missing", details["session_id"])
	assert.Equal(t, []string{"sessionId"}, details["checked_fields"])
	assert.Equal(t, []string{"string:session-1"}, details["candidate_values"])
	assert.Equal(t, true, details["mongo_connection_ok"])
	assert.Equal(t, true, details["fallback_scan_enabled"])
	assert.Equal(t, 12, details["fallback_documents_scanned"])

	samples := details["collection_documents"].(map[string][]string)
	assert.Equal(t, []string{`{"other":"doc"}`}, samples["traces"])
	counts := details["collection_estimated_counts"].(map[string]int64)
	assert.Equal(t, int64(3), counts["traces"])
}
