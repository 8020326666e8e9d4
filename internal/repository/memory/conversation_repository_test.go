package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendAndGet(t *testing.T) {
	repo := NewConversationRepository()
	id := repo.GenerateID()

	assert.Empty(t, repo.Get(id))

	repo.Append(id, "user", "What happened?")
	repo.Append(id, "assistant", "An error occurred.")

	history := repo.Get(id)
	assert.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "What happened?", history[0].Content)
	assert.Equal(t, "assistant", history[1].Role)
}

func TestGetReturnsCopy(t *testing.T) {
	repo := NewConversationRepository()
	id := repo.GenerateID()
	repo.Append(id, "user", "original")

	history := repo.Get(id)
	history[0].Content = "mutated"

	assert.Equal(t, "original", repo.Get(id)[0].Content)
}

func TestConversationsAreIsolated(t *testing.T) {
	repo := NewConversationRepository()
	first := repo.GenerateID()
	second := repo.GenerateID()
	assert.NotEqual(t, first, second)

	repo.Append(first, "user", "hello")
	assert.Len(t, repo.Get(first), 1)
	assert.Empty(t, repo.Get(second))
}

func TestMetadata(t *testing.T) {
	repo := NewConversationRepository()
	id := repo.GenerateID()

	_, found := repo.GetMetadata(id)
	assert.False(t, found)

	repo.SetMetadata(id, map[string]interface{}{"lookup": "details"})
	meta, found := repo.GetMetadata(id)
	assert.True(t, found)
	assert.Equal(t, "details", meta["lookup"])
}
