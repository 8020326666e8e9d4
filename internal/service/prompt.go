package service

import (
	"fmt"
	"strings"

	"session-intelligence-be/internal/entity"
)

const chatSystemPrompt = "You are an assistant that answers questions about a specific session. " +
	"Use only the provided session context and the conversation history shared by the user."

func buildSummaryPrompt(sessionID string, documents []entity.SessionDocument) string {
	var prompt strings.Builder

	prompt.WriteString("Create a concise Jira-ready summary for the session below. ")
	prompt.WriteString("Respond with a short title followed by up to three bullet points that capture the ")
	prompt.WriteString("critical actions, decisions, and blockers. Mention remaining questions or follow-up ")
	prompt.WriteString("items if needed and avoid unnecessary detail.\n\n")
	prompt.WriteString("Session ID: " + sessionID + "\n\n")
	prompt.WriteString("Ordered Session Context:\n")
	prompt.WriteString(formatSummaryContext(documents))

	return prompt.String()
}

func buildQuestionPrompt(sessionID, question string, documents []entity.SessionDocument, historyText string) string {
	var prompt strings.Builder

	prompt.WriteString("You are given the aggregated records for a single session in chronological batches. ")
	prompt.WriteString("Answer the user's question using only this context and what has been established in ")
	prompt.WriteString("the conversation so far. If the answer cannot be derived, say that the information is ")
	prompt.WriteString("not available. Highlight batch numbers when they clarify the answer.\n\n")
	prompt.WriteString("Session ID: " + sessionID + "\n")
	prompt.WriteString("Question: " + question + "\n\n")
	if historyText != "" {
		prompt.WriteString("Conversation so far:\n" + historyText + "\n\n")
	}
	prompt.WriteString("Context:\n")
	prompt.WriteString(formatQuestionContext(documents))

	return prompt.String()
}

func formatSummaryContext(documents []entity.SessionDocument) string {
	sections := make([]string, 0, len(documents))
	for _, doc := range documents {
		batch := "n/a"
		if doc.BatchIndex != nil {
			batch = fmt.Sprintf("%d", *doc.BatchIndex)
		}
		sections = append(sections, fmt.Sprintf("Source: %s\nBatch: %s\nContent: %s", doc.Source, batch, doc.Content))
	}
	return strings.Join(sections, "\n\n")
}

func formatQuestionContext(documents []entity.SessionDocument) string {
	sections := make([]string, 0, len(documents))
	for _, doc := range documents {
		sections = append(sections, fmt.Sprintf("Source: %s\nContent: %s", doc.Source, doc.Content))
	}
	return strings.Join(sections, "\n\n")
}

func formatConversationHistory(history []entity.ChatMessage) string {
	var lines []string
	for _, message := range history {
		if message.Content == "" {
			continue
		}
		lines = append(lines, historyLabel(message.Role)+": "+strings.TrimSpace(message.Content))
	}
	return strings.Join(lines, "\n")
}

func historyLabel(role string) string {
	switch role {
	case "user":
		return "User"
	case "assistant":
		return "Assistant"
	case "":
		return "User"
	default:
		return strings.ToUpper(role[:1]) + role[1:]
	}
}
