package service

import (
	"strings"

	"github.com/lexai/backend/llm"
	"github.com/lexai/backend/model"
)

// DefaultHistoryLimit is the number of prior turns forwarded to the model.
const DefaultHistoryLimit = 5

const chatPreamble = `You are LexAI, an intelligent contract assistant.
User Context (Contract & Policy):
`

const chatRules = `
Answer the user's question based strictly on the context above.
If the user sends audio, transcribe it in your thought process but answer the question directly.`

const audioInstruction = "The user sent an audio question. Listen to it and answer."

// BuildChatMessages composes the conversation sent for a follow-up
// question: the context instruction, the tail of history, then the new
// turn. When both text and audio are given, audio wins.
func BuildChatMessages(contextText string, history []model.ChatTurn, userText string, audio *llm.Audio, historyLimit int) ([]llm.Message, error) {
	hasAudio := audio != nil && len(audio.Data) > 0
	if !hasAudio && userText == "" {
		return nil, ErrNoChatInput
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}

	// Providers reject turns without content.
	kept := make([]model.ChatTurn, 0, len(history))
	for _, turn := range history {
		if strings.TrimSpace(turn.Content) != "" {
			kept = append(kept, turn)
		}
	}
	if len(kept) > historyLimit {
		kept = kept[len(kept)-historyLimit:]
	}

	msgs := make([]llm.Message, 0, len(kept)+2)
	msgs = append(msgs, llm.Message{
		Role: llm.RoleUser,
		Text: chatPreamble + contextText + "\n" + chatRules,
	})

	for _, turn := range kept {
		role := llm.RoleModel
		if turn.Role == model.RoleUser {
			role = llm.RoleUser
		}
		msgs = append(msgs, llm.Message{Role: role, Text: turn.Content})
	}

	if hasAudio {
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Text: audioInstruction, Audio: audio})
	} else {
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Text: "User Question: " + userText})
	}
	return msgs, nil
}
