package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexai/backend/llm"
	"github.com/lexai/backend/model"
)

func turns(n int) []model.ChatTurn {
	out := make([]model.ChatTurn, n)
	for i := range out {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleModel
		}
		out[i] = model.ChatTurn{Role: role, Content: fmt.Sprintf("turn %d", i+1)}
	}
	return out
}

func TestBuildChatMessagesTextQuestion(t *testing.T) {
	msgs, err := BuildChatMessages("Policy: 30 days. Contract: 90 days.", nil, "What is the payment term?", nil, 5)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, llm.RoleUser, msgs[0].Role)
	assert.Contains(t, msgs[0].Text, "Policy: 30 days. Contract: 90 days.")
	assert.Contains(t, msgs[0].Text, "based strictly on the context above")

	assert.Equal(t, llm.Message{Role: llm.RoleUser, Text: "User Question: What is the payment term?"}, msgs[1])
}

func TestBuildChatMessagesKeepsHistoryTail(t *testing.T) {
	msgs, err := BuildChatMessages("ctx", turns(8), "next", nil, 5)
	require.NoError(t, err)
	require.Len(t, msgs, 7)

	var got []string
	for _, m := range msgs[1:6] {
		got = append(got, m.Text)
	}
	assert.Equal(t, []string{"turn 4", "turn 5", "turn 6", "turn 7", "turn 8"}, got)
	assert.Equal(t, "User Question: next", msgs[6].Text)
}

func TestBuildChatMessagesRoleMapping(t *testing.T) {
	history := []model.ChatTurn{
		{Role: model.RoleUser, Content: "q"},
		{Role: model.RoleModel, Content: "a"},
		{Role: "assistant", Content: "b"},
	}
	msgs, err := BuildChatMessages("ctx", history, "next", nil, 5)
	require.NoError(t, err)

	assert.Equal(t, llm.RoleUser, msgs[1].Role)
	assert.Equal(t, llm.RoleModel, msgs[2].Role)
	assert.Equal(t, llm.RoleModel, msgs[3].Role)
}

func TestBuildChatMessagesSkipsEmptyTurns(t *testing.T) {
	history := []model.ChatTurn{
		{Role: model.RoleUser, Content: "q1"},
		{Role: model.RoleModel, Content: ""},
		{Role: model.RoleUser, Content: "q2"},
		{Role: model.RoleModel, Content: "  \n"},
		{Role: model.RoleModel, Content: "a2"},
	}
	msgs, err := BuildChatMessages("ctx", history, "next", nil, 2)
	require.NoError(t, err)

	require.Len(t, msgs, 4)
	assert.Equal(t, "q2", msgs[1].Text)
	assert.Equal(t, "a2", msgs[2].Text)
	for _, m := range msgs {
		assert.NotEmpty(t, m.Text)
	}
}

func TestBuildChatMessagesDefaultLimit(t *testing.T) {
	msgs, err := BuildChatMessages("ctx", turns(12), "next", nil, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, DefaultHistoryLimit+2)
}

func TestBuildChatMessagesAudio(t *testing.T) {
	audio := &llm.Audio{MIMEType: "audio/mp3", Data: []byte("ID3fake")}

	msgs, err := BuildChatMessages("ctx", nil, "ignored text", audio, 5)
	require.NoError(t, err)

	last := msgs[len(msgs)-1]
	assert.Equal(t, llm.RoleUser, last.Role)
	assert.Same(t, audio, last.Audio)
	assert.NotContains(t, last.Text, "ignored text")
	assert.Contains(t, last.Text, "audio question")
}

func TestBuildChatMessagesNoInput(t *testing.T) {
	_, err := BuildChatMessages("ctx", turns(2), "", nil, 5)
	assert.ErrorIs(t, err, ErrNoChatInput)

	_, err = BuildChatMessages("ctx", nil, "", &llm.Audio{MIMEType: "audio/mp3"}, 5)
	assert.ErrorIs(t, err, ErrNoChatInput, "empty audio counts as no input")
}
