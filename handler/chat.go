package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lexai/backend/llm"
	"github.com/lexai/backend/model"
	"github.com/lexai/backend/service"
)

// ContractChatter answers follow-up questions about audited documents.
type ContractChatter interface {
	Chat(ctx context.Context, in service.ChatInput) (string, error)
}

type ChatHandler struct {
	chatter   ContractChatter
	audioMIME string
	maxMemory int64
}

// NewChatHandler builds the chat endpoint. audioMIME is assumed for
// uploads whose type can be neither read nor sniffed; uploadLimit as in
// NewAuditHandler.
func NewChatHandler(chatter ContractChatter, audioMIME string, uploadLimit int64) *ChatHandler {
	if audioMIME == "" {
		audioMIME = "audio/mp3"
	}
	return &ChatHandler{chatter: chatter, audioMIME: audioMIME, maxMemory: multipartMemory(uploadLimit)}
}

// Chat handles POST /chat. Fields: context_text (required), message,
// audio_file, history (JSON array of {role, content}, default []).
func (h *ChatHandler) Chat(c *gin.Context) {
	if err := parseForm(c, h.maxMemory); err != nil {
		if isTooLarge(err) {
			respondError(c, err)
			return
		}
		badRequest(c, "Malformed form body")
		return
	}

	contextText, ok := c.GetPostForm("context_text")
	if !ok {
		badRequest(c, "context_text is required")
		return
	}

	var history []model.ChatTurn
	if err := json.Unmarshal([]byte(c.DefaultPostForm("history", "[]")), &history); err != nil {
		badRequest(c, "history must be a JSON array of {role, content} objects")
		return
	}

	audio, err := h.readAudio(c)
	if err != nil {
		if isTooLarge(err) {
			respondError(c, err)
			return
		}
		badRequest(c, "Could not read audio_file")
		return
	}

	reply, err := h.chatter.Chat(c.Request.Context(), service.ChatInput{
		ContextText: contextText,
		History:     history,
		Message:     c.PostForm("message"),
		Audio:       audio,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.ChatReply{Role: "assistant", Content: reply})
}

// readAudio returns the uploaded audio, or nil when none was sent.
func (h *ChatHandler) readAudio(c *gin.Context) (*llm.Audio, error) {
	header, err := c.FormFile("audio_file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	data, err := readPart(header)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	return &llm.Audio{
		MIMEType: h.detectAudioMIME(header.Header.Get("Content-Type"), data),
		Data:     data,
	}, nil
}

func (h *ChatHandler) detectAudioMIME(declared string, data []byte) string {
	if strings.HasPrefix(declared, "audio/") {
		return declared
	}
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "audio/") {
		return sniffed
	}
	return h.audioMIME
}
