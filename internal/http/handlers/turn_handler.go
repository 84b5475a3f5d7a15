// Turn HTTP handlers.
//
// This file exposes the conversation endpoints that run the full
// turn transaction (admission, debit, generation, progression):
//   - POST /projects/{id}/messages                    (send a turn; SSE when stream=true)
//   - POST /projects/{id}/messages/{mid}/regenerate   (redo a model message in place)
//   - PUT  /projects/{id}/messages/{mid}              (edit a user message, truncate, resend)
//
// Handlers are transport-thin:
//   - validate & normalize inputs (line endings, length caps, image size)
//   - delegate to the turn service, which owns all economic semantics
//   - map the service error taxonomy onto stable HTTP error codes
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// turn exists for (user, project, key), the service replays the recorded
// model message without re-charging, and the response carries
// `Idempotency-Replayed: true`.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kawanlabs/kawan-backend/internal/http/middleware"
	"github.com/kawanlabs/kawan-backend/internal/llm"
	"github.com/kawanlabs/kawan-backend/internal/services"
)

// maxImageBytes caps inline image attachments (decoded size).
const maxImageBytes = 5 << 20

// TurnService defines the turn operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type TurnService interface {
	// SendTurn runs a complete non-streaming chat turn.
	SendTurn(ctx context.Context, in services.TurnInput) (*services.TurnResult, error)
	// SendTurnStream runs a turn forwarding model chunks through emit.
	SendTurnStream(ctx context.Context, in services.TurnInput, emit services.StreamEmit) (*services.TurnResult, error)
	// Regenerate replaces a model message's content in place.
	Regenerate(ctx context.Context, userID, projectID, messageID, modeID, lang string) (*services.TurnResult, error)
	// EditAndResend edits a past user turn, truncates the tail, and resends.
	EditAndResend(ctx context.Context, in services.TurnInput, messageID string) (*services.TurnResult, error)
}

// TurnHandlers groups the turn endpoints.
type TurnHandlers struct {
	svc TurnService
	// MaxPromptRunes mirrors the service-side cap for fail-fast validation.
	MaxPromptRunes int
}

// NewTurns constructs TurnHandlers bound to the given service.
func NewTurns(svc TurnService) *TurnHandlers {
	h := &TurnHandlers{svc: svc, MaxPromptRunes: 4000}
	if ts, ok := svc.(*services.TurnService); ok && ts.MaxPromptRunes > 0 {
		h.MaxPromptRunes = ts.MaxPromptRunes
	}
	return h
}

//
// DTOs
//

// SendTurnRequest is the JSON payload for sending a chat turn.
//
// Content is normalized by the handler (line endings and excessive blank
// lines) before being passed to the service layer. ImageData is standard
// base64 in JSON.
type SendTurnRequest struct {
	// Content is the user prompt. It must be non-empty.
	Content string `json:"content" binding:"required,min=1" example:"Ceritakan tentang Borobudur"`
	// Mode selects the personality preset or a purchased custom mode id.
	Mode string `json:"mode" example:"storyteller"`
	// Language selects the reply language (id, en, zh, ja). Default Indonesian.
	Language string `json:"language" example:"id"`
	// ImageMIME and ImageData optionally attach an inline image to this turn.
	ImageMIME string `json:"image_mime,omitempty" example:"image/jpeg"`
	ImageData []byte `json:"image_data,omitempty" swaggertype:"string" format:"base64"`
	// Stream requests Server-Sent Events delivery of the model reply.
	Stream bool `json:"stream"`
}

// EditTurnRequest is the JSON payload for editing and resending a user turn.
type EditTurnRequest struct {
	Content  string `json:"content" binding:"required,min=1"`
	Mode     string `json:"mode"`
	Language string `json:"language"`
}

// RegenerateRequest is the JSON payload for regenerating a model message.
type RegenerateRequest struct {
	Mode     string `json:"mode"`
	Language string `json:"language"`
}

//
// Helpers
//

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeContent normalizes user text for consistent downstream behavior:
//   - converts CRLF/CR to LF,
//   - collapses runs of 3+ LFs to exactly two (paragraph separation),
//   - trims surrounding whitespace.
func sanitizeContent(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// failTurnError maps the turn service error taxonomy to HTTP responses.
func failTurnError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "project not found")
	case errors.Is(err, services.ErrMessageNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "message not found")
	case errors.Is(err, services.ErrNotModelMessage):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "target is not a model message")
	case errors.Is(err, services.ErrNotUserMessage):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "target is not a user message")
	case errors.Is(err, services.ErrEmptyPrompt):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
	case errors.Is(err, services.ErrTooLong):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content too long")
	case errors.Is(err, services.ErrInsufficientCredits):
		fail(c, http.StatusForbidden, ErrCodeInsufficientCredits, "not enough credits for a pro turn")
	case errors.Is(err, llm.ErrGenerationFailed):
		fail(c, http.StatusInternalServerError, ErrCodeGenerationFailed, "model generation failed")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

//
// Handlers
//

// SendTurn godoc
// @ID          sendTurn
// @Summary     Send a message and get a model reply
// @Description Runs one complete chat turn: billable-mode admission and debit, model generation,
// @Description message persistence, and exp/coin progression. With stream=true the reply is
// @Description delivered as Server-Sent Events (chunk events followed by a final result event).
// @Description Supports idempotency via the Idempotency-Key header (same key → same result, no re-charge).
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"
// @Param       id               path    string  true  "Project ID (UUID)"  format(uuid)
// @Param       body             body    handlers.SendTurnRequest  true  "Turn payload"
//
// @Success     201  {object} services.TurnResult "Completed turn"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object} handlers.ErrorResponse "Insufficient credits"
// @Failure     404  {object} handlers.ErrorResponse "Project not found"
// @Failure     500  {object} handlers.ErrorResponse "Generation or persistence failure"
// @Router      /projects/{id}/messages [post]
func (h *TurnHandlers) SendTurn(c *gin.Context) {
	projectID := c.Param("id")
	if _, err := uuid.Parse(projectID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "project id must be a UUID")
		return
	}

	var req SendTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	content := sanitizeContent(req.Content)
	if content == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}
	if h.MaxPromptRunes > 0 && utf8.RuneCountInString(content) > h.MaxPromptRunes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("content too long: max %d runes", h.MaxPromptRunes))
		return
	}
	if len(req.ImageData) > maxImageBytes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "image too large")
		return
	}
	if len(req.ImageData) > 0 && req.ImageMIME == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "image_mime required with image_data")
		return
	}

	idemKey, _ := middleware.GetIdempotencyKey(c)
	in := services.TurnInput{
		UserID:         middleware.UserID(c),
		ProjectID:      projectID,
		Prompt:         content,
		ModeID:         req.Mode,
		Language:       req.Language,
		ImageMIME:      req.ImageMIME,
		ImageData:      req.ImageData,
		IdempotencyKey: idemKey,
	}

	if req.Stream || c.Query("stream") == "true" {
		h.sendTurnSSE(c, in)
		return
	}

	res, err := h.svc.SendTurn(c.Request.Context(), in)
	if err != nil {
		failTurnError(c, err)
		return
	}
	if res.Replayed {
		c.Header("Idempotency-Replayed", "true")
		ok(c, http.StatusOK, res)
		return
	}
	ok(c, http.StatusCreated, res)
}

// sendTurnSSE delivers a turn as Server-Sent Events: zero or more "chunk"
// events carrying reply text, then a terminal "result" event with the full
// TurnResult, or an "error" event. Errors that occur before the first chunk
// still produce a normal JSON error response.
func (h *TurnHandlers) sendTurnSSE(c *gin.Context, in services.TurnInput) {
	flusher, okF := c.Writer.(http.Flusher)
	if !okF {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "streaming unsupported")
		return
	}

	started := false
	startStream := func() {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)
		started = true
	}

	emit := func(chunk string) error {
		if !started {
			startStream()
		}
		payload, err := json.Marshal(gin.H{"text": chunk})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Writer, "event: chunk\ndata: %s\n\n", payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	res, err := h.svc.SendTurnStream(c.Request.Context(), in, emit)
	if err != nil {
		if !started {
			failTurnError(c, err)
			return
		}
		// Headers are gone; the error has to travel in-band.
		code := ErrCodeGenerationFailed
		if errors.Is(err, services.ErrInsufficientCredits) {
			code = ErrCodeInsufficientCredits
		}
		fmt.Fprintf(c.Writer, "event: error\ndata: {\"code\":%q}\n\n", code)
		flusher.Flush()
		return
	}

	if !started {
		startStream()
	}
	payload, merr := json.Marshal(res)
	if merr != nil {
		fmt.Fprintf(c.Writer, "event: error\ndata: {\"code\":%q}\n\n", ErrCodeInternal)
		flusher.Flush()
		return
	}
	fmt.Fprintf(c.Writer, "event: result\ndata: %s\n\n", payload)
	flusher.Flush()
}

// RegenerateMessage godoc
// @ID          regenerateMessage
// @Summary     Regenerate a model message
// @Description Re-runs generation for the given model message using the context that preceded it and
// @Description replaces its content in place. Billable-mode admission and debit apply as for a fresh turn.
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Project ID (UUID)"  format(uuid)
// @Param       mid   path  string  true  "Message ID (UUID)"  format(uuid)
// @Param       body  body  handlers.RegenerateRequest  false "Mode/language overrides"
//
// @Success     200  {object} services.TurnResult
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object} handlers.ErrorResponse "Insufficient credits"
// @Failure     404  {object} handlers.ErrorResponse "Project, message, or non-model target"
// @Failure     500  {object} handlers.ErrorResponse "Generation failure"
// @Router      /projects/{id}/messages/{mid}/regenerate [post]
func (h *TurnHandlers) RegenerateMessage(c *gin.Context) {
	projectID := c.Param("id")
	messageID := c.Param("mid")
	if _, err := uuid.Parse(projectID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "project id must be a UUID")
		return
	}
	if _, err := uuid.Parse(messageID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message id must be a UUID")
		return
	}

	var req RegenerateRequest
	// Body is optional; ignore bind errors on empty bodies.
	_ = c.ShouldBindJSON(&req)

	res, err := h.svc.Regenerate(c.Request.Context(), middleware.UserID(c), projectID, messageID, req.Mode, req.Language)
	if err != nil {
		failTurnError(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// EditMessage godoc
// @ID          editMessage
// @Summary     Edit a user message and resend
// @Description Replaces the content of a past user message, deletes every message after it, and
// @Description re-runs the turn so the thread continues from the edited text.
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Project ID (UUID)"  format(uuid)
// @Param       mid   path  string  true  "Message ID (UUID)"  format(uuid)
// @Param       body  body  handlers.EditTurnRequest  true  "Edited content"
//
// @Success     200  {object} services.TurnResult
// @Failure     400  {object} handlers.ErrorResponse "Bad request or non-user target"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object} handlers.ErrorResponse "Insufficient credits"
// @Failure     404  {object} handlers.ErrorResponse "Project or message not found"
// @Failure     500  {object} handlers.ErrorResponse "Generation failure"
// @Router      /projects/{id}/messages/{mid} [put]
func (h *TurnHandlers) EditMessage(c *gin.Context) {
	projectID := c.Param("id")
	messageID := c.Param("mid")
	if _, err := uuid.Parse(projectID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "project id must be a UUID")
		return
	}
	if _, err := uuid.Parse(messageID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message id must be a UUID")
		return
	}

	var req EditTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}
	content := sanitizeContent(req.Content)
	if content == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}
	if h.MaxPromptRunes > 0 && utf8.RuneCountInString(content) > h.MaxPromptRunes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("content too long: max %d runes", h.MaxPromptRunes))
		return
	}

	in := services.TurnInput{
		UserID:    middleware.UserID(c),
		ProjectID: projectID,
		Prompt:    content,
		ModeID:    req.Mode,
		Language:  req.Language,
	}
	res, err := h.svc.EditAndResend(c.Request.Context(), in, messageID)
	if err != nil {
		failTurnError(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}
