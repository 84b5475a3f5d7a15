// Package services – TurnService
//
// This file implements the conversation-and-economy transaction core. A
// chat turn is one economic transaction with a fixed step order:
//
//  1. admission check   – billable mode requires credits before anything else
//  2. debit             – charge-on-attempt: the debit commits before the
//     model call and is not refunded on upstream failure
//  3. progression       – every user-originated turn grants exp and coins,
//     with carry-over level resolution
//  4. achievements      – monotone rule evaluation, set-union grant
//  5. persistence       – messages on the turn's critical path (user turn
//     before the model call, model turn after), user
//     document via optimistic versioned writes
//
// A per-user lock brackets the admission→debit window and the settlement
// window so concurrent turns can never both pass the credit check against
// a stale balance. The model call itself runs outside the lock under its
// own timeout, so a stalled upstream cannot serialize a user's unrelated
// requests indefinitely.
//
// Observability: public methods are OpenTelemetry-instrumented; spans
// carry user/project identifiers and the resolved mode.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/kawanlabs/kawan-backend/internal/assemble"
	"github.com/kawanlabs/kawan-backend/internal/domain"
	"github.com/kawanlabs/kawan-backend/internal/economy"
	"github.com/kawanlabs/kawan-backend/internal/llm"
	"github.com/kawanlabs/kawan-backend/internal/modes"
	"github.com/kawanlabs/kawan-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// autoTitleMaxMessages is the message count at or below which a project
// with a placeholder name is still eligible for auto-titling.
const autoTitleMaxMessages = 2

// TurnService coordinates chat turns, regeneration, and edit-and-resend.
type TurnService struct {
	DB      *gorm.DB
	Gateway llm.Gateway
	Locks   *economy.UserLocks

	// MaxPromptRunes guards prompt length; <= 0 disables the check.
	MaxPromptRunes int
	// TitleMaxLen caps auto-generated project titles by rune length.
	TitleMaxLen int
	// IdempotencyTTL is how long a recorded turn stays replayable.
	IdempotencyTTL time.Duration
}

// NewTurnService constructs a TurnService with production guards.
func NewTurnService(db *gorm.DB, gw llm.Gateway) *TurnService {
	return &TurnService{
		DB:             db,
		Gateway:        gw,
		Locks:          economy.NewUserLocks(),
		MaxPromptRunes: 4000,
		TitleMaxLen:    60,
		IdempotencyTTL: 24 * time.Hour,
	}
}

// TurnInput is the caller's side of one chat turn.
type TurnInput struct {
	UserID    string
	ProjectID string
	Prompt    string
	ModeID    string
	Language  string

	// Optional inline image attached to the user turn.
	ImageMIME string
	ImageData []byte

	// IdempotencyKey, when set, makes retries of the same turn replayable
	// without re-charging.
	IdempotencyKey string
}

// TurnResult reports the outcome of a turn: the persisted message pair and
// the user's post-turn economic state.
type TurnResult struct {
	UserMessage  *domain.ChatMessage `json:"user_message,omitempty"`
	ModelMessage *domain.ChatMessage `json:"model_message"`

	Credits      int64 `json:"credits"`
	Coins        int64 `json:"coins"`
	Exp          int64 `json:"exp"`
	Level        int   `json:"level"`
	NextLevelExp int64 `json:"next_level_exp"`
	LeveledUp    bool  `json:"leveled_up"`

	NewAchievements []string `json:"new_achievements,omitempty"`

	// ProjectName reflects a completed auto-title, if one fired.
	ProjectName string `json:"project_name"`

	// Replayed is true when an Idempotency-Key matched a recorded turn and
	// no new economic transaction ran.
	Replayed bool `json:"replayed,omitempty"`
}

// StreamEmit receives model text chunks in order during a streaming turn.
type StreamEmit func(chunk string) error

// SendTurn runs a complete non-streaming chat turn.
func (s *TurnService) SendTurn(ctx context.Context, in TurnInput) (*TurnResult, error) {
	return s.run(ctx, in, nil)
}

// SendTurnStream runs a chat turn streaming model chunks through emit. The
// economic transaction is identical to SendTurn; only the transport of the
// model text differs. If the client goes away mid-stream the committed
// debit stands and the model message may be absent, a recoverable partial
// state.
func (s *TurnService) SendTurnStream(ctx context.Context, in TurnInput, emit StreamEmit) (*TurnResult, error) {
	if emit == nil {
		return nil, errors.New("nil stream emit")
	}
	return s.run(ctx, in, emit)
}

// run is the shared turn pipeline; emit == nil selects blocking generation.
func (s *TurnService) run(ctx context.Context, in TurnInput, emit StreamEmit) (*TurnResult, error) {
	tr := otel.Tracer("services/TurnService")
	ctx, span := tr.Start(ctx, "SendTurn",
		trace.WithAttributes(
			attribute.String("project.id", in.ProjectID),
			attribute.String("user.id", in.UserID),
			attribute.String("mode.id", in.ModeID),
		),
	)
	defer span.End()

	started := time.Now()

	in.Prompt = strings.TrimSpace(in.Prompt)
	if in.Prompt == "" {
		return nil, ErrEmptyPrompt
	}
	if s.MaxPromptRunes > 0 && utf8.RuneCountInString(in.Prompt) > s.MaxPromptRunes {
		return nil, ErrTooLong
	}

	project, err := repo.GetProject(ctx, s.DB, in.ProjectID, in.UserID)
	if err != nil {
		return nil, ErrProjectNotFound
	}

	// Replay a previously completed identical request, if recorded.
	if res, ok := s.replay(ctx, in); ok {
		return res, nil
	}

	// Admission, debit, and the user turn commit under the user lock.
	mode, userMsg, err := s.admit(ctx, in)
	if err != nil {
		return nil, err
	}

	// Model call runs outside the lock, bounded by the gateway timeout.
	text, err := s.generate(ctx, in, mode, emit)
	if err != nil {
		// Charge-on-attempt: the debit stands; the user turn stays
		// persisted so the thread reflects what was asked.
		return nil, err
	}

	modelMsg, err := repo.CreateMessage(s.DB.WithContext(ctx), in.ProjectID, in.UserID, domain.RoleModel, text, "", nil)
	if err != nil {
		// The debit is committed but the reply was not stored. Surfacing
		// the error (with the step context in the span/log) is what keeps
		// the charge from vanishing silently.
		return nil, err
	}

	res, err := s.settle(ctx, in.UserID, mode, started)
	if err != nil {
		return nil, err
	}
	res.UserMessage = userMsg
	res.ModelMessage = modelMsg

	res.ProjectName = s.maybeAutoTitle(ctx, project, in.Prompt, in.Language)

	s.record(ctx, in, modelMsg.ID)
	return res, nil
}

// admit performs the admission check, commits the debit, and persists the
// user turn, all under the per-user lock. On a billable mode with
// insufficient credits nothing is mutated and nothing is persisted.
func (s *TurnService) admit(ctx context.Context, in TurnInput) (modes.Resolved, *domain.ChatMessage, error) {
	unlock := s.Locks.Lock(in.UserID)
	defer unlock()

	customModes, err := repo.ListCustomModes(ctx, s.DB, in.UserID)
	if err != nil {
		return modes.Resolved{}, nil, err
	}
	mode := modes.Resolve(in.ModeID, customModes)

	if mode.Billable {
		if _, err := mutateUser(ctx, s.DB, in.UserID, func(u *domain.User) error {
			if u.Credits < economy.ProTurnCost {
				return ErrInsufficientCredits
			}
			u.Credits -= economy.ProTurnCost
			u.CreditsSpent += economy.ProTurnCost
			return nil
		}); err != nil {
			return modes.Resolved{}, nil, err
		}
	}

	userMsg, err := repo.CreateMessage(s.DB.WithContext(ctx), in.ProjectID, in.UserID, domain.RoleUser, in.Prompt, in.ImageMIME, in.ImageData)
	if err != nil {
		return modes.Resolved{}, nil, err
	}
	return mode, userMsg, nil
}

// generate assembles the bounded context and calls the gateway, collecting
// the full text. With emit set, chunks are forwarded as they arrive.
func (s *TurnService) generate(ctx context.Context, in TurnInput, mode modes.Resolved, emit StreamEmit) (string, error) {
	history, err := repo.ListMessages(s.DB.WithContext(ctx), in.ProjectID, 0)
	if err != nil {
		return "", err
	}
	req := assemble.Assemble(history, mode, in.Language, emit != nil)

	if emit == nil {
		result, err := s.Gateway.Generate(ctx, req)
		if err != nil {
			return "", err
		}
		return result.Text, nil
	}

	var full strings.Builder
	err = s.Gateway.GenerateStream(ctx, req, func(chunk string) error {
		full.WriteString(chunk)
		return emit(chunk)
	})
	if err != nil {
		return "", err
	}
	return full.String(), nil
}

// settle applies progression and evaluates turn achievements after the
// message pair is persisted, under the user lock.
func (s *TurnService) settle(ctx context.Context, userID string, mode modes.Resolved, started time.Time) (*TurnResult, error) {
	unlock := s.Locks.Lock(userID)
	defer unlock()

	var (
		leveled bool
		granted []string
	)
	u, err := mutateUser(ctx, s.DB, userID, func(u *domain.User) error {
		u.Coins += economy.CoinsPerTurn
		p := economy.Progress{Exp: u.Exp, Level: u.Level, NextLevelExp: u.NextLevelExp}
		leveled = p.GrantExp(economy.ExpPerTurn) > 0
		u.Exp, u.Level, u.NextLevelExp = p.Exp, p.Level, p.NextLevelExp

		satisfied := economy.EvaluateTurn(economy.TurnFacts{
			ProMode:       mode.Billable,
			ElapsedMillis: time.Since(started).Milliseconds(),
			CreditsSpent:  u.CreditsSpent,
		})
		granted = granted[:0]
		for _, id := range satisfied {
			if !u.Achievements.Has(id) {
				granted = append(granted, id)
			}
		}
		u.Achievements = u.Achievements.Union(satisfied)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &TurnResult{
		Credits:         u.Credits,
		Coins:           u.Coins,
		Exp:             u.Exp,
		Level:           u.Level,
		NextLevelExp:    u.NextLevelExp,
		LeveledUp:       leveled,
		NewAchievements: granted,
	}, nil
}

// Regenerate replaces the content of the project's most recent model
// message in place. The admission/debit rules of the selected mode apply
// exactly as for a fresh turn; progression does not, because no new user
// turn enters the thread.
func (s *TurnService) Regenerate(ctx context.Context, userID, projectID, messageID, modeID, lang string) (*TurnResult, error) {
	tr := otel.Tracer("services/TurnService")
	ctx, span := tr.Start(ctx, "Regenerate",
		trace.WithAttributes(
			attribute.String("project.id", projectID),
			attribute.String("message.id", messageID),
		),
	)
	defer span.End()

	project, err := repo.GetProject(ctx, s.DB, projectID, userID)
	if err != nil {
		return nil, ErrProjectNotFound
	}

	target, err := repo.GetMessage(s.DB.WithContext(ctx), projectID, messageID)
	if err != nil {
		return nil, ErrMessageNotFound
	}
	if target.Role != domain.RoleModel {
		return nil, ErrNotModelMessage
	}

	mode, err := s.admitOnly(ctx, userID, modeID)
	if err != nil {
		return nil, err
	}

	history, err := repo.ListMessages(s.DB.WithContext(ctx), projectID, 0)
	if err != nil {
		return nil, err
	}
	// Rebuild the context as it stood when the target was generated.
	upTo := history[:0:0]
	for _, m := range history {
		if m.ID == target.ID {
			break
		}
		upTo = append(upTo, m)
	}

	req := assemble.Assemble(upTo, mode, lang, false)
	result, err := s.Gateway.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := repo.UpdateMessageContent(s.DB.WithContext(ctx), target.ID, result.Text); err != nil {
		return nil, err
	}
	target.Content = result.Text

	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	res := &TurnResult{
		ModelMessage: target,
		Credits:      u.Credits,
		Coins:        u.Coins,
		Exp:          u.Exp,
		Level:        u.Level,
		NextLevelExp: u.NextLevelExp,
	}
	res.ProjectName = s.maybeAutoTitle(ctx, project, firstUserPrompt(upTo), lang)
	return res, nil
}

// EditAndResend edits a past user turn in place, truncates everything
// after it, and resends it through the normal turn pipeline. The edited
// message keeps its identity; the invalidated tail is gone before the
// model call so the assembled context can never mix old and new branches.
func (s *TurnService) EditAndResend(ctx context.Context, in TurnInput, messageID string) (*TurnResult, error) {
	tr := otel.Tracer("services/TurnService")
	ctx, span := tr.Start(ctx, "EditAndResend",
		trace.WithAttributes(
			attribute.String("project.id", in.ProjectID),
			attribute.String("message.id", messageID),
		),
	)
	defer span.End()

	started := time.Now()

	in.Prompt = strings.TrimSpace(in.Prompt)
	if in.Prompt == "" {
		return nil, ErrEmptyPrompt
	}
	if s.MaxPromptRunes > 0 && utf8.RuneCountInString(in.Prompt) > s.MaxPromptRunes {
		return nil, ErrTooLong
	}

	if _, err := repo.GetProject(ctx, s.DB, in.ProjectID, in.UserID); err != nil {
		return nil, ErrProjectNotFound
	}

	target, err := repo.GetMessage(s.DB.WithContext(ctx), in.ProjectID, messageID)
	if err != nil {
		return nil, ErrMessageNotFound
	}
	if target.Role != domain.RoleUser {
		return nil, ErrNotUserMessage
	}

	mode, err := s.admitOnly(ctx, in.UserID, in.ModeID)
	if err != nil {
		return nil, err
	}

	// Truncate the invalidated tail, then rewrite the turn in place.
	if err := repo.DeleteMessagesAfter(s.DB.WithContext(ctx), in.ProjectID, target); err != nil {
		return nil, err
	}
	if err := repo.UpdateMessageContent(s.DB.WithContext(ctx), target.ID, in.Prompt); err != nil {
		return nil, err
	}
	target.Content = in.Prompt

	text, err := s.generate(ctx, in, mode, nil)
	if err != nil {
		return nil, err
	}
	modelMsg, err := repo.CreateMessage(s.DB.WithContext(ctx), in.ProjectID, in.UserID, domain.RoleModel, text, "", nil)
	if err != nil {
		return nil, err
	}

	res, err := s.settle(ctx, in.UserID, mode, started)
	if err != nil {
		return nil, err
	}
	res.UserMessage = target
	res.ModelMessage = modelMsg
	return res, nil
}

// admitOnly runs the admission check and debit for mode without touching
// messages. Used by the regenerate and edit paths.
func (s *TurnService) admitOnly(ctx context.Context, userID, modeID string) (modes.Resolved, error) {
	unlock := s.Locks.Lock(userID)
	defer unlock()

	customModes, err := repo.ListCustomModes(ctx, s.DB, userID)
	if err != nil {
		return modes.Resolved{}, err
	}
	mode := modes.Resolve(modeID, customModes)

	if mode.Billable {
		if _, err := mutateUser(ctx, s.DB, userID, func(u *domain.User) error {
			if u.Credits < economy.ProTurnCost {
				return ErrInsufficientCredits
			}
			u.Credits -= economy.ProTurnCost
			u.CreditsSpent += economy.ProTurnCost
			return nil
		}); err != nil {
			return modes.Resolved{}, err
		}
	}
	return mode, nil
}

// maybeAutoTitle drives the Untitled → Naming → Named transition: it fires
// when the thread has completed its first exchange while the name is still
// the placeholder. Title generation is best-effort; on failure the
// project stays Untitled and a later eligible turn retries.
//
// It returns the project's current (possibly renamed) name.
func (s *TurnService) maybeAutoTitle(ctx context.Context, project *domain.Project, prompt, lang string) string {
	if project.Name != domain.PlaceholderProjectName {
		return project.Name
	}
	count, err := repo.CountMessages(s.DB.WithContext(ctx), project.ID)
	if err != nil || count < 2 || count > autoTitleMaxMessages {
		return project.Name
	}

	title := s.generateTitle(ctx, prompt, lang)
	if title == "" {
		return project.Name
	}
	if err := repo.UpdateProjectName(ctx, s.DB, project.ID, project.UserID, title); err != nil {
		return project.Name
	}
	project.Name = title
	return title
}

// generateTitle asks the gateway for a short thread title.
func (s *TurnService) generateTitle(ctx context.Context, prompt, lang string) string {
	if prompt == "" {
		return ""
	}
	req := llm.Request{
		SystemInstruction: "You name chat threads. Reply with a concise title of at most five words in " +
			assemble.LanguageName(lang) + ". Reply with the title only, no quotes.",
		Messages: []llm.Message{
			{Role: domain.RoleUser, Parts: []llm.Part{{Text: prompt}}},
		},
		Temperature: 0.4,
	}
	result, err := s.Gateway.Generate(ctx, req)
	if err != nil {
		return ""
	}
	return s.sanitizeTitle(result.Text, lang)
}

// sanitizeTitle reduces raw model output to a single clean, clipped line.
func (s *TurnService) sanitizeTitle(raw, lang string) string {
	line := raw
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.Trim(strings.TrimSpace(line), `"'“”`)
	line = strings.Join(strings.Fields(line), " ")
	if line == "" {
		return ""
	}
	line = cases.Title(language.Make(lang), cases.NoLower).String(line)

	max := s.TitleMaxLen
	if max <= 0 {
		max = 60
	}
	if utf8.RuneCountInString(line) > max {
		line = string([]rune(line)[:max])
	}
	return line
}

// replay serves a recorded identical request, if any.
func (s *TurnService) replay(ctx context.Context, in TurnInput) (*TurnResult, bool) {
	if in.IdempotencyKey == "" {
		return nil, false
	}
	rec, err := repo.GetIdempotency(ctx, s.DB, in.UserID, in.ProjectID, in.IdempotencyKey, time.Now().UTC())
	if err != nil || rec == nil {
		return nil, false
	}
	msg, err := repo.GetMessage(s.DB.WithContext(ctx), in.ProjectID, rec.MessageID)
	if err != nil {
		return nil, false
	}
	u, err := repo.GetUser(ctx, s.DB, in.UserID)
	if err != nil {
		return nil, false
	}
	return &TurnResult{
		ModelMessage: msg,
		Credits:      u.Credits,
		Coins:        u.Coins,
		Exp:          u.Exp,
		Level:        u.Level,
		NextLevelExp: u.NextLevelExp,
		Replayed:     true,
	}, true
}

// record stores the idempotency record for a completed turn, best-effort.
func (s *TurnService) record(ctx context.Context, in TurnInput, messageID string) {
	if in.IdempotencyKey == "" {
		return
	}
	_, _ = repo.CreateIdempotency(ctx, s.DB, in.UserID, in.ProjectID, in.IdempotencyKey, messageID, 201, s.IdempotencyTTL)
}

// firstUserPrompt returns the earliest user-authored content in history.
func firstUserPrompt(history []domain.ChatMessage) string {
	for _, m := range history {
		if m.Role == domain.RoleUser {
			return m.Content
		}
	}
	return ""
}
