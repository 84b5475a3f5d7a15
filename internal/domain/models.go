// Package domain defines the persistence models for users, projects, chat
// messages, and custom AI modes. These types are mapped with GORM and form
// the core data layer of the application.
//
// Economic invariants live on User: credits, coins, and exp never go
// negative, the achievement set only grows, and nextLevelExp is always
// derived from the current level. Enforcement is the job of the economy
// and service layers; the schema here provides explicit column defaults so
// no runtime backfill of missing numeric fields is ever needed.
package domain

import (
	"time"
)

// Message roles. Model turns are attributed to the user that initiated them.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// PlaceholderProjectName is the name a project carries until the first
// exchange triggers auto-titling.
const PlaceholderProjectName = "Untitled"

// User is the account record and the single point of write contention in
// the system. All balances and progression counters are persisted here;
// nothing economic is cached in process memory.
//
// Version implements optimistic concurrency: every mutation of a User row
// must update "WHERE id = ? AND version = ?" and bump Version, so two
// interleaved transactions cannot both commit against the same stale read.
type User struct {
	ID           string `json:"id"       gorm:"type:char(36);primaryKey"`
	Email        string `json:"email"    gorm:"type:varchar(255);not null;uniqueIndex"`
	Username     string `json:"username" gorm:"type:varchar(64);not null"`
	PasswordHash string `json:"-"        gorm:"type:varchar(128);not null"`

	// Account lifecycle: created unverified, activated on OTP verification.
	Verified     bool       `json:"verified" gorm:"not null;default:false"`
	OTPCode      string     `json:"-"        gorm:"type:varchar(12)"`
	OTPExpiresAt *time.Time `json:"-"`

	// Balances. Credits gate pro modes and store purchases; coins are the
	// casual currency earned per turn and spent on gacha draws.
	Credits int64 `json:"credits" gorm:"not null;default:0;check:credits >= 0"`
	Coins   int64 `json:"coins"   gorm:"not null;default:0;check:coins >= 0"`

	// Progression triple. NextLevelExp = floor(50 * 1.85^(level-1)).
	Exp          int64 `json:"exp"            gorm:"not null;default:0"`
	Level        int   `json:"level"          gorm:"not null;default:1"`
	NextLevelExp int64 `json:"next_level_exp" gorm:"not null;default:50"`

	// CreditsSpent is the lifetime total of credits debited, used by the
	// big-spender achievement rule. Monotone.
	CreditsSpent int64 `json:"credits_spent" gorm:"not null;default:0"`

	// Achievements is a monotonically growing set of achievement ids.
	Achievements StringSet `json:"achievements" gorm:"serializer:json;type:text"`

	// UnlockedThemes is the set of purchased UI theme ids.
	UnlockedThemes StringSet `json:"unlocked_themes" gorm:"serializer:json;type:text"`

	Version   int64     `json:"-" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Project is a chat thread owned by exactly one user. Its name starts as a
// placeholder and is renamed once by a generated title after the first
// exchange. Deleting a project cascades to its messages (messages first,
// then the parent row).
type Project struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:char(36);not null;index:idx_user_projects"`
	Name      string    `json:"name"       gorm:"type:varchar(255);not null;default:'Untitled'"`
	Summary   string    `json:"summary"    gorm:"type:text;not null;default:''"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Project.
func (Project) TableName() string { return "projects" }

// ChatMessage is a single utterance within a project. Messages are totally
// ordered by (created_at, id) within a project, and a model turn always
// follows the user turn it answers.
//
// Mutability: user messages may be edited (role must be "user"); model
// messages may be regenerated in place (content replaced, same identity).
// Everything else is immutable once persisted.
type ChatMessage struct {
	ID        string `json:"id"         gorm:"type:char(36);primaryKey"`
	ProjectID string `json:"project_id" gorm:"type:char(36);not null;index:idx_project_msgs,priority:1"`
	// UserID records which user authored the turn; model turns carry the
	// initiating user's id.
	UserID  string `json:"user_id" gorm:"type:char(36);not null;index"`
	Role    string `json:"role"    gorm:"type:varchar(8);not null;check:role IN ('user','model')"`
	Content string `json:"content" gorm:"type:text;not null"`

	// Optional inline image attachment on user messages.
	ImageMIME string `json:"image_mime,omitempty" gorm:"type:varchar(64)"`
	ImageData []byte `json:"-"                    gorm:"type:blob"`

	CreatedAt time.Time `json:"created_at" gorm:"index:idx_project_msgs,priority:2"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_messages" }

// HasImage reports whether the message carries an inline image attachment.
func (m *ChatMessage) HasImage() bool {
	return m.ImageMIME != "" && len(m.ImageData) > 0
}

// CustomMode is a user-owned AI personality purchased once with credits and
// free to use afterwards. Position preserves creation order.
type CustomMode struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"  gorm:"type:char(36);not null;index:idx_user_modes,priority:1"`
	Name      string    `json:"name"     gorm:"type:varchar(64);not null"`
	Prompt    string    `json:"prompt"   gorm:"type:text;not null"`
	Position  int       `json:"position" gorm:"not null;default:0;index:idx_user_modes,priority:2"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for CustomMode.
func (CustomMode) TableName() string { return "custom_modes" }
