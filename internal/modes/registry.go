// Package modes maps a mode identifier to the system instruction and
// sampling temperature used for a model call. Resolution is a pure
// function of the mode id and a snapshot of the user's custom modes; it
// has no side effects and never fails.
package modes

import (
	"github.com/kawanlabs/kawan-backend/internal/domain"
)

// Preset mode ids.
const (
	Default      = "default"
	Creative     = "creative"
	Professional = "professional"
	Storyteller  = "storyteller"
	Sarcastic    = "sarcastic"
	Technical    = "technical"
	Philosopher  = "philosopher"
)

// Resolved is the outcome of mode resolution: everything the context
// assembler and the economy ledger need to know about the selected mode.
type Resolved struct {
	ID                string
	SystemInstruction string
	Temperature       float32
	// Billable is true only for the pro presets; a pro turn costs credits.
	// Custom modes are never billable per turn; their cost was paid once
	// at creation.
	Billable bool
	Custom   bool
}

type preset struct {
	instruction string
	temperature float32
	billable    bool
}

var presets = map[string]preset{
	Default: {
		instruction: "You are Kawan, a warm and helpful AI companion. Answer clearly and honestly, and keep a friendly tone.",
		temperature: 0.7,
	},
	Creative: {
		instruction: "You are Kawan in creative mode. Be imaginative and playful: offer unexpected angles, vivid wording, and original ideas.",
		temperature: 1.0,
	},
	Professional: {
		instruction: "You are Kawan in professional mode. Be precise, structured, and businesslike. Prefer short paragraphs and concrete recommendations.",
		temperature: 0.4,
	},
	Storyteller: {
		instruction: "You are Kawan the storyteller. Answer through narrative: set scenes, build characters, and let the story carry the point.",
		temperature: 0.9,
		billable:    true,
	},
	Sarcastic: {
		instruction: "You are Kawan in sarcastic mode. Be witty and dry, with playful jabs, while still actually answering the question.",
		temperature: 0.8,
		billable:    true,
	},
	Technical: {
		instruction: "You are Kawan in technical mode. Be rigorous and exact: cite mechanisms, show steps, and prefer correctness over approachability.",
		temperature: 0.2,
		billable:    true,
	},
	Philosopher: {
		instruction: "You are Kawan the philosopher. Examine questions from first principles, weigh opposing views, and reason out loud before concluding.",
		temperature: 0.7,
		billable:    true,
	},
}

// Resolve maps modeID to its instruction and temperature.
//
// Unknown ids are first looked up in the user's custom modes; a match uses
// the stored prompt verbatim with the default temperature. Anything else
// silently falls back to the default preset. The fallback is a deliberate
// leniency policy: a stale or mistyped mode id degrades the persona, it
// never fails the turn.
func Resolve(modeID string, customModes []domain.CustomMode) Resolved {
	if p, ok := presets[modeID]; ok {
		return Resolved{
			ID:                modeID,
			SystemInstruction: p.instruction,
			Temperature:       p.temperature,
			Billable:          p.billable,
		}
	}
	for _, cm := range customModes {
		if cm.ID == modeID {
			return Resolved{
				ID:                modeID,
				SystemInstruction: cm.Prompt,
				Temperature:       presets[Default].temperature,
				Custom:            true,
			}
		}
	}
	d := presets[Default]
	return Resolved{
		ID:                Default,
		SystemInstruction: d.instruction,
		Temperature:       d.temperature,
	}
}

// IsPreset reports whether id names a preset mode.
func IsPreset(id string) bool {
	_, ok := presets[id]
	return ok
}

// Presets returns the preset ids in a stable order for the modes listing.
func Presets() []string {
	return []string{Default, Creative, Professional, Storyteller, Sarcastic, Technical, Philosopher}
}
