// internal/correction/types.go
package correction

import (
	"github.com/parcelforge/parcelforge/internal/schema"
	"github.com/parcelforge/parcelforge/internal/types"
)

/*
 * Domain types for the self-correction loop.
 *
 * The loop's progress IS its data: a Result holds the growing, append-only
 * Attempt sequence, and "have we exceeded the ceiling" is a pure function of
 * len(attempts) and the configured ceiling. No hidden mutable counters, so
 * termination is testable without executing the loop (see Config.Exhausted).
 *
 * Attempts are immutable once recorded. The loop appends, never mutates.
 */

// Outcome is the terminal state of one correction run.
type Outcome string

const (
	// OutcomeSuccess: the template rendered a record that passed validation.
	OutcomeSuccess Outcome = "success"

	// OutcomeEscalated: the attempt ceiling was reached with the template
	// still invalid. The caller owns the user-facing choice from here (fix
	// source, manual fix, skip, abort); this package only guarantees the
	// data needed to present it.
	OutcomeEscalated Outcome = "escalated"

	// OutcomeAborted: the caller cancelled between attempts.
	OutcomeAborted Outcome = "aborted"
)

// Attempt records one render -> validate -> (repair) cycle.
type Attempt struct {
	Number         int                      `json:"attempt_number"` // 1-based
	InputTemplate  string                   `json:"input_template"`
	Errors         []schema.ValidationError `json:"errors,omitempty"` // empty iff Succeeded
	OutputTemplate string                   `json:"output_template,omitempty"`
	HasOutput      bool                     `json:"has_output"` // false when no candidate was extracted
	Succeeded      bool                     `json:"succeeded"`
}

// Result is the complete, ordered audit trail of one correction run.
type Result struct {
	FinalTemplate string    `json:"final_template"`
	Attempts      []Attempt `json:"attempts"`
	Outcome       Outcome   `json:"outcome"`

	// Errors holds the final violation set when Outcome is escalated.
	Errors []schema.ValidationError `json:"errors,omitempty"`

	// RequiresConfirmation is set when success came via a repaired template
	// and the caller did not opt into auto-accept.
	RequiresConfirmation bool `json:"requires_confirmation,omitempty"`
}

// Config is the caller-supplied loop configuration. Nothing here persists.
type Config struct {
	// MaxAttempts is the attempt ceiling, clamped to
	// [types.MinAttemptCeiling, types.MaxAttemptCeiling]. Zero means the
	// default ceiling.
	MaxAttempts int

	// Enabled gates the repair collaborator. When false the loop performs a
	// single render+validate pass and escalates on failure without ever
	// calling out.
	Enabled bool

	// AutoAccept accepts a successful correction without further caller
	// confirmation.
	AutoAccept bool
}

// DefaultConfig returns the default loop configuration.
func DefaultConfig() Config {
	return Config{MaxAttempts: types.DefaultAttemptCeiling, Enabled: true}
}

// Ceiling returns the effective attempt ceiling after clamping.
func (c Config) Ceiling() int {
	n := c.MaxAttempts
	if n == 0 {
		n = types.DefaultAttemptCeiling
	}
	if n < types.MinAttemptCeiling {
		n = types.MinAttemptCeiling
	}
	if n > types.MaxAttemptCeiling {
		n = types.MaxAttemptCeiling
	}
	if !c.Enabled {
		return 1
	}
	return n
}

// Exhausted reports whether a run with the given attempt history has reached
// the ceiling. Pure function of the history length and the configuration.
func (c Config) Exhausted(attempts []Attempt) bool {
	return len(attempts) >= c.Ceiling()
}
