// internal/correction/loop.go
package correction

import (
	"context"

	"go.uber.org/zap"

	"github.com/parcelforge/parcelforge/internal/schema"
	"github.com/parcelforge/parcelforge/internal/types"
)

/*
 * Self-correction loop.
 *
 * State machine: RENDER -> VALIDATE -> {SUCCESS | REQUEST_REPAIR -> RENDER},
 * escalating when the attempt counter would exceed the configured ceiling
 * while the template is still invalid.
 *
 * Failure containment: everything that goes wrong inside the loop - render
 * errors, repair-call failures, unparseable repair responses - is captured
 * into the Attempt/Result audit trail, never raised. Each such failure
 * consumes exactly one attempt slot. Callers inspect Result.Outcome instead
 * of wrapping the loop in error handling.
 *
 * Concurrency: one loop instance is single-threaded cooperative; render and
 * validate never overlap within an invocation. Independent instances share
 * no mutable state, so different templates may be corrected concurrently.
 * Cancellation is cooperative between attempts; no attempt is interrupted
 * mid-repair-call. The repair collaborator carries its own timeout - its
 * failure is a failed attempt, not a loop crash.
 */

// Renderer applies a mapping template to a sample record. External
// collaborator; a render error is treated identically to a validation
// failure for attempt accounting.
type Renderer interface {
	Render(template string, record types.Record) (types.Record, error)
}

// Repairer requests a repaired template from a generative collaborator.
// No structured contract is assumed on the response beyond "may contain a
// template-shaped block".
type Repairer interface {
	Repair(ctx context.Context, template, formattedErrors string) (string, error)
}

// Loop drives bounded template correction against one target schema.
type Loop struct {
	renderer Renderer
	repairer Repairer
	cfg      Config
	logger   *zap.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger attaches a structured logger for per-attempt diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// NewLoop creates a correction loop. The renderer is required; the repairer
// may be nil, in which case every repair request counts as a failed attempt
// (useful for validate-only callers with Enabled=false).
func NewLoop(renderer Renderer, repairer Repairer, cfg Config, opts ...Option) *Loop {
	l := &Loop{
		renderer: renderer,
		repairer: repairer,
		cfg:      cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run corrects template against target, bounded by the configured ceiling.
// sample is the render input; when nil, a schema-derived synthetic record is
// used. The returned Result always carries the complete, ordered attempt
// history; Run itself never fails.
func (l *Loop) Run(ctx context.Context, template string, sample types.Record, target *schema.Schema) *Result {
	if sample == nil {
		sample = SyntheticRecord(target)
	}

	current := template
	res := &Result{}

	for !l.cfg.Exhausted(res.Attempts) {
		if ctx.Err() != nil {
			res.FinalTemplate = current
			res.Outcome = OutcomeAborted
			l.logger.Info("correction aborted",
				zap.Int("attempts", len(res.Attempts)))
			return res
		}

		attemptNum := len(res.Attempts) + 1
		violations := l.renderAndValidate(current, sample, target)

		if len(violations) == 0 {
			res.Attempts = append(res.Attempts, Attempt{
				Number:        attemptNum,
				InputTemplate: current,
				Succeeded:     true,
			})
			res.FinalTemplate = current
			res.Outcome = OutcomeSuccess
			res.RequiresConfirmation = attemptNum > 1 && !l.cfg.AutoAccept
			l.logger.Info("correction succeeded",
				zap.Int("attempt", attemptNum))
			return res
		}

		attempt := Attempt{
			Number:        attemptNum,
			InputTemplate: current,
			Errors:        violations,
		}

		// No repair on the final slot: the candidate could never be
		// re-validated, so the call would be wasted.
		if attemptNum < l.cfg.Ceiling() {
			formatted := schema.FormatErrors(schema.ValidationResult{Errors: violations})
			if candidate, ok := l.requestRepair(ctx, current, formatted); ok {
				attempt.OutputTemplate = candidate
				attempt.HasOutput = true
				current = candidate
			}
		}

		res.Attempts = append(res.Attempts, attempt)
		l.logger.Info("correction attempt failed",
			zap.Int("attempt", attemptNum),
			zap.Int("violations", len(violations)),
			zap.Bool("repaired", attempt.HasOutput))
	}

	res.FinalTemplate = current
	res.Outcome = OutcomeEscalated
	res.Errors = res.Attempts[len(res.Attempts)-1].Errors
	l.logger.Warn("correction escalated",
		zap.Int("attempts", len(res.Attempts)),
		zap.Int("violations", len(res.Errors)))
	return res
}

// renderAndValidate performs one RENDER -> VALIDATE transition and returns
// the violation batch. A render error becomes a single root-path violation
// so it flows through the same attempt accounting as schema failures.
func (l *Loop) renderAndValidate(template string, sample types.Record, target *schema.Schema) []schema.ValidationError {
	rendered, err := l.renderer.Render(template, sample)
	if err != nil {
		return []schema.ValidationError{{
			Path:     "(root)",
			Message:  "template rendering failed: " + err.Error(),
			Expected: "template that renders to a valid record",
			Actual:   err.Error(),
			Rule:     "render",
		}}
	}

	return schema.Validate(map[string]any(rendered), target).Errors
}

// requestRepair invokes the repair collaborator and extracts a candidate
// template. Any failure - missing repairer, call error, nothing
// template-shaped in the response - yields ok=false.
func (l *Loop) requestRepair(ctx context.Context, template, formattedErrors string) (string, bool) {
	if l.repairer == nil {
		return "", false
	}

	response, err := l.repairer.Repair(ctx, template, formattedErrors)
	if err != nil {
		l.logger.Warn("repair call failed", zap.Error(err))
		return "", false
	}

	candidate, ok := ExtractTemplate(response)
	if !ok {
		l.logger.Warn("repair response had no template-shaped block",
			zap.Int("response_len", len(response)))
	}
	return candidate, ok
}
