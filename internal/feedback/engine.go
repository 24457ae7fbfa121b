package feedback

import (
	"context"
	"fmt"

	"merrylights-backend/internal/logger"
	"merrylights-backend/internal/models"
)

// Action describes what a toggle did.
type Action string

const (
	// ActionAdded: the record was created and the counter incremented.
	ActionAdded Action = "added"
	// ActionRemoved: the record was deleted and the counter decremented
	// (unless it was already at zero).
	ActionRemoved Action = "removed"
	// ActionAlreadyExists: a concurrent request created the record between
	// our read and our insert. The winner incremented the counter; we don't.
	ActionAlreadyExists Action = "already_exists"
)

// Result is the outcome of one toggle.
type Result struct {
	Action Action `json:"action"`
	Active bool   `json:"active"`
}

// EntityStore is the view of a target collection the engine needs: an
// existence check and an atomic counter adjustment. AdjustCounter moves the
// field by delta (±1); a positive delta initializes a missing counter to
// zero, a negative delta applies only while the counter is positive and
// reports applied=false when the floor condition fails.
type EntityStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	AdjustCounter(ctx context.Context, id, field string, delta int) (applied bool, err error)
}

// FeedbackStore persists feedback records keyed by their deterministic id.
// CreateIfAbsent must reject a second record with the same id and report the
// lost race as (false, nil) — that conditional insert is the sole guarantee
// that at most one record exists per (user, target, kind) triple.
type FeedbackStore interface {
	Get(ctx context.Context, id string) (*models.FeedbackRecord, error)
	CreateIfAbsent(ctx context.Context, rec *models.FeedbackRecord) (created bool, err error)
	Delete(ctx context.Context, id string) error
}

// Engine toggles feedback records and maintains the counters. It is stateless
// apart from its store handles and safe for concurrent use; all coordination
// happens through the stores' conditional writes.
type Engine struct {
	entities map[models.TargetType]EntityStore
	records  FeedbackStore
}

func NewEngine(records FeedbackStore) *Engine {
	return &Engine{
		entities: make(map[models.TargetType]EntityStore),
		records:  records,
	}
}

// RegisterTarget wires the entity store for one target type. Called once at
// startup before the engine serves requests.
func (e *Engine) RegisterTarget(target models.TargetType, store EntityStore) {
	e.entities[target] = store
}

// Toggle flips the (userID, targetID, kind) feedback record and adjusts the
// matching counter.
//
// The initial Get is an optimization that routes the call down the add or
// remove path; correctness does not depend on it. Two concurrent first-time
// toggles can both read "absent", but only one conditional insert succeeds —
// the loser is reported as already_exists and leaves the counter alone, so
// the counter never double-counts. The counter itself is a denormalized
// approximation: if the process dies between the record write and the counter
// write the two drift, which is tolerated rather than repaired here.
func (e *Engine) Toggle(ctx context.Context, userID string, target models.TargetType, targetID string, kind models.FeedbackKind) (Result, error) {
	store, ok := e.entities[target]
	if !ok {
		return Result{}, fmt.Errorf("no entity store registered for target type %q", target)
	}
	if !models.ValidFeedbackKind(target, kind) {
		return Result{}, ErrInvalidKind
	}

	exists, err := store.Exists(ctx, targetID)
	if err != nil {
		return Result{}, fmt.Errorf("entity store: %w", err)
	}
	if !exists {
		return Result{}, ErrTargetNotFound
	}

	recordID := models.FeedbackID(userID, targetID, kind)
	field := models.CounterField(kind)

	existing, err := e.records.Get(ctx, recordID)
	if err != nil {
		return Result{}, fmt.Errorf("feedback store: %w", err)
	}

	if existing != nil {
		// Toggle off. The delete is idempotent and authoritative; the
		// decrement is best-effort with a floor at zero.
		if err := e.records.Delete(ctx, recordID); err != nil {
			return Result{}, fmt.Errorf("feedback store: %w", err)
		}
		applied, err := store.AdjustCounter(ctx, targetID, field, -1)
		if err != nil {
			return Result{}, fmt.Errorf("entity store: %w", err)
		}
		if !applied {
			// Counter already at zero — drift from an earlier partial
			// failure. The record removal still stands.
			logger.Ctx(ctx).Warn().
				Str("target_id", targetID).
				Str("counter", field).
				Msg("skipped decrement, counter already at zero")
		}
		return Result{Action: ActionRemoved, Active: false}, nil
	}

	created, err := e.records.CreateIfAbsent(ctx, &models.FeedbackRecord{
		ID:         recordID,
		TargetType: target,
		TargetID:   targetID,
		UserID:     userID,
		Kind:       kind,
	})
	if err != nil {
		return Result{}, fmt.Errorf("feedback store: %w", err)
	}
	if !created {
		// Lost the insert race; the concurrent winner owns the increment.
		logger.Ctx(ctx).Debug().
			Str("record_id", recordID).
			Msg("toggle lost create race")
		return Result{Action: ActionAlreadyExists, Active: true}, nil
	}

	if _, err := store.AdjustCounter(ctx, targetID, field, 1); err != nil {
		return Result{}, fmt.Errorf("entity store: %w", err)
	}
	return Result{Action: ActionAdded, Active: true}, nil
}
