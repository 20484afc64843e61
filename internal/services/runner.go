package services

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/token-ledger/backend/internal/events"
	"github.com/token-ledger/backend/internal/store"
	"go.uber.org/zap"
)

// unit is the state of one ledger operation: the user it runs for, the
// transaction staging its writes and the events to publish on success.
type unit struct {
	ctx    context.Context
	tx     *store.Tx
	userID string
	now    time.Time
	events []events.Event
	data   map[string]any
	held   []*sync.Mutex
}

// hold locks mu until the operation has committed.
func (u *unit) hold(mu *sync.Mutex) {
	mu.Lock()
	u.held = append(u.held, mu)
}

func (u *unit) release() {
	for i := len(u.held) - 1; i >= 0; i-- {
		u.held[i].Unlock()
	}
	u.held = nil
}

func (u *unit) emit(eventType string, payload map[string]any) {
	payload["user_id"] = u.userID
	u.events = append(u.events, events.Event{Type: eventType, Payload: payload})
}

func (u *unit) set(key string, value any) {
	if u.data == nil {
		u.data = make(map[string]any)
	}
	u.data[key] = value
}

// runner executes operations under the per-user lock and commits their
// staged writes in one batch.
type runner struct {
	store     store.Store
	publisher events.Publisher
	clock     clockwork.Clock
	locks     *keyedMutex
	log       *zap.Logger
}

func newRunner(st store.Store, publisher events.Publisher, clock clockwork.Clock, log *zap.Logger) *runner {
	return &runner{
		store:     st,
		publisher: publisher,
		clock:     clock,
		locks:     newKeyedMutex(),
		log:       log,
	}
}

// mutate runs fn and commits. Once the lock is taken the operation runs to
// completion even if the caller goes away.
func (r *runner) mutate(ctx context.Context, userID, operation string, fn func(u *unit) error) error {
	unlock := r.locks.Lock(userID)
	defer unlock()

	ctx = context.WithoutCancel(ctx)
	u := r.newUnit(ctx, userID)

	err := storageErr(fn(u))
	if err == nil {
		if cerr := u.tx.Commit(ctx); cerr != nil {
			r.log.Error("ledger commit failed",
				zap.String("user_id", userID),
				zap.String("operation", operation),
				zap.Error(cerr),
			)
			err = storageErr(cerr)
		}
	}
	u.release()

	r.publishOutcome(ctx, u, operation, err)
	return err
}

// view runs a read-only fn under the user lock; staged writes are dropped.
func (r *runner) view(ctx context.Context, userID string, fn func(u *unit) error) error {
	unlock := r.locks.Lock(userID)
	defer unlock()
	u := r.newUnit(ctx, userID)
	defer u.release()
	return storageErr(fn(u))
}

func (r *runner) newUnit(ctx context.Context, userID string) *unit {
	return &unit{
		ctx:    ctx,
		tx:     store.NewTx(r.store),
		userID: userID,
		now:    r.clock.Now().UTC(),
	}
}

func (r *runner) publishOutcome(ctx context.Context, u *unit, operation string, opErr error) {
	payload := map[string]any{
		"user_id":   u.userID,
		"operation": operation,
		"ok":        opErr == nil,
	}
	if opErr != nil {
		payload["kind"] = string(KindOf(opErr))
		payload["message"] = opErr.Error()
	} else {
		if u.data != nil {
			payload["data"] = u.data
		}
		for _, e := range u.events {
			r.publish(ctx, e)
		}
	}
	r.publish(ctx, events.Event{Type: events.EventLedgerOutcome, Payload: payload})
}

func (r *runner) publish(ctx context.Context, e events.Event) {
	if err := r.publisher.Publish(ctx, events.StreamLedger, e); err != nil {
		r.log.Warn("failed to publish event",
			zap.String("type", e.Type),
			zap.String("user_id", e.UserID()),
			zap.Error(err),
		)
	}
}
