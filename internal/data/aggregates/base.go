package aggregates

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lgrosz/climb-catalog/internal/data/repos"
	domainagg "github.com/lgrosz/climb-catalog/internal/domain/aggregates"
	"github.com/lgrosz/climb-catalog/internal/domain/changelog"
	"github.com/lgrosz/climb-catalog/internal/events"
	"github.com/lgrosz/climb-catalog/internal/platform/ctxutil"
	"github.com/lgrosz/climb-catalog/internal/platform/dbctx"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

var tracer = otel.Tracer("github.com/lgrosz/climb-catalog/internal/data/aggregates")

type BaseDeps struct {
	DB        *gorm.DB
	Log       *logger.Logger
	Runner    TxRunner
	Hooks     Hooks
	Repos     *repos.Set
	Publisher events.Publisher
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Log == nil {
		d.Log = &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
	}
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Repos == nil && d.DB != nil {
		set := repos.NewSet(d.DB, d.Log)
		d.Repos = &set
	}
	if d.Publisher == nil {
		d.Publisher = events.Noop()
	}
	return d
}

// Journal collects the change log rows a write produces. They are appended
// inside the write's transaction and published only after it commits.
type Journal struct {
	actor   string
	changes []*changelog.Change
}

func (j *Journal) Record(entityKind string, entityID int64, action string, payload changelog.Payload) {
	j.changes = append(j.changes, &changelog.Change{
		EntityKind: entityKind,
		EntityID:   entityID,
		Action:     action,
		Actor:      j.actor,
		Payload:    payload.JSON(),
		CreatedAt:  time.Now().UTC(),
	})
}

func (j *Journal) Len() int { return len(j.changes) }

func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context, j *Journal) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	var committed []*changelog.Change
	err := deps.Runner.InTx(ctx, func(dbc dbctx.Context) error {
		j := &Journal{actor: ctxutil.Actor(ctx)}
		if err := fn(dbc, j); err != nil {
			return err
		}
		if len(j.changes) == 0 || deps.Repos == nil {
			committed = j.changes
			return nil
		}
		saved, err := deps.Repos.Changes.Append(dbc.Ctx, dbc.Tx, j.changes)
		if err != nil {
			return err
		}
		committed = saved
		return nil
	})
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		switch domainagg.CodeOf(mapped) {
		case domainagg.CodeUniquenessViolated, domainagg.CodeRestrictedDelete:
			deps.Hooks.IncConflict(op)
		case domainagg.CodeRetryable:
			deps.Hooks.IncRetry(op)
		}
		span.RecordError(mapped)
		span.SetStatus(codes.Error, status)
	}
	span.SetAttributes(attribute.String("aggregate.status", status), attribute.Int("aggregate.changes", len(committed)))
	deps.Hooks.ObserveOperation(op, status, time.Since(start))

	if mapped == nil && len(committed) > 0 {
		publish(ctx, deps, op, committed)
	}
	return mapped
}

// publish runs after commit; the write has already succeeded so failures are
// only logged.
func publish(ctx context.Context, deps BaseDeps, op string, changes []*changelog.Change) {
	if err := deps.Publisher.Publish(context.WithoutCancel(ctx), events.FromChanges(changes)); err != nil {
		deps.Log.Warn("publish change events failed", "op", op, "count", len(changes), "error", err)
	}
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
