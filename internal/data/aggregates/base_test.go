package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lgrosz/climb-catalog/internal/domain/changelog"
	domainagg "github.com/lgrosz/climb-catalog/internal/domain/aggregates"
	"github.com/lgrosz/climb-catalog/internal/events"
	"github.com/lgrosz/climb-catalog/internal/platform/ctxutil"
	"github.com/lgrosz/climb-catalog/internal/platform/dbctx"
)

func TestExecuteWriteObservesSuccessStatus(t *testing.T) {
	hooks := &spyHooks{}
	runner := spyTxRunner{}

	err := executeWrite(context.Background(), BaseDeps{
		Runner: runner,
		Hooks:  hooks,
	}, "aggregate.test.success", func(_ dbctx.Context, _ *Journal) error { return nil })
	if err != nil {
		t.Fatalf("executeWrite success: %v", err)
	}
	if len(hooks.Operations) != 1 {
		t.Fatalf("operations count: want=1 got=%d", len(hooks.Operations))
	}
	if hooks.Operations[0].Status != "success" {
		t.Fatalf("operation status: want=success got=%s", hooks.Operations[0].Status)
	}
}

func TestExecuteWriteObservesErrorCodeStatus(t *testing.T) {
	hooks := &spyHooks{}
	runner := spyTxRunner{}

	err := executeWrite(context.Background(), BaseDeps{
		Runner: runner,
		Hooks:  hooks,
	}, "aggregate.test.cycle", func(_ dbctx.Context, _ *Journal) error {
		return domainagg.NewError(domainagg.CodeCycleDetected, "aggregate.test.cycle", "loop", nil)
	})
	if !domainagg.IsCode(err, domainagg.CodeCycleDetected) {
		t.Fatalf("expected cycle code, got=%v", err)
	}
	if len(hooks.Operations) != 1 || hooks.Operations[0].Status != string(domainagg.CodeCycleDetected) {
		t.Fatalf("unexpected op status: %+v", hooks.Operations)
	}
}

func TestExecuteWriteTracksConflictAndRetryCounters(t *testing.T) {
	t.Run("restricted delete", func(t *testing.T) {
		hooks := &spyHooks{}
		err := executeWrite(context.Background(), BaseDeps{
			Runner: spyTxRunner{},
			Hooks:  hooks,
		}, "aggregate.test.conflict", func(_ dbctx.Context, _ *Journal) error {
			return domainagg.NewError(domainagg.CodeRestrictedDelete, "aggregate.test.conflict", "has children", nil)
		})
		if !domainagg.IsCode(err, domainagg.CodeRestrictedDelete) {
			t.Fatalf("expected restricted_delete code, got=%v", err)
		}
		if len(hooks.Conflicts) != 1 || hooks.Conflicts[0] != "aggregate.test.conflict" {
			t.Fatalf("conflict hooks: %+v", hooks.Conflicts)
		}
		if len(hooks.Retries) != 0 {
			t.Fatalf("retry hooks should be empty, got=%+v", hooks.Retries)
		}
	})

	t.Run("retryable", func(t *testing.T) {
		hooks := &spyHooks{}
		err := executeWrite(context.Background(), BaseDeps{
			Runner: spyTxRunner{},
			Hooks:  hooks,
		}, "aggregate.test.retry", func(_ dbctx.Context, _ *Journal) error {
			return RetryableError("temporary lock timeout")
		})
		if !domainagg.IsCode(err, domainagg.CodeRetryable) {
			t.Fatalf("expected retryable code, got=%v", err)
		}
		if len(hooks.Retries) != 1 || hooks.Retries[0] != "aggregate.test.retry" {
			t.Fatalf("retry hooks: %+v", hooks.Retries)
		}
		if len(hooks.Conflicts) != 0 {
			t.Fatalf("conflict hooks should be empty, got=%+v", hooks.Conflicts)
		}
	})
}

func TestExecuteWritePublishesOnlyAfterSuccess(t *testing.T) {
	pub := &spyPublisher{}
	ctx := ctxutil.WithPrincipal(context.Background(), &ctxutil.Principal{Subject: "setter"})

	err := executeWrite(ctx, BaseDeps{Runner: spyTxRunner{}, Publisher: pub}, "aggregate.test.publish",
		func(_ dbctx.Context, j *Journal) error {
			j.Record("area", 7, changelog.ActionCreated, changelog.Payload{})
			return nil
		})
	if err != nil {
		t.Fatalf("executeWrite: %v", err)
	}
	if len(pub.Batches) != 1 || len(pub.Batches[0]) != 1 {
		t.Fatalf("expected one published event, got %+v", pub.Batches)
	}
	if ev := pub.Batches[0][0]; ev.EntityID != 7 || ev.Actor != "setter" {
		t.Fatalf("unexpected event: %+v", ev)
	}

	err = executeWrite(ctx, BaseDeps{Runner: spyTxRunner{}, Publisher: pub}, "aggregate.test.publish",
		func(_ dbctx.Context, j *Journal) error {
			j.Record("area", 8, changelog.ActionCreated, changelog.Payload{})
			return ValidationError("late failure")
		})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(pub.Batches) != 1 {
		t.Fatalf("failed write must not publish, got %d batches", len(pub.Batches))
	}
}

func TestExecuteWritePublishFailureIsNotReturned(t *testing.T) {
	pub := &spyPublisher{Err: errors.New("broker down")}
	err := executeWrite(context.Background(), BaseDeps{Runner: spyTxRunner{}, Publisher: pub}, "aggregate.test.publish",
		func(_ dbctx.Context, j *Journal) error {
			j.Record("climb", 1, changelog.ActionDeleted, changelog.Payload{})
			return nil
		})
	if err != nil {
		t.Fatalf("publisher failure leaked: %v", err)
	}
}

func TestAggregateErrorStatus(t *testing.T) {
	if got := aggregateErrorStatus(nil); got != "success" {
		t.Fatalf("nil status: want=success got=%s", got)
	}
	if got := aggregateErrorStatus(ValidationError("x")); got != string(domainagg.CodeValidation) {
		t.Fatalf("validation status: got=%s", got)
	}
	if got := aggregateErrorStatus(RetryableError("x")); got != string(domainagg.CodeRetryable) {
		t.Fatalf("retry status: got=%s", got)
	}
	if got := aggregateErrorStatus(context.DeadlineExceeded); got != string(domainagg.CodeRetryable) {
		t.Fatalf("deadline status: got=%s", got)
	}
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []string
	Retries    []string
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string) {
	h.Conflicts = append(h.Conflicts, name)
}

func (h *spyHooks) IncRetry(name string) {
	h.Retries = append(h.Retries, name)
}

type spyPublisher struct {
	Batches [][]events.Event
	Err     error
}

func (p *spyPublisher) Name() string { return "spy" }

func (p *spyPublisher) Publish(_ context.Context, evs []events.Event) error {
	if p.Err != nil {
		return p.Err
	}
	p.Batches = append(p.Batches, evs)
	return nil
}
