package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/lgrosz/climb-catalog/internal/domain/catalog"
	"github.com/lgrosz/climb-catalog/internal/domain/changelog"
	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
	"github.com/lgrosz/climb-catalog/internal/events"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
	"github.com/lgrosz/climb-catalog/internal/platform/neo4jdb"
)

var labels = map[hierarchy.NodeKind]string{
	hierarchy.KindArea:      "Area",
	hierarchy.KindFormation: "Formation",
	hierarchy.KindClimb:     "Climb",
}

type statement struct {
	cypher string
	params map[string]any
}

// Projection mirrors the containment forest into neo4j as
// (:Area|:Formation|:Climb {id, names}) nodes joined by [:BELONGS_TO].
type Projection struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewProjection(log *logger.Logger, client *neo4jdb.Client) *Projection {
	return &Projection{client: client, log: log.With("publisher", "Neo4jContainment")}
}

func (p *Projection) Name() string { return "neo4j" }

// EnsureSchema creates the id uniqueness constraints. Failures are logged only.
func (p *Projection) EnsureSchema(ctx context.Context) {
	if p == nil || p.client == nil || p.client.Driver == nil {
		return
	}
	session := p.client.WriteSession(ctx)
	defer session.Close(ctx)

	for kind, label := range labels {
		q := fmt.Sprintf(`CREATE CONSTRAINT %s_id_unique IF NOT EXISTS FOR (n:%s) REQUIRE n.id IS UNIQUE`, kind, label)
		if res, err := session.Run(ctx, q, nil); err != nil {
			p.log.Warn("neo4j schema init failed (continuing)", "label", label, "error", err)
		} else {
			_, _ = res.Consume(ctx)
		}
	}
}

// Publish applies a batch of committed events in one neo4j transaction.
func (p *Projection) Publish(ctx context.Context, evs []events.Event) error {
	if p == nil || p.client == nil || p.client.Driver == nil || len(evs) == 0 {
		return nil
	}
	stmts := make([]statement, 0, len(evs))
	for _, ev := range evs {
		s, err := statementsFor(ev)
		if err != nil {
			p.log.Warn("skip change event", "id", ev.ID, "action", ev.Action, "error", err)
			continue
		}
		stmts = append(stmts, s...)
	}
	return p.run(ctx, stmts)
}

func (p *Projection) run(ctx context.Context, stmts []statement) error {
	if len(stmts) == 0 {
		return nil
	}
	session := p.client.WriteSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, s := range stmts {
			res, err := tx.Run(ctx, s.cypher, s.params)
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// statementsFor translates one event. Events about entities outside the
// forest produce no statements.
func statementsFor(ev events.Event) ([]statement, error) {
	kind := hierarchy.NodeKind(ev.EntityKind)
	label, ok := labels[kind]
	if !ok {
		return nil, nil
	}
	payload, err := ev.DecodePayload()
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	id := ev.EntityID
	syncedAt := ev.At.UTC().Format(time.RFC3339Nano)

	switch ev.Action {
	case changelog.ActionCreated, changelog.ActionRenamed:
		out := []statement{{
			cypher: fmt.Sprintf(`MERGE (n:%s {id: $id}) SET n.names = $names, n.synced_at = $synced_at`, label),
			params: map[string]any{"id": id, "names": nameStrings(payload.Names), "synced_at": syncedAt},
		}}
		if payload.Location != nil {
			out = append(out, locationStatement(id, payload.Location))
		}
		return out, nil
	case changelog.ActionParentSet:
		if payload.Parent == nil {
			return nil, fmt.Errorf("parent_set without parent")
		}
		parentLabel, ok := labels[payload.Parent.Kind]
		if !ok {
			return nil, fmt.Errorf("unknown parent kind %q", payload.Parent.Kind)
		}
		return []statement{
			detachParent(label, id),
			{
				cypher: fmt.Sprintf(`
MERGE (c:%s {id: $id})
MERGE (p:%s {id: $parent_id})
MERGE (c)-[r:BELONGS_TO]->(p)
SET r.synced_at = $synced_at`, label, parentLabel),
				params: map[string]any{"id": id, "parent_id": payload.Parent.ID, "synced_at": syncedAt},
			},
		}, nil
	case changelog.ActionParentCleared:
		return []statement{detachParent(label, id)}, nil
	case changelog.ActionLocationSet:
		if kind != hierarchy.KindFormation {
			return nil, nil
		}
		return []statement{locationStatement(id, payload.Location)}, nil
	case changelog.ActionDeleted:
		return []statement{{
			cypher: fmt.Sprintf(`MATCH (n:%s {id: $id}) DETACH DELETE n`, label),
			params: map[string]any{"id": id},
		}}, nil
	default:
		return nil, nil
	}
}

func detachParent(label string, id int64) statement {
	return statement{
		cypher: fmt.Sprintf(`MATCH (:%s {id: $id})-[r:BELONGS_TO]->() DELETE r`, label),
		params: map[string]any{"id": id},
	}
}

func locationStatement(id int64, loc *catalog.Location) statement {
	if loc == nil {
		return statement{
			cypher: `MATCH (n:Formation {id: $id}) REMOVE n.lat, n.lon, n.srid`,
			params: map[string]any{"id": id},
		}
	}
	return statement{
		cypher: `MERGE (n:Formation {id: $id}) SET n.lat = $lat, n.lon = $lon, n.srid = $srid`,
		params: map[string]any{"id": id, "lat": loc.Lat, "lon": loc.Lon, "srid": int64(loc.SRID)},
	}
}

// nameStrings flattens Names for neo4j, which has no null list elements.
func nameStrings(names catalog.Names) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == nil {
			out = append(out, "")
			continue
		}
		out = append(out, *n)
	}
	return out
}
