package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/lgrosz/climb-catalog/internal/domain/catalog"
	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
)

// Snapshot is the full relational forest read in one pass.
type Snapshot struct {
	Areas            []*catalog.Area
	Formations       []*catalog.Formation
	Climbs           []*catalog.Climb
	AreaParents      []*hierarchy.AreaBelongsTo
	FormationParents []*hierarchy.FormationBelongsTo
	ClimbParents     []*hierarchy.ClimbBelongsTo
}

// Rows is the number of nodes plus containment edges Resync will write.
func (s *Snapshot) Rows() int {
	return len(s.Areas) + len(s.Formations) + len(s.Climbs) +
		len(s.AreaParents) + len(s.FormationParents) + len(s.ClimbParents)
}

const resyncBatch = 500

// Resync replaces the projected forest with snap. progress, when set, is
// called with the number of nodes and edges written by each batch.
func (p *Projection) Resync(ctx context.Context, snap *Snapshot, progress func(n int)) error {
	if p == nil || p.client == nil || p.client.Driver == nil {
		return fmt.Errorf("neo4j projection not configured")
	}
	if err := p.run(ctx, []statement{{
		cypher: `MATCH (n) WHERE n:Area OR n:Formation OR n:Climb DETACH DELETE n`,
	}}); err != nil {
		return fmt.Errorf("clear projection: %w", err)
	}
	for _, batch := range resyncStatements(snap, time.Now().UTC()) {
		if err := p.run(ctx, []statement{batch.stmt}); err != nil {
			return err
		}
		if progress != nil {
			progress(batch.rows)
		}
	}
	return nil
}

type resyncBatchStmt struct {
	stmt statement
	rows int
}

func resyncStatements(snap *Snapshot, now time.Time) []resyncBatchStmt {
	syncedAt := now.Format(time.RFC3339Nano)
	var out []resyncBatchStmt

	nodes := map[string][]map[string]any{}
	for _, a := range snap.Areas {
		nodes["Area"] = append(nodes["Area"], map[string]any{"id": a.ID, "names": nameStrings(a.Names), "synced_at": syncedAt})
	}
	for _, f := range snap.Formations {
		row := map[string]any{"id": f.ID, "names": nameStrings(f.Names), "synced_at": syncedAt}
		if loc := f.Location(); loc != nil {
			row["lat"], row["lon"], row["srid"] = loc.Lat, loc.Lon, int64(loc.SRID)
		}
		nodes["Formation"] = append(nodes["Formation"], row)
	}
	for _, c := range snap.Climbs {
		nodes["Climb"] = append(nodes["Climb"], map[string]any{"id": c.ID, "names": nameStrings(c.Names), "synced_at": syncedAt})
	}
	for _, label := range []string{"Area", "Formation", "Climb"} {
		for _, chunk := range chunks(nodes[label]) {
			out = append(out, resyncBatchStmt{
				stmt: statement{
					cypher: fmt.Sprintf("UNWIND $nodes AS n\nMERGE (x:%s {id: n.id})\nSET x += n", label),
					params: map[string]any{"nodes": chunk},
				},
				rows: len(chunk),
			})
		}
	}

	edges := map[[2]string][]map[string]any{}
	add := func(child hierarchy.NodeRef, parent hierarchy.ParentRef) {
		if parent.IsZero() {
			return
		}
		key := [2]string{labels[child.Kind], labels[parent.Kind()]}
		edges[key] = append(edges[key], map[string]any{"child": child.ID, "parent": parent.ID(), "synced_at": syncedAt})
	}
	for _, r := range snap.AreaParents {
		add(hierarchy.NodeRef{Kind: hierarchy.KindArea, ID: r.AreaID}, r.Parent())
	}
	for _, r := range snap.FormationParents {
		if parent, err := r.Parent(); err == nil {
			add(hierarchy.NodeRef{Kind: hierarchy.KindFormation, ID: r.FormationID}, parent)
		}
	}
	for _, r := range snap.ClimbParents {
		if parent, err := r.Parent(); err == nil {
			add(hierarchy.NodeRef{Kind: hierarchy.KindClimb, ID: r.ClimbID}, parent)
		}
	}
	for _, key := range [][2]string{
		{"Area", "Area"}, {"Formation", "Area"}, {"Formation", "Formation"}, {"Climb", "Area"}, {"Climb", "Formation"},
	} {
		for _, chunk := range chunks(edges[key]) {
			out = append(out, resyncBatchStmt{
				stmt: statement{
					cypher: fmt.Sprintf(`
UNWIND $rels AS r
MATCH (c:%s {id: r.child})
MATCH (p:%s {id: r.parent})
MERGE (c)-[e:BELONGS_TO]->(p)
SET e.synced_at = r.synced_at`, key[0], key[1]),
					params: map[string]any{"rels": chunk},
				},
				rows: len(chunk),
			})
		}
	}
	return out
}

func chunks(rows []map[string]any) [][]map[string]any {
	var out [][]map[string]any
	for len(rows) > 0 {
		n := min(resyncBatch, len(rows))
		out = append(out, rows[:n])
		rows = rows[n:]
	}
	return out
}
