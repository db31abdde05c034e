package graph

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lgrosz/climb-catalog/internal/domain/catalog"
	"github.com/lgrosz/climb-catalog/internal/domain/changelog"
	"github.com/lgrosz/climb-catalog/internal/domain/hierarchy"
	"github.com/lgrosz/climb-catalog/internal/events"
)

func event(kind string, id int64, action string, p changelog.Payload) events.Event {
	raw, _ := json.Marshal(p)
	return events.Event{EntityKind: kind, EntityID: id, Action: action, Payload: raw, At: time.Unix(0, 0)}
}

func TestStatementsForCreated(t *testing.T) {
	stmts, err := statementsFor(event("area", 3, changelog.ActionCreated, changelog.Payload{Names: catalog.NamesOf("Red Rocks")}))
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0].cypher, "MERGE (n:Area {id: $id})")
	assert.Equal(t, []string{"Red Rocks"}, stmts[0].params["names"])
}

func TestStatementsForParentSetReplacesEdge(t *testing.T) {
	parent := hierarchy.NodeRef{Kind: hierarchy.KindFormation, ID: 9}
	stmts, err := statementsFor(event("climb", 4, changelog.ActionParentSet, changelog.Payload{Parent: &parent}))
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0].cypher, "DELETE r")
	assert.Contains(t, stmts[1].cypher, "MERGE (p:Formation {id: $parent_id})")
	assert.Equal(t, int64(9), stmts[1].params["parent_id"])
}

func TestStatementsForParentSetWithoutParent(t *testing.T) {
	_, err := statementsFor(event("area", 1, changelog.ActionParentSet, changelog.Payload{}))
	require.Error(t, err)
}

func TestStatementsForLocation(t *testing.T) {
	stmts, err := statementsFor(event("formation", 2, changelog.ActionLocationSet, changelog.Payload{
		Location: &catalog.Location{Lat: 36.1, Lon: -115.4, SRID: 4326},
	}))
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, int64(4326), stmts[0].params["srid"])

	stmts, err = statementsFor(event("formation", 2, changelog.ActionLocationSet, changelog.Payload{}))
	require.NoError(t, err)
	assert.Contains(t, stmts[0].cypher, "REMOVE n.lat")
}

func TestStatementsForIgnoresOtherEntities(t *testing.T) {
	stmts, err := statementsFor(event(changelog.EntityClimber, 1, changelog.ActionCreated, changelog.Payload{}))
	require.NoError(t, err)
	assert.Empty(t, stmts)

	stmts, err = statementsFor(event("climb", 1, changelog.ActionLinked, changelog.Payload{}))
	require.NoError(t, err)
	assert.Empty(t, stmts)
}

func TestResyncStatementsBatchesNodesAndEdges(t *testing.T) {
	snap := &Snapshot{
		Areas:       []*catalog.Area{{ID: 1, Names: catalog.NamesOf("a")}, {ID: 2}},
		Climbs:      []*catalog.Climb{{ID: 7}},
		AreaParents: []*hierarchy.AreaBelongsTo{{AreaID: 2, SuperAreaID: 1}},
		ClimbParents: []*hierarchy.ClimbBelongsTo{
			hierarchy.NewClimbBelongsTo(7, hierarchy.AreaParent(2)),
		},
	}
	batches := resyncStatements(snap, time.Unix(0, 0).UTC())
	require.Len(t, batches, 4)

	total := 0
	for _, b := range batches {
		total += b.rows
	}
	assert.Equal(t, snap.Rows(), total)
	assert.True(t, strings.Contains(batches[2].stmt.cypher, "MATCH (c:Area {id: r.child})"))
	assert.True(t, strings.Contains(batches[3].stmt.cypher, "MATCH (c:Climb {id: r.child})"))
}

func TestChunks(t *testing.T) {
	rows := make([]map[string]any, resyncBatch+1)
	got := chunks(rows)
	require.Len(t, got, 2)
	assert.Len(t, got[1], 1)
	assert.Nil(t, chunks(nil))
}
