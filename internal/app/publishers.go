package app

import (
	"context"
	"fmt"

	redisclient "github.com/lgrosz/climb-catalog/internal/clients/redis"
	"github.com/lgrosz/climb-catalog/internal/data/graph"
	"github.com/lgrosz/climb-catalog/internal/events"
	"github.com/lgrosz/climb-catalog/internal/observability"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
	"github.com/lgrosz/climb-catalog/internal/platform/neo4jdb"
)

type Publishers struct {
	Bus    redisclient.EventBus
	Neo4j  *neo4jdb.Client
	Graph  *graph.Projection
	Fanout *events.Fanout
}

// wirePublishers connects the optional post-commit sinks. An unset address
// leaves that sink out; a set but unreachable one is an error.
func wirePublishers(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Publishers, error) {
	var (
		out   Publishers
		sinks []events.Publisher
	)
	if cfg.Redis.Addr != "" {
		bus, err := redisclient.NewEventBus(log, cfg.Redis)
		if err != nil {
			return out, fmt.Errorf("init redis event bus: %w", err)
		}
		out.Bus = bus
		sinks = append(sinks, bus)
	}

	client, err := neo4jdb.New(log, cfg.Neo4j)
	if err != nil {
		out.Close(ctx)
		return Publishers{}, err
	}
	if client != nil {
		out.Neo4j = client
		out.Graph = graph.NewProjection(log, client)
		out.Graph.EnsureSchema(ctx)
		sinks = append(sinks, out.Graph)
	}

	out.Fanout = events.NewFanout(log, metrics, sinks...)
	return out, nil
}

func (p Publishers) Close(ctx context.Context) {
	if p.Bus != nil {
		_ = p.Bus.Close()
	}
	if p.Neo4j != nil {
		_ = p.Neo4j.Close(ctx)
	}
}
