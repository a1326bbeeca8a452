// Package graphdb publishes neuron populations and per-timestep synapses to
// a Neo4j database so the network can be queried with Cypher.
package graphdb

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Runner executes a Cypher query and returns a buffered result.
type Runner interface {
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// Executor is a Runner backed by the official driver.
type Executor struct {
	Driver neo4j.DriverWithContext
	DBName string
}

func NewExecutor(uri, username, password, dbName string) (*Executor, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create neo4j driver: %w", err)
	}
	return &Executor{Driver: driver, DBName: dbName}, nil
}

func (e *Executor) Verify(ctx context.Context) error {
	return e.Driver.VerifyConnectivity(ctx)
}

func (e *Executor) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(
		ctx,
		e.Driver,
		query,
		params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(e.DBName),
	)
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}
	return result, nil
}

func (e *Executor) Close(ctx context.Context) error {
	return e.Driver.Close(ctx)
}
