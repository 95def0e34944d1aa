package store

import (
	"slices"
	"sync/atomic"
)

// ConsumerID identifies a render consumer in a Graph.
type ConsumerID uint64

// Tracker records reads made while a consumer renders.
type Tracker interface {
	TrackRead(src Source, prop string)
}

// Source is a reactive container: a *Store or a *List.
type Source interface {
	ID() uint64
	observedBy(g *Graph)
}

// nextSourceID is shared by stores and lists so ids never collide.
var nextSourceID atomic.Uint64

type edge struct {
	src  uint64
	prop string
}

// Graph holds the dependency edges between consumers and store properties.
// Only the renderer calls Track and Clear; stores only invalidate.
// A Graph is not safe for concurrent use.
type Graph struct {
	deps  map[edge]map[ConsumerID]struct{}
	edges map[ConsumerID]map[edge]struct{}
	sink  func(ConsumerID)
}

// NewGraph creates a graph that reports invalidated consumers to sink.
func NewGraph(sink func(ConsumerID)) *Graph {
	return &Graph{
		deps:  make(map[edge]map[ConsumerID]struct{}),
		edges: make(map[ConsumerID]map[edge]struct{}),
		sink:  sink,
	}
}

// Track records that consumer c read prop of src.
func (g *Graph) Track(c ConsumerID, src Source, prop string) {
	src.observedBy(g)
	e := edge{src: src.ID(), prop: prop}
	consumers, ok := g.deps[e]
	if !ok {
		consumers = make(map[ConsumerID]struct{})
		g.deps[e] = consumers
	}
	consumers[c] = struct{}{}

	owned, ok := g.edges[c]
	if !ok {
		owned = make(map[edge]struct{})
		g.edges[c] = owned
	}
	owned[e] = struct{}{}
}

// Clear drops every edge of consumer c.
func (g *Graph) Clear(c ConsumerID) {
	for e := range g.edges[c] {
		consumers := g.deps[e]
		delete(consumers, c)
		if len(consumers) == 0 {
			delete(g.deps, e)
		}
	}
	delete(g.edges, c)
}

// Dependents returns the consumers that read prop of src, in id order.
func (g *Graph) Dependents(src Source, prop string) []ConsumerID {
	return g.dependents(src.ID(), prop)
}

// EdgeCount returns the number of edges held by consumer c.
func (g *Graph) EdgeCount(c ConsumerID) int {
	return len(g.edges[c])
}

func (g *Graph) dependents(src uint64, prop string) []ConsumerID {
	consumers := g.deps[edge{src: src, prop: prop}]
	if len(consumers) == 0 {
		return nil
	}
	out := make([]ConsumerID, 0, len(consumers))
	for c := range consumers {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

func (g *Graph) invalidate(src uint64, prop string) {
	if g.sink == nil {
		return
	}
	for _, c := range g.dependents(src, prop) {
		g.sink(c)
	}
}

// observers is embedded by sources to remember which graphs track them.
type observers struct {
	graphs []*Graph
}

func (o *observers) observedBy(g *Graph) {
	if !slices.Contains(o.graphs, g) {
		o.graphs = append(o.graphs, g)
	}
}

func (o *observers) notify(src uint64, prop string) {
	for _, g := range slices.Clone(o.graphs) {
		g.invalidate(src, prop)
	}
}
