package insights

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"net/url"
	"sort"
	"strings"

	"github.com/vkarpenko/gitpulse/internal/github"
)

// NodeKind classifies a graph node
type NodeKind string

// Node kinds
const (
	NodeContributor NodeKind = "contributor"
	NodeUser        NodeKind = "user"
	NodeModule      NodeKind = "module"
)

// GraphNode is one vertex of the contributor/module graph.
type GraphNode struct {
	ID     string   `json:"id"`
	Kind   NodeKind `json:"kind"`
	Weight int      `json:"weight"`
}

// GraphEdge connects a contributor to a module they touch. Synthetic marks
// edges fabricated in lite mode so consumers can distinguish provenance.
type GraphEdge struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Weight    int    `json:"weight"`
	Synthetic bool   `json:"synthetic,omitempty"`
}

// Graph is the derived contributor/module graph.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// primaryModules seed the graph so it is never empty, even with zero
// processed commits.
var primaryModules = []string{"core", "api", "ui", "docs", "infra"}

const graphKey = "agg:graph"

// ContributorGraph builds the node/edge set connecting contributors to the
// top-level code areas they touch across the recent commit window. Without
// detail-level access it degrades to synthetic edges that keep every
// contributor connected to at least one module.
func (s *Service) ContributorGraph(ctx context.Context) *Graph {
	var cached Graph
	if s.cachedAggregate(graphKey, graphTTL, &cached) {
		return &cached
	}

	b := newGraphBuilder()
	for _, m := range primaryModules {
		b.node("module:"+m, NodeModule)
	}

	contributors := s.contributors(ctx)
	for _, c := range contributors {
		b.node("user:"+c.Login, NodeContributor)
	}

	changes, detailed := s.commitChanges(ctx)
	if detailed {
		seeded := make(map[string]bool, len(contributors))
		for _, c := range contributors {
			seeded[c.Login] = true
		}
		for _, change := range changes {
			if change.Author == "" || isBotLogin(change.Author) {
				continue
			}
			kind := NodeContributor
			if !seeded[change.Author] {
				kind = NodeUser
			}
			author := b.node("user:"+change.Author, kind)
			for _, module := range topLevelSegments(change.Paths) {
				mod := b.node("module:"+module, NodeModule)
				b.edge(author.ID, mod.ID, 1, false)
				author.Weight++
				mod.Weight++
			}
		}
	}

	if !detailed || len(b.edges) == 0 {
		slog.Info("Graph builder in lite mode, seeding synthetic edges", "contributors", len(contributors))
		b.syntheticEdges(contributors)
	}

	graph := b.build()
	s.storeAggregate(graphKey, graph)
	return graph
}

// contributors fetches the known contributor list, bots filtered.
func (s *Service) contributors(ctx context.Context) []github.Contributor {
	params := url.Values{}
	params.Set("per_page", "12")
	payload, ok := s.fetcher.FetchTTL(ctx, s.path("contributors"), params, listTTL)
	if !ok {
		return nil
	}

	var all []github.Contributor
	if err := json.Unmarshal(payload, &all); err != nil {
		slog.Warn("Contributors payload unparseable", "error", err)
		return nil
	}

	contributors := make([]github.Contributor, 0, len(all))
	for _, c := range all {
		if c.Login == "" || isBotLogin(c.Login) {
			continue
		}
		contributors = append(contributors, c)
	}
	return contributors
}

// graphBuilder deduplicates nodes by id and edges by (source,target) while
// weights accumulate.
type graphBuilder struct {
	nodes     map[string]*GraphNode
	nodeOrder []string
	edges     map[string]*GraphEdge
	edgeOrder []string
}

func newGraphBuilder() *graphBuilder {
	return &graphBuilder{
		nodes: make(map[string]*GraphNode),
		edges: make(map[string]*GraphEdge),
	}
}

func (b *graphBuilder) node(id string, kind NodeKind) *GraphNode {
	if n, ok := b.nodes[id]; ok {
		return n
	}
	n := &GraphNode{ID: id, Kind: kind, Weight: 1}
	b.nodes[id] = n
	b.nodeOrder = append(b.nodeOrder, id)
	return n
}

func (b *graphBuilder) edge(source, target string, weight int, synthetic bool) {
	key := source + "->" + target
	if e, ok := b.edges[key]; ok {
		e.Weight += weight
		return
	}
	b.edges[key] = &GraphEdge{Source: source, Target: target, Weight: weight, Synthetic: synthetic}
	b.edgeOrder = append(b.edgeOrder, key)
}

// syntheticEdges connects every contributor to one or two primary modules
// with a small fixed weight. The generator is seeded from the contributor
// list so repeated builds over the same inputs agree.
func (b *graphBuilder) syntheticEdges(contributors []github.Contributor) {
	h := fnv.New64a()
	logins := make([]string, 0, len(contributors))
	for _, c := range contributors {
		logins = append(logins, c.Login)
	}
	h.Write([]byte(strings.Join(logins, ",")))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	for _, c := range contributors {
		count := 1 + rng.Intn(2)
		for i := 0; i < count; i++ {
			module := primaryModules[rng.Intn(len(primaryModules))]
			b.edge("user:"+c.Login, "module:"+module, 2, true)
		}
	}
}

func (b *graphBuilder) build() *Graph {
	g := &Graph{
		Nodes: make([]GraphNode, 0, len(b.nodes)),
		Edges: make([]GraphEdge, 0, len(b.edges)),
	}
	for _, id := range b.nodeOrder {
		g.Nodes = append(g.Nodes, *b.nodes[id])
	}
	for _, key := range b.edgeOrder {
		g.Edges = append(g.Edges, *b.edges[key])
	}
	sort.SliceStable(g.Edges, func(i, j int) bool { return g.Edges[i].Weight > g.Edges[j].Weight })
	return g
}
