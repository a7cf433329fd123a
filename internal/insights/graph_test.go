package insights

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contributorsBody = `[
  {"login":"alice","id":1,"avatar_url":"https://a/alice","contributions":120},
  {"login":"bob","id":2,"avatar_url":"https://a/bob","contributions":40},
  {"login":"dependabot[bot]","id":3,"avatar_url":"","contributions":300}
]`

func TestContributorGraph_LiteModeStaysConnected(t *testing.T) {
	up := newFakeUpstream()
	up.respond("repos/octo/widgets/contributors", 200, contributorsBody)
	s := newTestService(t, up, true)

	graph := s.ContributorGraph(context.Background())
	require.NotEmpty(t, graph.Edges, "lite mode must still produce edges")

	// Every non-bot contributor is connected to at least one module node.
	for _, login := range []string{"alice", "bob"} {
		connected := false
		for _, e := range graph.Edges {
			if e.Source == "user:"+login {
				connected = true
				assert.True(t, e.Synthetic, "lite-mode edges must be tagged synthetic")
			}
		}
		assert.True(t, connected, "contributor %s has no edge", login)
	}

	// Bot contributors are not seeded.
	for _, n := range graph.Nodes {
		assert.NotEqual(t, "user:dependabot[bot]", n.ID)
	}

	// Primary module nodes are always present.
	moduleNodes := 0
	for _, n := range graph.Nodes {
		if n.Kind == NodeModule {
			moduleNodes++
		}
	}
	assert.Equal(t, len(primaryModules), moduleNodes)
}

func TestContributorGraph_LiteModeIsDeterministic(t *testing.T) {
	build := func() *Graph {
		up := newFakeUpstream()
		up.respond("repos/octo/widgets/contributors", 200, contributorsBody)
		return newTestService(t, up, true).ContributorGraph(context.Background())
	}
	assert.Equal(t, build().Edges, build().Edges, "synthetic edges are seeded from the contributor list")
}

func TestContributorGraph_DetailedMode(t *testing.T) {
	up := newFakeUpstream()
	up.respond("repos/octo/widgets/contributors", 200, contributorsBody)
	up.respond("repos/octo/widgets/commits", 200, `[
	  {"sha":"aaa","commit":{"message":"one","author":{"name":"Alice"}},"author":{"login":"alice","avatar_url":"https://a/alice"}},
	  {"sha":"bbb","commit":{"message":"two","author":{"name":"Bob"}},"author":{"login":"bob","avatar_url":"https://a/bob"}}
	]`)
	up.respond("repos/octo/widgets/commits/aaa", 200, `{"sha":"aaa","files":[
	  {"filename":"core/engine/run.go"},{"filename":"core/engine/run_test.go"},
	  {"filename":"api/routes.go"},{"filename":"vendor/lib/x.go"},{"filename":"README.md"}
	]}`)
	up.respond("repos/octo/widgets/commits/bbb", 200, `{"sha":"bbb","files":[
	  {"filename":"core/models/user.go"}
	]}`)
	s := newTestService(t, up, false)

	graph := s.ContributorGraph(context.Background())

	edges := make(map[string]GraphEdge)
	for _, e := range graph.Edges {
		edges[e.Source+"->"+e.Target] = e
	}

	// alice touched core and api; bob touched core. Weights accumulate and
	// vendor/ and root-level files are excluded.
	require.Contains(t, edges, "user:alice->module:core")
	require.Contains(t, edges, "user:alice->module:api")
	require.Contains(t, edges, "user:bob->module:core")
	assert.NotContains(t, edges, "user:alice->module:vendor")

	coreEdge := edges["user:alice->module:core"]
	assert.False(t, coreEdge.Synthetic)
	assert.Equal(t, 1, coreEdge.Weight)

	// A rebuilt graph within the TTL comes from the derived cache: the
	// commit endpoints are not hit again.
	up.mu.Lock()
	commitCalls := up.calls["repos/octo/widgets/commits"]
	up.mu.Unlock()

	_ = s.ContributorGraph(context.Background())

	up.mu.Lock()
	assert.Equal(t, commitCalls, up.calls["repos/octo/widgets/commits"])
	up.mu.Unlock()
}

func TestTopLevelSegments(t *testing.T) {
	segments := topLevelSegments([]string{
		"core/a.go", "core/b.go", "api/x.go", "node_modules/dep/index.js", "Makefile",
	})
	assert.ElementsMatch(t, []string{"core", "api"}, segments)
}
