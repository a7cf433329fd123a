package insights

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vkarpenko/gitpulse/internal/github"
)

// recentCommitWindow is how many of the latest commits feed the graph and
// sunburst builders.
const recentCommitWindow = 40

// noiseDirs are excluded from module and directory aggregation.
var noiseDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
	".idea":        true,
	".vscode":      true,
}

// commitChange is one enriched commit: who touched which paths.
type commitChange struct {
	Author    string
	AvatarURL string
	Paths     []string
}

// recentCommits fetches the latest commit page.
func (s *Service) recentCommits(ctx context.Context) ([]github.Commit, bool) {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(recentCommitWindow))
	payload, ok := s.fetcher.FetchTTL(ctx, s.path("commits"), params, listTTL)
	if !ok {
		return nil, false
	}

	var commits []github.Commit
	if err := json.Unmarshal(payload, &commits); err != nil {
		slog.Warn("Commit list payload unparseable", "error", err)
		return nil, false
	}
	return commits, true
}

// commitChanges enriches the recent commits with per-file detail, gated by
// the concurrency limiter so at most N detail fetches are in flight at once.
// ok is false when detail-level data is unavailable (lite mode, or every
// enrichment came back absent): callers then switch to synthetic fallbacks.
func (s *Service) commitChanges(ctx context.Context) ([]commitChange, bool) {
	if s.lite {
		return nil, false
	}

	commits, ok := s.recentCommits(ctx)
	if !ok || len(commits) == 0 {
		return nil, false
	}

	results := make([]*commitChange, len(commits))
	g, gctx := errgroup.WithContext(ctx)

	for i := range commits {
		commit := commits[i]
		if commit.SHA == "" {
			continue
		}
		idx := i
		g.Go(func() error {
			if err := s.limiter.Acquire(gctx); err != nil {
				return nil // abandoned, not an error for the batch
			}
			defer s.limiter.Release()

			payload, ok := s.fetcher.Fetch(gctx, s.path("commits", commit.SHA), nil)
			if !ok {
				return nil
			}

			var detail github.CommitDetail
			if err := json.Unmarshal(payload, &detail); err != nil {
				return nil // malformed record, skip
			}

			paths := make([]string, 0, len(detail.Files))
			for _, f := range detail.Files {
				if f.Filename != "" {
					paths = append(paths, f.Filename)
				}
			}

			change := &commitChange{Paths: paths}
			if commit.Author != nil {
				change.Author = commit.Author.Login
				change.AvatarURL = commit.Author.AvatarURL
			} else {
				change.Author = commit.Commit.Author.Name
			}
			results[idx] = change
			return nil
		})
	}
	_ = g.Wait()

	changes := make([]commitChange, 0, len(results))
	for _, r := range results {
		if r != nil && len(r.Paths) > 0 {
			changes = append(changes, *r)
		}
	}
	if len(changes) == 0 {
		return nil, false
	}
	return changes, true
}

// topLevelSegments returns the distinct leading path segments of the given
// file paths, excluding noise directories and root-level files.
func topLevelSegments(paths []string) []string {
	seen := make(map[string]bool)
	segments := make([]string, 0, 4)
	for _, p := range paths {
		idx := strings.IndexByte(p, '/')
		if idx <= 0 {
			continue
		}
		top := p[:idx]
		if noiseDirs[top] || seen[top] {
			continue
		}
		seen[top] = true
		segments = append(segments, top)
	}
	return segments
}
