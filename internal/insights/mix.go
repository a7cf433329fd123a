package insights

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/vkarpenko/gitpulse/internal/github"
)

// MixCategory is one slice of the contribution mix chart: a fixed
// illustrative percentage plus the real underlying count.
type MixCategory struct {
	Name    string `json:"name"`
	Percent int    `json:"percent"`
	Count   int    `json:"count"`
}

// ContributionMix is the four-way contribution breakdown.
type ContributionMix struct {
	Categories []MixCategory `json:"categories"`
}

// Fixed chart weighting and per-category count floors. The floors keep a
// brand-new or low-activity repository rendering a meaningful chart.
var mixWeights = []struct {
	name    string
	percent int
	floor   int
}{
	{"Commits", 45, 20},
	{"Pull Requests", 25, 8},
	{"Issues", 20, 5},
	{"Reviews", 10, 10},
}

// ContributionMix combines four cheap aggregate counts (lifetime commits,
// total PRs, open issues, review comments) into the proportion-chart
// breakdown.
func (s *Service) ContributionMix(ctx context.Context) *ContributionMix {
	counts := [4]int{
		s.lifetimeCommitCount(ctx),
		s.countList(ctx, s.path("pulls"), url.Values{"state": {"all"}, "per_page": {"100"}}),
		s.openIssueCount(ctx),
		s.countList(ctx, s.path("pulls", "comments"), url.Values{"per_page": {"100"}}),
	}

	mix := &ContributionMix{Categories: make([]MixCategory, 0, len(mixWeights))}
	for i, w := range mixWeights {
		count := counts[i]
		if count < w.floor {
			count = w.floor
		}
		mix.Categories = append(mix.Categories, MixCategory{
			Name:    w.name,
			Percent: w.percent,
			Count:   count,
		})
	}
	return mix
}

// lifetimeCommitCount sums contribution counts over the contributor list.
func (s *Service) lifetimeCommitCount(ctx context.Context) int {
	params := url.Values{}
	params.Set("per_page", "100")
	payload, ok := s.fetcher.FetchTTL(ctx, s.path("contributors"), params, listTTL)
	if !ok {
		return 0
	}
	var contributors []github.Contributor
	if err := json.Unmarshal(payload, &contributors); err != nil {
		return 0
	}
	total := 0
	for _, c := range contributors {
		total += c.Contributions
	}
	return total
}

// openIssueCount reads the open-issue total off repository metadata.
func (s *Service) openIssueCount(ctx context.Context) int {
	payload, ok := s.fetcher.FetchTTL(ctx, s.path(), nil, listTTL)
	if !ok {
		return 0
	}
	var repo github.Repo
	if err := json.Unmarshal(payload, &repo); err != nil {
		return 0
	}
	return repo.OpenIssuesCount
}

// countList counts the records on the first page of a list endpoint.
func (s *Service) countList(ctx context.Context, endpoint string, params url.Values) int {
	payload, ok := s.fetcher.FetchTTL(ctx, endpoint, params, listTTL)
	if !ok {
		return 0
	}
	var records []json.RawMessage
	if err := json.Unmarshal(payload, &records); err != nil {
		return 0
	}
	return len(records)
}
