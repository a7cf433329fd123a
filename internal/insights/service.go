package insights

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/jonreiter/govader"

	"github.com/vkarpenko/gitpulse/internal/fetch"
)

// Derived-aggregate cache TTLs. Raw fetches underneath carry their own TTLs;
// the two expire independently by design.
const (
	graphTTL      = 72 * time.Hour
	sunburstTTL   = 72 * time.Hour
	reviewersTTL  = 6 * time.Hour
	triageTTL     = 5 * time.Minute
	boardTTL      = 15 * time.Minute
	milestonesTTL = time.Hour
	eventsTTL     = 5 * time.Minute
	listTTL       = 15 * time.Minute
)

// Service exposes one query method per derived view. Every method degrades
// to a documented neutral or placeholder result instead of returning an
// upstream failure to the caller.
type Service struct {
	fetcher  *fetch.Fetcher
	limiter  *fetch.Limiter
	owner    string
	repo     string
	lite     bool
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewService creates the aggregator service. lite disables detail-level
// enrichment (per-commit file changes) and switches the graph and sunburst
// builders to their synthetic fallbacks.
func NewService(fetcher *fetch.Fetcher, limiter *fetch.Limiter, owner, repo string, lite bool) *Service {
	return &Service{
		fetcher:  fetcher,
		limiter:  limiter,
		owner:    owner,
		repo:     repo,
		lite:     lite,
		analyzer: govader.NewSentimentIntensityAnalyzer(),
	}
}

// path builds an API path under the configured repository.
func (s *Service) path(parts ...string) string {
	p := "repos/" + s.owner + "/" + s.repo
	if len(parts) > 0 {
		p += "/" + strings.Join(parts, "/")
	}
	return p
}

// cachedAggregate loads a derived result from the cache if still fresh.
func (s *Service) cachedAggregate(key string, ttl time.Duration, out any) bool {
	payload, ok := s.fetcher.Cache().GetFresh(key, ttl)
	if !ok {
		return false
	}
	return json.Unmarshal(payload, out) == nil
}

// storeAggregate caches a derived result under its dedicated key so the next
// call skips the expensive rebuild.
func (s *Service) storeAggregate(key string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.fetcher.Cache().Put(key, payload)
}

// knownAutomationAccounts are logins filtered from every people-centric view.
var knownAutomationAccounts = map[string]bool{
	"dependabot":       true,
	"renovate":         true,
	"github-actions":   true,
	"codecov":          true,
	"greenkeeper":      true,
	"snyk-bot":         true,
	"web-flow":         true,
	"allcontributors":  true,
	"imgbot":           true,
	"stale":            true,
	"mergify":          true,
	"semantic-release": true,
}

// isBotLogin reports whether a login belongs to an automation account,
// either by GitHub's bot suffix or by naming convention.
func isBotLogin(login string) bool {
	l := strings.ToLower(login)
	if strings.HasSuffix(l, "[bot]") || strings.HasSuffix(l, "-bot") || strings.HasSuffix(l, "_bot") {
		return true
	}
	return knownAutomationAccounts[l]
}
