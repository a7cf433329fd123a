package insights

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"time"

	"github.com/vkarpenko/gitpulse/internal/github"
)

// MilestoneProgress is an open milestone with its completion percentage.
type MilestoneProgress struct {
	Title        string     `json:"title"`
	OpenIssues   int        `json:"openIssues"`
	ClosedIssues int        `json:"closedIssues"`
	Percent      int        `json:"percent"`
	DueOn        *time.Time `json:"dueOn,omitempty"`
	URL          string     `json:"url"`
}

const milestonesKey = "agg:milestones"

// Milestones maps open milestones to completion percentages.
func (s *Service) Milestones(ctx context.Context) []MilestoneProgress {
	var cached []MilestoneProgress
	if s.cachedAggregate(milestonesKey, milestonesTTL, &cached) {
		return cached
	}

	params := url.Values{}
	params.Set("state", "open")
	params.Set("per_page", "20")
	payload, ok := s.fetcher.FetchTTL(ctx, s.path("milestones"), params, milestonesTTL)
	if !ok {
		return []MilestoneProgress{}
	}

	var raw []github.Milestone
	if err := json.Unmarshal(payload, &raw); err != nil {
		slog.Warn("Milestone list unparseable", "error", err)
		return []MilestoneProgress{}
	}

	progress := make([]MilestoneProgress, 0, len(raw))
	for _, m := range raw {
		total := m.OpenIssues + m.ClosedIssues
		percent := 0
		if total > 0 {
			percent = m.ClosedIssues * 100 / total
		}
		progress = append(progress, MilestoneProgress{
			Title:        m.Title,
			OpenIssues:   m.OpenIssues,
			ClosedIssues: m.ClosedIssues,
			Percent:      percent,
			DueOn:        m.DueOn,
			URL:          m.HTMLURL,
		})
	}

	s.storeAggregate(milestonesKey, progress)
	return progress
}
