package insights

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/vkarpenko/gitpulse/internal/github"
)

// TriageAssignee identifies who an issue is assigned to.
type TriageAssignee struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatarUrl"`
}

// TriageIssue is one entry in the triage queue.
type TriageIssue struct {
	ID                 int             `json:"id"`
	Title              string          `json:"title"`
	URL                string          `json:"url"`
	Labels             []string        `json:"labels"`
	CreatedAt          time.Time       `json:"createdAt"`
	Assignee           *TriageAssignee `json:"assignee,omitempty"`
	IsBeginnerFriendly bool            `json:"isBeginnerFriendly"`
}

// TriageQueue is the derived triage view. Notice is set when the preferred
// beginner-friendly unassigned bucket was empty and a lower-priority bucket
// was served instead.
type TriageQueue struct {
	Issues []TriageIssue `json:"issues"`
	Notice bool          `json:"notice"`
}

const (
	triageKey   = "agg:triage"
	triageLimit = 10
)

// beginnerLabels mark an issue as a good entry point for new contributors.
var beginnerLabels = map[string]bool{
	"good first issue":  true,
	"good-first-issue":  true,
	"beginner":          true,
	"beginner friendly": true,
	"first-timers-only": true,
	"easy":              true,
}

// SelectTriage partitions open issues into beginner-unassigned, other
// unassigned and assigned buckets, then applies the waterfall policy: prefer
// beginner-unassigned, fall back (with Notice set) to any unassigned, then to
// assigned. At most 10 issues are returned.
func (s *Service) SelectTriage(ctx context.Context) *TriageQueue {
	var cached TriageQueue
	if s.cachedAggregate(triageKey, triageTTL, &cached) {
		return &cached
	}

	params := url.Values{}
	params.Set("state", "open")
	params.Set("per_page", "50")
	payload, ok := s.fetcher.FetchTTL(ctx, s.path("issues"), params, triageTTL)
	if !ok {
		return &TriageQueue{Issues: []TriageIssue{}, Notice: true}
	}

	var raw []github.Issue
	if err := json.Unmarshal(payload, &raw); err != nil {
		slog.Warn("Issue list payload unparseable", "error", err)
		return &TriageQueue{Issues: []TriageIssue{}, Notice: true}
	}

	queue := selectTriage(raw)
	s.storeAggregate(triageKey, queue)
	return queue
}

// selectTriage is the pure waterfall selection over an issue page.
func selectTriage(raw []github.Issue) *TriageQueue {
	var beginnerUnassigned, otherUnassigned, assigned []TriageIssue

	for i := range raw {
		issue := &raw[i]
		if issue.PullRequest != nil || issue.Number == 0 {
			continue // the issues API mixes in PRs; skip those and junk rows
		}

		t := TriageIssue{
			ID:        issue.Number,
			Title:     issue.Title,
			URL:       issue.HTMLURL,
			Labels:    labelNames(issue.Labels),
			CreatedAt: issue.CreatedAt,
		}
		for _, name := range t.Labels {
			if beginnerLabels[strings.ToLower(name)] {
				t.IsBeginnerFriendly = true
				break
			}
		}
		if issue.Assignee != nil {
			t.Assignee = &TriageAssignee{Login: issue.Assignee.Login, AvatarURL: issue.Assignee.AvatarURL}
			assigned = append(assigned, t)
			continue
		}
		if t.IsBeginnerFriendly {
			beginnerUnassigned = append(beginnerUnassigned, t)
		} else {
			otherUnassigned = append(otherUnassigned, t)
		}
	}

	selected := beginnerUnassigned
	notice := false
	if len(selected) == 0 {
		selected = otherUnassigned
		notice = true
	}
	if len(selected) == 0 {
		selected = assigned
		notice = true
	}
	if selected == nil {
		selected = []TriageIssue{}
	}
	if len(selected) > triageLimit {
		selected = selected[:triageLimit]
	}

	return &TriageQueue{Issues: selected, Notice: notice}
}

func labelNames(labels []github.Label) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		if l.Name != "" {
			names = append(names, l.Name)
		}
	}
	return names
}
