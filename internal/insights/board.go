package insights

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vkarpenko/gitpulse/internal/github"
)

// BoardStatus is a mission control status bucket
type BoardStatus string

// Status buckets
const (
	StatusBacklog    BoardStatus = "Backlog"
	StatusReady      BoardStatus = "Ready"
	StatusInProgress BoardStatus = "InProgress"
	StatusInReview   BoardStatus = "InReview"
	StatusDone       BoardStatus = "Done"
)

// BoardPriority is derived from explicit priority labels
type BoardPriority string

// Priorities
const (
	PriorityLow    BoardPriority = "Low"
	PriorityNormal BoardPriority = "Normal"
	PriorityHigh   BoardPriority = "High"
)

// BoardDomain is inferred from label keywords
type BoardDomain string

// Domains
const (
	DomainFrontend BoardDomain = "Frontend"
	DomainBackend  BoardDomain = "Backend"
	DomainDevOps   BoardDomain = "DevOps"
	DomainDocs     BoardDomain = "Docs"
	DomainGeneral  BoardDomain = "General"
)

// BoardAssignee identifies who an item is assigned to.
type BoardAssignee struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatarUrl"`
}

// BoardItem is one card on the mission control board.
type BoardItem struct {
	ID        int            `json:"id"`
	Kind      string         `json:"kind"` // "issue" or "pr"
	Title     string         `json:"title"`
	Status    BoardStatus    `json:"status"`
	Priority  BoardPriority  `json:"priority"`
	Domain    BoardDomain    `json:"domain"`
	Assignee  *BoardAssignee `json:"assignee,omitempty"`
	Labels    []string       `json:"labels"`
	URL       string         `json:"url"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Board is the unified issue+PR view with roll-up counts per status.
type Board struct {
	Items  []BoardItem         `json:"items"`
	Counts map[BoardStatus]int `json:"counts"`
}

const boardKey = "agg:board"

// MissionControl fetches open and recently-closed issues and pull requests
// in parallel and maps each onto a status/priority/domain triple. Both lists
// are list-level requests and bypass the detail limiter.
func (s *Service) MissionControl(ctx context.Context) *Board {
	var cached Board
	if s.cachedAggregate(boardKey, boardTTL, &cached) {
		return &cached
	}

	var (
		mu     sync.Mutex
		issues []github.Issue
		prs    []github.PullRequest
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		params := url.Values{}
		params.Set("state", "all")
		params.Set("per_page", "50")
		params.Set("sort", "updated")
		payload, ok := s.fetcher.FetchTTL(gctx, s.path("issues"), params, boardTTL)
		if !ok {
			return nil
		}
		var decoded []github.Issue
		if err := json.Unmarshal(payload, &decoded); err != nil {
			slog.Warn("Board issue list unparseable", "error", err)
			return nil
		}
		mu.Lock()
		issues = decoded
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		params := url.Values{}
		params.Set("state", "all")
		params.Set("per_page", "50")
		params.Set("sort", "updated")
		params.Set("direction", "desc")
		payload, ok := s.fetcher.FetchTTL(gctx, s.path("pulls"), params, boardTTL)
		if !ok {
			return nil
		}
		var decoded []github.PullRequest
		if err := json.Unmarshal(payload, &decoded); err != nil {
			slog.Warn("Board PR list unparseable", "error", err)
			return nil
		}
		mu.Lock()
		prs = decoded
		mu.Unlock()
		return nil
	})
	_ = g.Wait()

	board := buildBoard(issues, prs)
	s.storeAggregate(boardKey, board)
	return board
}

// buildBoard is the pure mapping from raw records to the board.
func buildBoard(issues []github.Issue, prs []github.PullRequest) *Board {
	items := make([]BoardItem, 0, len(issues)+len(prs))

	for i := range issues {
		issue := &issues[i]
		if issue.PullRequest != nil || issue.Number == 0 {
			continue
		}
		labels := labelNames(issue.Labels)
		item := BoardItem{
			ID:        issue.Number,
			Kind:      "issue",
			Title:     issue.Title,
			Status:    issueStatus(issue),
			Priority:  labelPriority(labels),
			Domain:    labelDomain(labels),
			Labels:    labels,
			URL:       issue.HTMLURL,
			UpdatedAt: issue.UpdatedAt,
		}
		if issue.Assignee != nil {
			item.Assignee = &BoardAssignee{Login: issue.Assignee.Login, AvatarURL: issue.Assignee.AvatarURL}
		}
		items = append(items, item)
	}

	for i := range prs {
		pr := &prs[i]
		if pr.Number == 0 {
			continue
		}
		labels := labelNames(pr.Labels)
		item := BoardItem{
			ID:        pr.Number,
			Kind:      "pr",
			Title:     pr.Title,
			Status:    prStatus(pr),
			Priority:  labelPriority(labels),
			Domain:    labelDomain(labels),
			Labels:    labels,
			URL:       pr.HTMLURL,
			UpdatedAt: pr.UpdatedAt,
		}
		if pr.Assignee != nil {
			item.Assignee = &BoardAssignee{Login: pr.Assignee.Login, AvatarURL: pr.Assignee.AvatarURL}
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].UpdatedAt.After(items[j].UpdatedAt) })

	counts := map[BoardStatus]int{
		StatusBacklog:    0,
		StatusReady:      0,
		StatusInProgress: 0,
		StatusInReview:   0,
		StatusDone:       0,
	}
	for _, item := range items {
		counts[item.Status]++
	}

	return &Board{Items: items, Counts: counts}
}

func issueStatus(issue *github.Issue) BoardStatus {
	if issue.State == "closed" {
		return StatusDone
	}
	if issue.Assignee != nil {
		return StatusInProgress
	}
	for _, l := range issue.Labels {
		name := strings.ToLower(l.Name)
		if name == "help wanted" || name == "help-wanted" || beginnerLabels[name] {
			return StatusReady
		}
	}
	return StatusBacklog
}

func prStatus(pr *github.PullRequest) BoardStatus {
	if pr.State == "closed" || pr.MergedAt != nil {
		return StatusDone
	}
	if pr.Draft {
		return StatusInProgress
	}
	return StatusInReview
}

func labelPriority(labels []string) BoardPriority {
	for _, l := range labels {
		name := strings.ToLower(l)
		switch {
		case strings.Contains(name, "critical"), strings.Contains(name, "urgent"),
			strings.Contains(name, "high"), name == "p0", name == "p1":
			return PriorityHigh
		case strings.Contains(name, "low"), name == "p3", name == "p4":
			return PriorityLow
		}
	}
	return PriorityNormal
}

func labelDomain(labels []string) BoardDomain {
	for _, l := range labels {
		name := strings.ToLower(l)
		switch {
		case strings.Contains(name, "frontend"), strings.Contains(name, "ui"), strings.Contains(name, "web"):
			return DomainFrontend
		case strings.Contains(name, "backend"), strings.Contains(name, "api"), strings.Contains(name, "server"), strings.Contains(name, "database"):
			return DomainBackend
		case strings.Contains(name, "devops"), strings.Contains(name, "ci"), strings.Contains(name, "infra"), strings.Contains(name, "docker"), strings.Contains(name, "deploy"):
			return DomainDevOps
		case strings.Contains(name, "doc"):
			return DomainDocs
		}
	}
	return DomainGeneral
}
