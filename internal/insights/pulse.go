package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/vkarpenko/gitpulse/internal/github"
)

// PulseKind classifies a pulse feed entry
type PulseKind string

// Pulse kinds
const (
	PulsePush    PulseKind = "push"
	PulsePR      PulseKind = "pr"
	PulseIssue   PulseKind = "issue"
	PulseComment PulseKind = "comment"
	PulseStar    PulseKind = "star"
	PulseFork    PulseKind = "fork"
	PulseBranch  PulseKind = "branch"
)

// PulseEvent is one human-readable entry in the activity feed.
type PulseEvent struct {
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	Kind       PulseKind `json:"kind"`
	OccurredAt time.Time `json:"occurredAt"`
	AvatarURL  string    `json:"avatarUrl"`
}

const defaultPulseLimit = 15

// PulseFeed returns the most recent repository activity as readable phrases,
// bot accounts filtered out, capped at limit (default 15). Upstream recency
// order is preserved. A total upstream failure yields a small placeholder
// feed so the consuming view is never blank.
func (s *Service) PulseFeed(ctx context.Context, limit int) []PulseEvent {
	if limit <= 0 {
		limit = defaultPulseLimit
	}

	params := url.Values{}
	params.Set("per_page", "30")
	payload, ok := s.fetcher.FetchTTL(ctx, s.path("events"), params, eventsTTL)
	if !ok {
		slog.Warn("Pulse feed degraded to placeholder", "repo", s.owner+"/"+s.repo)
		return placeholderPulse()
	}

	var raw []github.Event
	if err := json.Unmarshal(payload, &raw); err != nil {
		slog.Warn("Pulse feed payload unparseable", "error", err)
		return placeholderPulse()
	}

	feed := make([]PulseEvent, 0, limit)
	for _, ev := range raw {
		if len(feed) >= limit {
			break
		}
		if isBotLogin(ev.Actor.Login) {
			continue
		}
		action, kind, ok := describeEvent(&ev)
		if !ok {
			continue
		}
		feed = append(feed, PulseEvent{
			Actor:      ev.Actor.Login,
			Action:     action,
			Kind:       kind,
			OccurredAt: ev.CreatedAt,
			AvatarURL:  ev.Actor.AvatarURL,
		})
	}

	if len(feed) == 0 {
		return placeholderPulse()
	}
	return feed
}

// describeEvent maps a raw event to a readable action phrase. Unknown types
// and malformed payloads are skipped, not errors.
func describeEvent(ev *github.Event) (string, PulseKind, bool) {
	switch ev.Type {
	case "PushEvent":
		var p github.PushPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return "", "", false
		}
		ref := shortRef(p.Ref)
		n := p.Size
		if n <= 0 {
			n = 1
		}
		return fmt.Sprintf("pushed %d commit(s) to `%s`", n, ref), PulsePush, true

	case "PullRequestEvent":
		var p github.PullRequestPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return "", "", false
		}
		switch p.Action {
		case "opened":
			return fmt.Sprintf("opened pull request #%d", p.Number), PulsePR, true
		case "closed":
			if p.PullRequest.Merged {
				return fmt.Sprintf("merged pull request #%d", p.Number), PulsePR, true
			}
			return fmt.Sprintf("closed pull request #%d", p.Number), PulsePR, true
		case "reopened":
			return fmt.Sprintf("reopened pull request #%d", p.Number), PulsePR, true
		}
		return "", "", false

	case "IssuesEvent":
		var p github.IssuePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return "", "", false
		}
		switch p.Action {
		case "opened", "closed", "reopened":
			return fmt.Sprintf("%s issue #%d", p.Action, p.Issue.Number), PulseIssue, true
		}
		return "", "", false

	case "IssueCommentEvent":
		var p github.CommentPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.Action != "created" {
			return "", "", false
		}
		return fmt.Sprintf("commented on #%d", p.Issue.Number), PulseComment, true

	case "WatchEvent":
		return "starred the repository", PulseStar, true

	case "ForkEvent":
		return "forked the repository", PulseFork, true

	case "CreateEvent":
		var p github.CreatePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return "", "", false
		}
		switch p.RefType {
		case "branch":
			return fmt.Sprintf("created branch `%s`", p.Ref), PulseBranch, true
		case "tag":
			return fmt.Sprintf("tagged `%s`", p.Ref), PulseBranch, true
		}
		return "", "", false
	}

	return "", "", false
}

func shortRef(ref string) string {
	const prefix = "refs/heads/"
	if len(ref) > len(prefix) && ref[:len(prefix)] == prefix {
		return ref[len(prefix):]
	}
	return ref
}

// placeholderPulse is the fixed feed served when upstream is fully
// unavailable and nothing is cached.
func placeholderPulse() []PulseEvent {
	now := time.Now()
	return []PulseEvent{
		{Actor: "gitpulse", Action: "is waiting for upstream activity data", Kind: PulseComment, OccurredAt: now},
		{Actor: "gitpulse", Action: "will refresh this feed automatically", Kind: PulseComment, OccurredAt: now.Add(-time.Minute)},
	}
}
