package insights

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vkarpenko/gitpulse/internal/github"
)

// ReviewerStat is one row of the reviewer leaderboard.
type ReviewerStat struct {
	User         string `json:"user"`
	AvatarURL    string `json:"avatarUrl"`
	Count        int    `json:"count"`
	IsMaintainer bool   `json:"isMaintainer"`
}

// ReviewerReport is the derived reviewer/sentiment view.
type ReviewerReport struct {
	Reviewers          []ReviewerStat `json:"reviewers"`
	CommunityHappiness int            `json:"communityHappiness"`
	CommentsAnalyzed   int            `json:"commentsAnalyzed"`
}

const (
	reviewersKey = "agg:reviewers"

	// reviewPRWindow bounds how many recent PRs are scanned for reviews
	// and comments.
	reviewPRWindow = 15

	// minSentimentLength is the shortest body worth scoring.
	minSentimentLength = 20

	topReviewers = 5
)

// ReviewerStats aggregates review and comment activity across the recent PR
// window into a top-5 reviewer leaderboard plus a community happiness score
// normalized from mean lexicon sentiment. Bot accounts are excluded. With no
// non-bot activity the result is neutral: happiness 100, zero comments.
func (s *Service) ReviewerStats(ctx context.Context) *ReviewerReport {
	var cached ReviewerReport
	if s.cachedAggregate(reviewersKey, reviewersTTL, &cached) {
		return &cached
	}

	report := s.buildReviewerReport(ctx)
	s.storeAggregate(reviewersKey, report)
	return report
}

func (s *Service) buildReviewerReport(ctx context.Context) *ReviewerReport {
	params := url.Values{}
	params.Set("state", "all")
	params.Set("per_page", strconv.Itoa(reviewPRWindow))
	params.Set("sort", "updated")
	params.Set("direction", "desc")
	payload, ok := s.fetcher.FetchTTL(ctx, s.path("pulls"), params, listTTL)
	if !ok {
		return neutralReviewerReport()
	}

	var prs []github.PullRequest
	if err := json.Unmarshal(payload, &prs); err != nil {
		slog.Warn("PR list payload unparseable", "error", err)
		return neutralReviewerReport()
	}

	type accumulator struct {
		mu            sync.Mutex
		counts        map[string]*ReviewerStat
		sentimentSum  float64
		sentimentHits int
		analyzed      int
	}
	acc := &accumulator{counts: make(map[string]*ReviewerStat)}

	record := func(user github.User, body string) {
		if user.Login == "" || isBotLogin(user.Login) {
			return
		}
		var compound float64
		scored := false
		if len(strings.TrimSpace(body)) >= minSentimentLength {
			compound = s.analyzer.PolarityScores(body).Compound
			scored = true
		}

		acc.mu.Lock()
		defer acc.mu.Unlock()
		stat, exists := acc.counts[user.Login]
		if !exists {
			stat = &ReviewerStat{User: user.Login, AvatarURL: user.AvatarURL}
			acc.counts[user.Login] = stat
		}
		stat.Count++
		if scored {
			acc.sentimentSum += compound
			acc.sentimentHits++
			acc.analyzed++
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, pr := range prs {
		number := strconv.Itoa(pr.Number)
		g.Go(func() error {
			if err := s.limiter.Acquire(gctx); err != nil {
				return nil
			}
			defer s.limiter.Release()

			if payload, ok := s.fetcher.Fetch(gctx, s.path("pulls", number, "reviews"), nil); ok {
				var reviews []github.Review
				if err := json.Unmarshal(payload, &reviews); err == nil {
					for _, r := range reviews {
						record(r.User, r.Body)
					}
				}
			}

			if payload, ok := s.fetcher.Fetch(gctx, s.path("issues", number, "comments"), nil); ok {
				var comments []github.Comment
				if err := json.Unmarshal(payload, &comments); err == nil {
					for _, c := range comments {
						record(c.User, c.Body)
					}
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(acc.counts) == 0 {
		return neutralReviewerReport()
	}

	reviewers := make([]ReviewerStat, 0, len(acc.counts))
	for _, stat := range acc.counts {
		stat.IsMaintainer = strings.EqualFold(stat.User, s.owner)
		reviewers = append(reviewers, *stat)
	}
	sort.Slice(reviewers, func(i, j int) bool {
		if reviewers[i].Count != reviewers[j].Count {
			return reviewers[i].Count > reviewers[j].Count
		}
		return reviewers[i].User < reviewers[j].User
	})
	if len(reviewers) > topReviewers {
		reviewers = reviewers[:topReviewers]
	}

	happiness := 100
	if acc.sentimentHits > 0 {
		mean := acc.sentimentSum / float64(acc.sentimentHits)
		happiness = clampHappiness((mean + 1) * 50)
	}

	return &ReviewerReport{
		Reviewers:          reviewers,
		CommunityHappiness: happiness,
		CommentsAnalyzed:   acc.analyzed,
	}
}

func neutralReviewerReport() *ReviewerReport {
	return &ReviewerReport{
		Reviewers:          []ReviewerStat{},
		CommunityHappiness: 100,
		CommentsAnalyzed:   0,
	}
}

func clampHappiness(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v + 0.5)
}
