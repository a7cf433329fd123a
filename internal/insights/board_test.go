package insights

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkarpenko/gitpulse/internal/github"
)

func TestBuildBoard_IssueStatusMapping(t *testing.T) {
	issues := decodeIssues(t,
		issueJSON(1, nil, ""),                      // open, no assignee, no labels
		issueJSON(2, []string{"help wanted"}, ""),  // open, help-wanted
		issueJSON(3, []string{"bug"}, "alice"),     // open, assigned
	)
	issues[0].State = "closed"

	board := buildBoard(issues, nil)
	byID := make(map[int]BoardItem)
	for _, item := range board.Items {
		byID[item.ID] = item
	}

	assert.Equal(t, StatusDone, byID[1].Status, "closed issue always maps to Done")
	assert.Equal(t, StatusReady, byID[2].Status)
	assert.Equal(t, StatusInProgress, byID[3].Status, "open assigned issue maps to InProgress")
	require.NotNil(t, byID[3].Assignee)
	assert.Equal(t, "alice", byID[3].Assignee.Login)
}

func TestBuildBoard_PRStatusMapping(t *testing.T) {
	mergedAt := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	prs := []github.PullRequest{
		{Number: 10, State: "open", Draft: false, UpdatedAt: time.Now()},
		{Number: 11, State: "open", Draft: true, UpdatedAt: time.Now()},
		{Number: 12, State: "closed", MergedAt: &mergedAt, UpdatedAt: time.Now()},
	}

	board := buildBoard(nil, prs)
	byID := make(map[int]BoardItem)
	for _, item := range board.Items {
		byID[item.ID] = item
		assert.Equal(t, "pr", item.Kind)
	}

	assert.Equal(t, StatusInReview, byID[10].Status)
	assert.Equal(t, StatusInProgress, byID[11].Status)
	assert.Equal(t, StatusDone, byID[12].Status)
}

func TestBuildBoard_PriorityAndDomainFromLabels(t *testing.T) {
	issues := decodeIssues(t,
		issueJSON(1, []string{"priority: high", "frontend"}, ""),
		issueJSON(2, []string{"p3", "docs"}, ""),
		issueJSON(3, []string{"bug"}, ""),
	)

	board := buildBoard(issues, nil)
	byID := make(map[int]BoardItem)
	for _, item := range board.Items {
		byID[item.ID] = item
	}

	assert.Equal(t, PriorityHigh, byID[1].Priority)
	assert.Equal(t, DomainFrontend, byID[1].Domain)
	assert.Equal(t, PriorityLow, byID[2].Priority)
	assert.Equal(t, DomainDocs, byID[2].Domain)
	assert.Equal(t, PriorityNormal, byID[3].Priority)
	assert.Equal(t, DomainGeneral, byID[3].Domain)
}

func TestBuildBoard_RecencySortAndCounts(t *testing.T) {
	issues := decodeIssues(t, issueJSON(1, nil, ""), issueJSON(2, nil, "alice"))
	issues[0].UpdatedAt = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	issues[1].UpdatedAt = time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	board := buildBoard(issues, nil)
	require.Len(t, board.Items, 2)
	assert.Equal(t, 2, board.Items[0].ID, "most recently updated first")

	assert.Equal(t, 1, board.Counts[StatusBacklog])
	assert.Equal(t, 1, board.Counts[StatusInProgress])
	assert.Equal(t, 0, board.Counts[StatusDone])
}

func TestMissionControl_ParallelFetchAndDegradation(t *testing.T) {
	up := newFakeUpstream()
	up.respond("repos/octo/widgets/issues", 200, "["+issueJSON(5, nil, "bob")+"]")
	up.respond("repos/octo/widgets/pulls", 503, "")
	s := newTestService(t, up, false)

	board := s.MissionControl(context.Background())
	require.Len(t, board.Items, 1, "a failed PR fetch degrades to issues only")
	assert.Equal(t, StatusInProgress, board.Items[0].Status)
}

func TestMissionControl_ServesDerivedCache(t *testing.T) {
	up := newFakeUpstream()
	up.respond("repos/octo/widgets/issues", 200, "["+issueJSON(5, nil, "")+"]")
	up.respond("repos/octo/widgets/pulls", 200, "[]")
	s := newTestService(t, up, false)

	first := s.MissionControl(context.Background())
	second := s.MissionControl(context.Background())

	var a, b []byte
	var err error
	a, err = json.Marshal(first)
	require.NoError(t, err)
	b, err = json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))

	up.mu.Lock()
	defer up.mu.Unlock()
	assert.Equal(t, 1, up.calls["repos/octo/widgets/issues"], "second call is served from the derived cache")
}
