package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkarpenko/gitpulse/internal/github"
)

func issueJSON(number int, labels []string, assignee string) string {
	labelObjs := ""
	for i, l := range labels {
		if i > 0 {
			labelObjs += ","
		}
		labelObjs += fmt.Sprintf(`{"name":%q}`, l)
	}
	assigneeJSON := "null"
	if assignee != "" {
		assigneeJSON = fmt.Sprintf(`{"login":%q,"avatar_url":"https://a/%s"}`, assignee, assignee)
	}
	return fmt.Sprintf(`{"number":%d,"title":"Issue %d","state":"open","html_url":"https://gh/%d",
		"labels":[%s],"assignee":%s,"created_at":"2026-08-20T10:00:00Z","updated_at":"2026-08-21T10:00:00Z"}`,
		number, number, number, labelObjs, assigneeJSON)
}

func decodeIssues(t *testing.T, items ...string) []github.Issue {
	t.Helper()
	var issues []github.Issue
	require.NoError(t, json.Unmarshal([]byte("["+joinComma(items)+"]"), &issues))
	return issues
}

func joinComma(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out
}

func TestSelectTriage_PrefersBeginnerUnassigned(t *testing.T) {
	issues := decodeIssues(t,
		issueJSON(1, []string{"good first issue"}, ""),
		issueJSON(2, []string{"bug"}, ""),
		issueJSON(3, []string{"bug"}, "alice"),
	)

	queue := selectTriage(issues)
	require.Len(t, queue.Issues, 1)
	assert.Equal(t, 1, queue.Issues[0].ID)
	assert.True(t, queue.Issues[0].IsBeginnerFriendly)
	assert.Nil(t, queue.Issues[0].Assignee)
	assert.False(t, queue.Notice)
}

func TestSelectTriage_FallsBackToAnyUnassigned(t *testing.T) {
	issues := decodeIssues(t,
		issueJSON(2, []string{"bug"}, ""),
		issueJSON(3, []string{"feature"}, "alice"),
	)

	queue := selectTriage(issues)
	require.Len(t, queue.Issues, 1)
	assert.Equal(t, 2, queue.Issues[0].ID)
	assert.True(t, queue.Notice, "notice is set when the preferred bucket was empty")
}

func TestSelectTriage_FallsBackToAssigned(t *testing.T) {
	issues := decodeIssues(t,
		issueJSON(3, []string{"bug"}, "alice"),
		issueJSON(4, []string{"good first issue"}, "bob"),
	)

	queue := selectTriage(issues)
	require.Len(t, queue.Issues, 2)
	assert.True(t, queue.Notice)
	require.NotNil(t, queue.Issues[0].Assignee)
	assert.Equal(t, "alice", queue.Issues[0].Assignee.Login)
}

func TestSelectTriage_CapsAtTen(t *testing.T) {
	var items []string
	for i := 1; i <= 14; i++ {
		items = append(items, issueJSON(i, []string{"good-first-issue"}, ""))
	}

	queue := selectTriage(decodeIssues(t, items...))
	assert.Len(t, queue.Issues, 10)
	assert.False(t, queue.Notice)
}

func TestSelectTriage_SkipsPullRequests(t *testing.T) {
	var issues []github.Issue
	require.NoError(t, json.Unmarshal([]byte(`[
	  {"number":1,"title":"A PR","state":"open","pull_request":{},"created_at":"2026-08-20T10:00:00Z"},
	  {"number":2,"title":"An issue","state":"open","created_at":"2026-08-20T10:00:00Z"}
	]`), &issues))

	queue := selectTriage(issues)
	require.Len(t, queue.Issues, 1)
	assert.Equal(t, 2, queue.Issues[0].ID)
}

func TestSelectTriage_DegradedOnUpstreamFailure(t *testing.T) {
	up := newFakeUpstream()
	up.respond("repos/octo/widgets/issues", 500, "")
	s := newTestService(t, up, false)

	queue := s.SelectTriage(context.Background())
	assert.Empty(t, queue.Issues)
	assert.True(t, queue.Notice)
}
