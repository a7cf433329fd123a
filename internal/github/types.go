package github

import (
	"encoding/json"
	"time"
)

// User is the nested account object GitHub embeds in most records.
type User struct {
	Login     string `json:"login"`
	ID        int64  `json:"id"`
	AvatarURL string `json:"avatar_url"`
	Type      string `json:"type"` // "User", "Bot", "Organization"
}

// Repo represents repository metadata
type Repo struct {
	FullName        string `json:"full_name"`
	Description     string `json:"description"`
	HTMLURL         string `json:"html_url"`
	StargazersCount int    `json:"stargazers_count"`
	ForksCount      int    `json:"forks_count"`
	OpenIssuesCount int    `json:"open_issues_count"`
	DefaultBranch   string `json:"default_branch"`
	Owner           User   `json:"owner"`
}

// Commit represents one entry from the paginated commits list
type Commit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name  string    `json:"name"`
			Email string    `json:"email"`
			Date  time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	Author *User `json:"author"` // nil when GitHub cannot map the email to an account
}

// CommitDetail is a single commit with its file-change list. Fetching it is
// behind GitHub's secondary rate limit, hence the concurrency gate upstream.
type CommitDetail struct {
	SHA   string `json:"sha"`
	Files []struct {
		Filename  string `json:"filename"`
		Additions int    `json:"additions"`
		Deletions int    `json:"deletions"`
		Status    string `json:"status"`
	} `json:"files"`
}

// Label represents an issue/PR label
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Issue represents an issue from the issues list. GitHub's issues API also
// returns pull requests; PullRequest is non-nil for those.
type Issue struct {
	Number      int        `json:"number"`
	Title       string     `json:"title"`
	State       string     `json:"state"`
	HTMLURL     string     `json:"html_url"`
	Labels      []Label    `json:"labels"`
	User        User       `json:"user"`
	Assignee    *User      `json:"assignee"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ClosedAt    *time.Time `json:"closed_at"`
	PullRequest *struct{}  `json:"pull_request,omitempty"`
}

// PullRequest represents a PR from the pulls list
type PullRequest struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	State     string     `json:"state"`
	Draft     bool       `json:"draft"`
	HTMLURL   string     `json:"html_url"`
	Labels    []Label    `json:"labels"`
	User      User       `json:"user"`
	Assignee  *User      `json:"assignee"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	MergedAt  *time.Time `json:"merged_at"`
}

// Review represents a PR review
type Review struct {
	ID          int64     `json:"id"`
	User        User      `json:"user"`
	Body        string    `json:"body"`
	State       string    `json:"state"` // APPROVED, CHANGES_REQUESTED, COMMENTED
	SubmittedAt time.Time `json:"submitted_at"`
}

// Comment represents an issue or PR comment
type Comment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	User      User      `json:"user"`
	HTMLURL   string    `json:"html_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Contributor represents one entry from the contributors endpoint
type Contributor struct {
	Login         string `json:"login"`
	ID            int64  `json:"id"`
	AvatarURL     string `json:"avatar_url"`
	Contributions int    `json:"contributions"`
	Type          string `json:"type"`
}

// Milestone represents a repository milestone
type Milestone struct {
	Number       int        `json:"number"`
	Title        string     `json:"title"`
	State        string     `json:"state"`
	OpenIssues   int        `json:"open_issues"`
	ClosedIssues int        `json:"closed_issues"`
	DueOn        *time.Time `json:"due_on"`
	HTMLURL      string     `json:"html_url"`
}

// Event represents a raw record from the repository events API. Payload
// stays undecoded until the event type is known.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Actor     User            `json:"actor"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// PushPayload for PushEvent
type PushPayload struct {
	Ref  string `json:"ref"` // refs/heads/branch-name
	Size int    `json:"size"`
}

// IssuePayload for IssuesEvent
type IssuePayload struct {
	Action string `json:"action"`
	Issue  struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
	} `json:"issue"`
}

// PullRequestPayload for PullRequestEvent
type PullRequestPayload struct {
	Action      string `json:"action"`
	Number      int    `json:"number"`
	PullRequest struct {
		Title  string `json:"title"`
		Merged bool   `json:"merged"`
	} `json:"pull_request"`
}

// CommentPayload for IssueCommentEvent
type CommentPayload struct {
	Action string `json:"action"`
	Issue  struct {
		Number int `json:"number"`
	} `json:"issue"`
}

// CreatePayload for CreateEvent (branch or tag creation)
type CreatePayload struct {
	Ref     string `json:"ref"`
	RefType string `json:"ref_type"` // branch, tag, repository
}
