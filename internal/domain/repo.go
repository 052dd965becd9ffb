package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RepoRef identifies a repository on the git host.
type RepoRef struct {
	Owner string
	Name  string
}

// String renders the ref as owner/name.
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// IsZero reports whether the ref is unset.
func (r RepoRef) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}

var (
	repoSegment    = `[A-Za-z0-9_.-]+`
	shortRepoRe    = regexp.MustCompile(`^(` + repoSegment + `)/(` + repoSegment + `)$`)
	httpsRepoRe    = regexp.MustCompile(`^https?://[^/]+/(` + repoSegment + `)/(` + repoSegment + `?)(?:\.git)?/?$`)
	sshRepoRe      = regexp.MustCompile(`^(?:ssh://)?git@[^:/]+[:/](` + repoSegment + `)/(` + repoSegment + `?)(?:\.git)?$`)
	pullRequestURL = regexp.MustCompile(`github\.com/([\w.-]+)/([\w.-]+)/pull/(\d+)`)
)

// ParseRepoRef accepts owner/name, an https clone URL or an ssh remote.
func ParseRepoRef(raw string) (RepoRef, error) {
	raw = strings.TrimSpace(raw)
	for _, re := range []*regexp.Regexp{shortRepoRe, httpsRepoRe, sshRepoRe} {
		if m := re.FindStringSubmatch(raw); m != nil {
			name := strings.TrimSuffix(m[2], ".git")
			if !validSegment(m[1]) || !validSegment(name) {
				break
			}
			return RepoRef{Owner: m[1], Name: name}, nil
		}
	}
	return RepoRef{}, fmt.Errorf("%w: %q", ErrInvalidRepositoryReference, raw)
}

// ParsePullRequestURL extracts the repository and number from a pull request URL.
func ParsePullRequestURL(raw string) (RepoRef, int, error) {
	m := pullRequestURL.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return RepoRef{}, 0, fmt.Errorf("%w: %q is not a pull request URL", ErrInvalidRepositoryReference, raw)
	}
	number, err := strconv.Atoi(m[3])
	if err != nil || number <= 0 {
		return RepoRef{}, 0, fmt.Errorf("%w: bad pull request number in %q", ErrInvalidRepositoryReference, raw)
	}
	if !validSegment(m[1]) || !validSegment(m[2]) {
		return RepoRef{}, 0, fmt.Errorf("%w: %q", ErrInvalidRepositoryReference, raw)
	}
	return RepoRef{Owner: m[1], Name: m[2]}, number, nil
}

// validSegment rejects empty and dot-only path segments, which would
// change the API path they are formatted into.
func validSegment(s string) bool {
	return s != "" && s != "." && s != ".."
}

// IssueState filters issue listings.
type IssueState string

const (
	IssueStateOpen   IssueState = "open"
	IssueStateClosed IssueState = "closed"
	IssueStateAll    IssueState = "all"
)

// Issue is the subset of a hosted issue the workflows need.
type Issue struct {
	Number    int
	Title     string
	Body      string
	State     string
	URL       string
	CreatedAt time.Time
}

// Text flattens the issue for embedding.
func (i Issue) Text() string {
	return fmt.Sprintf(IssueTextTemplate, i.Title, i.Body)
}

// PullRequest is the subset of a hosted pull request the reviewer needs.
type PullRequest struct {
	Number int
	Title  string
	Body   string
	URL    string
	State  string
}

// FileChange is one file of a pull request diff.
type FileChange struct {
	Filename string
	Patch    string
	Status   string
}

// ContentFile is one file of a repository tree.
type ContentFile struct {
	Path    string
	Content string
}
