package githost

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/gitbrew/internal/domain"
)

var octo = domain.RepoRef{Owner: "octo", Name: "cat"}

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c, err := New(Options{Token: "t", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return c
}

func TestListIssuesSkipsPullRequestsAndPaginates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/octo/cat/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"number":1,"title":"first","body":"b1","state":"open"}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s?page=2>; rel="next"`, "http://"+r.Host+r.URL.Path))
		fmt.Fprint(w, `[{"number":3,"title":"third","body":" b3 ","state":"open"},
			{"number":2,"title":"a pr","pull_request":{"url":"x"}}]`)
	})
	c := newTestClient(t, mux)

	issues, err := c.ListIssues(context.Background(), octo, domain.IssueStateOpen)
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, 3, issues[0].Number)
	assert.Equal(t, "b3", issues[0].Body)
	assert.Equal(t, 1, issues[1].Number)
}

func TestCreateIssueAndReview(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/octo/cat/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Crash", req["title"])
		fmt.Fprint(w, `{"number":7,"title":"Crash","html_url":"https://github.com/octo/cat/issues/7"}`)
	})
	mux.HandleFunc("/api/v3/repos/octo/cat/pulls/4/reviews", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "COMMENT", req["event"])
		assert.Equal(t, "looks fine", req["body"])
		fmt.Fprint(w, `{"id":1}`)
	})
	c := newTestClient(t, mux)

	issue, err := c.CreateIssue(context.Background(), octo, "Crash", "steps")
	require.NoError(t, err)
	assert.Equal(t, 7, issue.Number)
	assert.Equal(t, "https://github.com/octo/cat/issues/7", issue.URL)

	require.NoError(t, c.CreateReview(context.Background(), octo, 4, "looks fine"))
}

func TestListPullRequestFiles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/octo/cat/pulls/4/files", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"filename":"main.go","patch":"+x","status":"modified"},{"filename":"README.md","status":"added"}]`)
	})
	c := newTestClient(t, mux)

	files, err := c.ListPullRequestFiles(context.Background(), octo, 4)
	require.NoError(t, err)
	assert.Equal(t, []domain.FileChange{
		{Filename: "main.go", Patch: "+x", Status: "modified"},
		{Filename: "README.md", Status: "added"},
	}, files)
}

func TestListContentsFiltersAndDecodes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/octo/cat", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"default_branch":"main"}`)
	})
	mux.HandleFunc("/api/v3/repos/octo/cat/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		fmt.Fprint(w, `{"sha":"s","tree":[
			{"path":"cmd","type":"tree"},
			{"path":"cmd/main.go","type":"blob"},
			{"path":"logo.png","type":"blob"}]}`)
	})
	mux.HandleFunc("/api/v3/repos/octo/cat/contents/cmd/main.go", func(w http.ResponseWriter, _ *http.Request) {
		encoded := base64.StdEncoding.EncodeToString([]byte("package main"))
		fmt.Fprintf(w, `{"type":"file","encoding":"base64","path":"cmd/main.go","content":%q}`, encoded)
	})
	c := newTestClient(t, mux)

	files, err := c.ListContents(context.Background(), octo, func(path string) bool {
		return strings.HasSuffix(path, ".go")
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.ContentFile{{Path: "cmd/main.go", Content: "package main"}}, files)
}

type stubExecutor struct {
	out domain.ShellResult
	err error
}

func (s stubExecutor) Execute(context.Context, string) (domain.ShellResult, error) {
	return s.out, s.err
}

func TestRemoteRepo(t *testing.T) {
	ref, err := RemoteRepo(context.Background(), stubExecutor{out: domain.ShellResult{Stdout: "git@github.com:octo/cat.git\n"}})
	require.NoError(t, err)
	assert.Equal(t, octo, ref)

	_, err = RemoteRepo(context.Background(), stubExecutor{
		out: domain.ShellResult{Stderr: "error: No such remote 'origin'", ExitCode: 2},
		err: errors.New("exit status 2"),
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidRepositoryReference))
}
