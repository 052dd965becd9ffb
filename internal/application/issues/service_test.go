package issues

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var repo = domain.RepoRef{Owner: "octo", Name: "cat"}

type stubHost struct {
	issues  []domain.Issue
	created []string
	states  []domain.IssueState
}

func (h *stubHost) ListIssues(_ context.Context, _ domain.RepoRef, state domain.IssueState) ([]domain.Issue, error) {
	h.states = append(h.states, state)
	return h.issues, nil
}

func (h *stubHost) GetIssue(context.Context, domain.RepoRef, int) (domain.Issue, error) {
	return domain.Issue{}, errors.New("not implemented")
}

func (h *stubHost) CreateIssue(_ context.Context, _ domain.RepoRef, title, body string) (domain.Issue, error) {
	h.created = append(h.created, title+"|"+body)
	return domain.Issue{Number: 99, Title: title, Body: body}, nil
}

func (h *stubHost) ListPullRequests(context.Context, domain.RepoRef, string) ([]domain.PullRequest, error) {
	return nil, nil
}

func (h *stubHost) GetPullRequest(context.Context, domain.RepoRef, int) (domain.PullRequest, error) {
	return domain.PullRequest{}, nil
}

func (h *stubHost) ListPullRequestFiles(context.Context, domain.RepoRef, int) ([]domain.FileChange, error) {
	return nil, nil
}

func (h *stubHost) CreateReview(context.Context, domain.RepoRef, int, string) error { return nil }

func (h *stubHost) ListContents(context.Context, domain.RepoRef, func(string) bool) ([]domain.ContentFile, error) {
	return nil, nil
}

// keywordEmbedder maps text onto fixed axes so similarity is predictable.
type keywordEmbedder struct {
	calls atomic.Int32
	fail  string
}

func (e *keywordEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	e.calls.Add(1)
	if e.fail != "" && strings.Contains(text, e.fail) {
		return nil, errors.New("embedding backend down")
	}
	lower := strings.ToLower(text)
	vec := []float64{0.01, 0.01, 0.01}
	for i, kw := range []string{"login", "crash", "docs"} {
		if strings.Contains(lower, kw) {
			vec[i] = 1
		}
	}
	return vec, nil
}

type memoryIndex struct {
	mu      sync.Mutex
	vectors map[string]map[string][]float64
	upserts int
}

func newMemoryIndex() *memoryIndex {
	return &memoryIndex{vectors: map[string]map[string][]float64{}}
}

func (m *memoryIndex) Upsert(_ context.Context, ns string, vectors []domain.Vector) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if m.vectors[ns] == nil {
		m.vectors[ns] = map[string][]float64{}
	}
	for _, v := range vectors {
		m.vectors[ns][v.ID] = v.Values
	}
	return nil
}

func (m *memoryIndex) Query(_ context.Context, ns string, vector []float64, topK int) ([]domain.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Match
	for id, v := range m.vectors[ns] {
		if id == domain.IndexMarkerID {
			continue
		}
		out = append(out, domain.Match{ID: id, Score: domain.Cosine(vector, v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (m *memoryIndex) Fetch(_ context.Context, ns, id string) (domain.Vector, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vectors[ns][id]
	return domain.Vector{ID: id, Values: v}, ok, nil
}

type scriptedPrompter struct {
	answers []string
	choice  string
}

func (p *scriptedPrompter) Ask(context.Context, string) (string, error) {
	if len(p.answers) == 0 {
		return "", domain.ErrUserAborted
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func (p *scriptedPrompter) Choose(context.Context, string, []string) (string, error) {
	return p.choice, nil
}

func (p *scriptedPrompter) Confirm(context.Context, string) (bool, error) { return true, nil }

func sampleIssues() []domain.Issue {
	return []domain.Issue{
		{Number: 5, Title: "Login fails on Safari", Body: "cannot login"},
		{Number: 4, Title: "Crash on startup", Body: "segfault crash"},
		{Number: 3, Title: "Docs typo", Body: "docs have a typo"},
		{Number: 2, Title: "Login button broken", Body: "login does nothing"},
	}
}

func newService(host *stubHost, emb *keywordEmbedder, idx *memoryIndex, prompter *scriptedPrompter) *Service {
	return &Service{
		Host:        host,
		Embedder:    emb,
		Index:       idx,
		Prompter:    prompter,
		Logger:      logger.Nop(),
		Threshold:   0.8,
		TopN:        2,
		Concurrency: 2,
	}
}

func TestFindDuplicatesGroupsSimilarIssues(t *testing.T) {
	host := &stubHost{issues: sampleIssues()}
	emb := &keywordEmbedder{}
	svc := newService(host, emb, newMemoryIndex(), &scriptedPrompter{})

	groups, err := svc.FindDuplicates(context.Background(), repo)
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, 5, groups[0].Issue.Number)
	require.Len(t, groups[0].Duplicates, 1)
	assert.Equal(t, 2, groups[0].Duplicates[0].Issue.Number)
	assert.Greater(t, groups[0].Best(), 0.8)
	assert.EqualValues(t, 4, emb.calls.Load())
}

func TestFindDuplicatesPropagatesEmbeddingErrors(t *testing.T) {
	host := &stubHost{issues: sampleIssues()}
	svc := newService(host, &keywordEmbedder{fail: "Docs"}, newMemoryIndex(), &scriptedPrompter{})

	_, err := svc.FindDuplicates(context.Background(), repo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "#3")
}

func TestFindSimilarIndexesOnceUntilNewIssue(t *testing.T) {
	host := &stubHost{issues: sampleIssues()}
	emb := &keywordEmbedder{}
	idx := newMemoryIndex()
	svc := newService(host, emb, idx, &scriptedPrompter{})

	similar, err := svc.FindSimilar(context.Background(), repo, "Cannot login", "login page hangs")
	require.NoError(t, err)
	require.Len(t, similar, 2)
	numbers := []int{similar[0].Issue.Number, similar[1].Issue.Number}
	assert.ElementsMatch(t, []int{5, 2}, numbers)
	assert.Equal(t, 1, idx.upserts)

	marker, ok, err := idx.Fetch(context.Background(), repo.String(), domain.IndexMarkerID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{5}, marker.Values)

	_, err = svc.FindSimilar(context.Background(), repo, "Crash", "crash again")
	require.NoError(t, err)
	assert.Equal(t, 1, idx.upserts, "unchanged issues must not be re-indexed")

	host.issues = append([]domain.Issue{{Number: 6, Title: "New docs page", Body: "docs"}}, host.issues...)
	_, err = svc.FindSimilar(context.Background(), repo, "Crash", "crash again")
	require.NoError(t, err)
	assert.Equal(t, 2, idx.upserts)
}

func TestHandleDispatchesActions(t *testing.T) {
	host := &stubHost{issues: sampleIssues()}
	svc := newService(host, &keywordEmbedder{}, newMemoryIndex(), &scriptedPrompter{
		answers: []string{"Broken build", "CI is red"},
		choice:  "closed",
	})

	res, err := svc.Handle(context.Background(), ActionList, repo)
	require.NoError(t, err)
	assert.Len(t, res.Issues, 4)
	assert.Equal(t, []domain.IssueState{domain.IssueStateClosed}, host.states)

	res, err = svc.Handle(context.Background(), ActionCreate, repo)
	require.NoError(t, err)
	require.NotNil(t, res.Created)
	assert.Equal(t, 99, res.Created.Number)
	assert.Equal(t, []string{"Broken build|CI is red"}, host.created)

	res, err = svc.Handle(context.Background(), ActionCancel, repo)
	require.NoError(t, err)
	assert.Equal(t, ActionCancel, res.Action)

	_, err = svc.Handle(context.Background(), Action(42), repo)
	assert.Error(t, err)
}

func TestParseAction(t *testing.T) {
	for _, a := range Actions {
		got, err := ParseAction(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	_, err := ParseAction("nope")
	assert.Error(t, err)
	assert.Len(t, Labels(), len(Actions))
}
