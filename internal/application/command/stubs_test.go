package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/gitbrew/internal/domain"
)

// scriptedPrompter answers Ask and Choose from fixed queues and records the
// questions it was shown.
type scriptedPrompter struct {
	answers []string
	choices []string
	asked   []string
	offered []string
}

func (p *scriptedPrompter) Ask(_ context.Context, question string) (string, error) {
	p.asked = append(p.asked, question)
	if len(p.answers) == 0 {
		return "", domain.ErrUserAborted
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func (p *scriptedPrompter) Choose(_ context.Context, question string, _ []string) (string, error) {
	p.offered = append(p.offered, question)
	if len(p.choices) == 0 {
		return "", domain.ErrUserAborted
	}
	choice := p.choices[0]
	p.choices = p.choices[1:]
	return choice, nil
}

func (p *scriptedPrompter) Confirm(context.Context, string) (bool, error) {
	return true, nil
}

// scriptedCompleter replays model answers in order.
type scriptedCompleter struct {
	replies []string
	calls   int
	last    []domain.ChatMessage
}

func (c *scriptedCompleter) Complete(_ context.Context, messages []domain.ChatMessage) (string, error) {
	c.last = messages
	if c.calls >= len(c.replies) {
		return "", errors.New("no scripted reply left")
	}
	reply := c.replies[c.calls]
	c.calls++
	return reply, nil
}

// fakeExecutor records commands and fails the ones listed in failures.
type fakeExecutor struct {
	ran      []string
	failures map[string]int
}

func (e *fakeExecutor) Execute(_ context.Context, command string) (domain.ShellResult, error) {
	e.ran = append(e.ran, command)
	if code, ok := e.failures[command]; ok {
		return domain.ShellResult{Stderr: "fatal: boom", ExitCode: code}, fmt.Errorf("exit status %d", code)
	}
	return domain.ShellResult{Stdout: "ok: " + command}, nil
}

type recordingObserver struct {
	skipped      []string
	explanations []string
	finished     []string
}

func (o *recordingObserver) CommandSkipped(command string) {
	o.skipped = append(o.skipped, command)
}

func (o *recordingObserver) Explanation(_ string, explanation string) {
	o.explanations = append(o.explanations, explanation)
}

func (o *recordingObserver) CommandFinished(result domain.ExecutionResult) {
	o.finished = append(o.finished, result.Command)
}

type stubExplainer struct{}

func (stubExplainer) Explain(_ context.Context, command string) (string, error) {
	return "explains " + strings.TrimPrefix(command, "git "), nil
}

type memoryHistory struct {
	records []domain.HistoryRecord
}

func (m *memoryHistory) Save(_ context.Context, rec domain.HistoryRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryHistory) Records(context.Context, int, string) ([]domain.HistoryRecord, error) {
	return m.records, nil
}

func (m *memoryHistory) Prune(context.Context, int) (int64, error) { return 0, nil }

func (m *memoryHistory) Clear(context.Context) error {
	m.records = nil
	return nil
}
