package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/pkg/logger"
)

func newTestEngine(prompter *scriptedPrompter, exec *fakeExecutor, obs *recordingObserver) *Engine {
	log := logger.Nop()
	return &Engine{
		Sanitizer:  NewSanitizer(prompter, log),
		Classifier: NewClassifier("git"),
		Executor:   exec,
		Prompter:   prompter,
		Explainer:  stubExplainer{},
		Observer:   obs,
		Logger:     log,
	}
}

func TestEngineRunsReadOnlyWithoutPrompting(t *testing.T) {
	prompter := &scriptedPrompter{}
	exec := &fakeExecutor{}
	engine := newTestEngine(prompter, exec, &recordingObserver{})

	report, err := engine.Execute(context.Background(), domain.CommandList{"git status", "git log -1"})
	require.NoError(t, err)

	assert.Equal(t, domain.RunCompleted, report.Status)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, []string{"git status", "git log -1"}, exec.ran)
	assert.Empty(t, prompter.offered)
	require.Len(t, report.Results, 2)
	assert.Equal(t, "ok: git status", report.Results[0].Stdout)
	assert.Equal(t, domain.StateExecuted, report.Results[1].State)
}

func TestEngineHaltsOnDecline(t *testing.T) {
	prompter := &scriptedPrompter{choices: []string{"No"}}
	exec := &fakeExecutor{}
	engine := newTestEngine(prompter, exec, &recordingObserver{})

	report, err := engine.Execute(context.Background(),
		domain.CommandList{"git status", "git push origin", "git log"})
	require.NoError(t, err)

	assert.Equal(t, domain.RunHaltedOnDecline, report.Status)
	assert.Equal(t, []string{"git status"}, exec.ran)
	require.Len(t, report.Results, 2)
	assert.Equal(t, domain.StateExecuted, report.Results[0].State)
	assert.Equal(t, domain.StateDeclined, report.Results[1].State)
	assert.Equal(t, domain.VerdictMutating, report.Results[1].Verdict)
	assert.Nil(t, report.Failure)
}

func TestEngineHaltsOnFailure(t *testing.T) {
	prompter := &scriptedPrompter{choices: []string{"Yes"}}
	exec := &fakeExecutor{failures: map[string]int{"git commit -m \"x\"": 1}}
	engine := newTestEngine(prompter, exec, &recordingObserver{})

	report, err := engine.Execute(context.Background(),
		domain.CommandList{"git status", "git commit -m \"x\"", "git push"})
	require.NoError(t, err)

	assert.Equal(t, domain.RunHaltedOnFailure, report.Status)
	assert.Equal(t, []string{"git status", "git commit -m \"x\""}, exec.ran)
	require.Len(t, report.Results, 2)
	assert.Equal(t, domain.StateFailed, report.Results[1].State)

	require.NotNil(t, report.Failure)
	assert.Equal(t, "git commit -m \"x\"", report.Failure.Command)
	assert.Equal(t, 1, report.Failure.ExitCode)
	assert.Equal(t, "fatal: boom", report.Failure.Stderr)
	assert.Contains(t, report.Failure.Error(), "exit code 1")
}

func TestEngineExplainRepromptsWithoutChangingVerdict(t *testing.T) {
	prompter := &scriptedPrompter{choices: []string{"Explain", "Explain", "Yes"}}
	exec := &fakeExecutor{}
	obs := &recordingObserver{}
	engine := newTestEngine(prompter, exec, obs)

	report, err := engine.Execute(context.Background(), domain.CommandList{"git push origin"})
	require.NoError(t, err)

	assert.Equal(t, domain.RunCompleted, report.Status)
	assert.Len(t, prompter.offered, 3)
	assert.Equal(t, []string{"explains push origin", "explains push origin"}, obs.explanations)
	assert.Equal(t, domain.VerdictMutating, report.Results[0].Verdict)
	assert.Equal(t, []string{"git push origin"}, exec.ran)
}

func TestEngineSkipsCommentary(t *testing.T) {
	prompter := &scriptedPrompter{}
	exec := &fakeExecutor{}
	obs := &recordingObserver{}
	engine := newTestEngine(prompter, exec, obs)

	report, err := engine.Execute(context.Background(),
		domain.CommandList{"This shows the status:", "git status"})
	require.NoError(t, err)

	assert.Equal(t, domain.RunCompleted, report.Status)
	assert.Equal(t, []string{"git status"}, exec.ran)
	assert.Equal(t, []string{"This shows the status:"}, obs.skipped)
	assert.Equal(t, domain.StateSkipped, report.Results[0].State)
}

func TestEngineResolvesPlaceholdersBeforeClassifying(t *testing.T) {
	prompter := &scriptedPrompter{answers: []string{"main"}, choices: []string{"Yes"}}
	exec := &fakeExecutor{}
	engine := newTestEngine(prompter, exec, &recordingObserver{})

	report, err := engine.Execute(context.Background(), domain.CommandList{"git switch <branch>"})
	require.NoError(t, err)

	assert.Equal(t, []string{"git switch main"}, exec.ran)
	assert.Equal(t, []string{"Run `git switch main`?"}, prompter.offered)
	assert.Equal(t, "git switch main", report.Results[0].Command)
}

func TestEngineReturnsPromptErrors(t *testing.T) {
	prompter := &scriptedPrompter{}
	exec := &fakeExecutor{}
	engine := newTestEngine(prompter, exec, &recordingObserver{})

	_, err := engine.Execute(context.Background(), domain.CommandList{"git push"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUserAborted))
	assert.Empty(t, exec.ran)
}

func TestEngineConfirmsChainedCommands(t *testing.T) {
	for _, command := range []string{
		"git status & touch /tmp/gitbrew-chained",
		"git log &rm -rf ~",
		"git diff > changes.patch",
	} {
		t.Run(command, func(t *testing.T) {
			prompter := &scriptedPrompter{choices: []string{"No"}}
			exec := &fakeExecutor{}
			engine := newTestEngine(prompter, exec, &recordingObserver{})

			report, err := engine.Execute(context.Background(), domain.CommandList{command})
			require.NoError(t, err)

			assert.Equal(t, domain.RunHaltedOnDecline, report.Status)
			assert.Len(t, prompter.offered, 1)
			assert.Empty(t, exec.ran)
			require.Len(t, report.Results, 1)
			assert.Equal(t, domain.VerdictMutating, report.Results[0].Verdict)
		})
	}
}
