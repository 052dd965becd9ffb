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

func TestSanitizeWithoutPlaceholdersIsNoop(t *testing.T) {
	prompter := &scriptedPrompter{}
	s := NewSanitizer(prompter, logger.Nop())

	for _, command := range []string{
		"git status",
		`git commit -m "[WIP] tidy"`,
		`git log --format="%an <%ae>"`,
		`git commit --author="Jo <jo@example.com>" -m fix`,
		"git log HEAD~3..HEAD -- <>",
		"",
	} {
		got, rounds, err := s.SanitizeReport(context.Background(), command)
		require.NoError(t, err)
		assert.Equal(t, command, got)
		assert.Zero(t, rounds)

		again, err := s.Sanitize(context.Background(), got)
		require.NoError(t, err)
		assert.Equal(t, got, again)
	}
	assert.Empty(t, prompter.asked)
}

func TestSanitizeRunsOneRoundPerDistinctPlaceholder(t *testing.T) {
	prompter := &scriptedPrompter{answers: []string{"origin", "feature/login"}}
	s := NewSanitizer(prompter, logger.Nop())

	got, rounds, err := s.SanitizeReport(context.Background(),
		"git push <remote-name> <branch-name> && git branch -u <remote-name>/<branch-name>")
	require.NoError(t, err)

	assert.Equal(t, 2, rounds)
	assert.Equal(t, []string{"remote-name", "branch-name"}, prompter.asked)
	assert.Equal(t, "git push origin feature/login && git branch -u origin/feature/login", got)
	assert.Empty(t, Placeholders(got))
}

func TestSanitizeResolvesPlaceholderIntroducedByAnswer(t *testing.T) {
	prompter := &scriptedPrompter{answers: []string{"fix <ticket>", "GB-12"}}
	s := NewSanitizer(prompter, logger.Nop())

	got, rounds, err := s.SanitizeReport(context.Background(), `git commit -m "<message>"`)
	require.NoError(t, err)
	assert.Equal(t, 2, rounds)
	assert.Equal(t, `git commit -m "fix GB-12"`, got)
}

func TestSanitizeReasksOnEmptyAnswer(t *testing.T) {
	prompter := &scriptedPrompter{answers: []string{"", "  ", "main"}}
	s := NewSanitizer(prompter, logger.Nop())

	got, err := s.Sanitize(context.Background(), "git switch <branch>")
	require.NoError(t, err)
	assert.Equal(t, "git switch main", got)
	assert.Len(t, prompter.asked, 3)
}

func TestSanitizePropagatesPromptError(t *testing.T) {
	s := NewSanitizer(&scriptedPrompter{}, logger.Nop())

	_, err := s.Sanitize(context.Background(), "git switch <branch>")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUserAborted))
}

func TestPlaceholdersDistinctInOrder(t *testing.T) {
	got := Placeholders("git tag <tag> <commit> && git push origin <tag>")
	assert.Equal(t, []string{"<tag>", "<commit>"}, got)
}

func TestPlaceholdersLabelShapes(t *testing.T) {
	got := Placeholders(`git add <path/to/file> <file name.txt> --format="<%h>" <1st>`)
	assert.Equal(t, []string{"<path/to/file>", "<file name.txt>"}, got)
}
