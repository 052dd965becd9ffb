package command

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/doeshing/gitbrew/internal/ports"
)

// placeholderPattern matches a template token such as <branch-name> or
// <path/to/file>. Labels start with a letter, so format strings like
// "%an <%ae>" and addresses like <a@b.c> stay literal.
var placeholderPattern = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9 _./-]*)>`)

// Sanitizer resolves placeholders left in generated commands by asking the user.
type Sanitizer struct {
	Prompter ports.Prompter
	Logger   ports.Logger
}

// NewSanitizer builds a sanitizer backed by prompter.
func NewSanitizer(prompter ports.Prompter, logger ports.Logger) *Sanitizer {
	return &Sanitizer{Prompter: prompter, Logger: logger}
}

// Sanitize returns command with every placeholder replaced by user input.
// A command without placeholders is returned unchanged.
func (s *Sanitizer) Sanitize(ctx context.Context, command string) (string, error) {
	resolved, _, err := s.SanitizeReport(ctx, command)
	return resolved, err
}

// SanitizeReport is Sanitize that also reports how many substitution rounds ran.
func (s *Sanitizer) SanitizeReport(ctx context.Context, command string) (string, int, error) {
	rounds := 0
	for {
		match := placeholderPattern.FindStringSubmatch(command)
		if match == nil {
			return command, rounds, nil
		}
		token, label := match[0], strings.TrimSpace(match[1])

		answer, err := s.ask(ctx, label)
		if err != nil {
			return command, rounds, fmt.Errorf("resolve placeholder %s: %w", token, err)
		}
		command = strings.ReplaceAll(command, token, answer)
		rounds++

		if s.Logger != nil {
			s.Logger.Debug("placeholder resolved", map[string]interface{}{
				"placeholder": token,
				"round":       rounds,
			})
		}
	}
}

// ask repeats the question until the user gives a non-empty answer.
func (s *Sanitizer) ask(ctx context.Context, label string) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		answer, err := s.Prompter.Ask(ctx, label)
		if err != nil {
			return "", err
		}
		if answer = strings.TrimSpace(answer); answer != "" {
			return answer, nil
		}
	}
}

// Placeholders lists the distinct placeholder tokens in command, in order of appearance.
func Placeholders(command string) []string {
	seen := map[string]bool{}
	var tokens []string
	for _, token := range placeholderPattern.FindAllString(command, -1) {
		if seen[token] {
			continue
		}
		seen[token] = true
		tokens = append(tokens, token)
	}
	return tokens
}
