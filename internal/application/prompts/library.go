// Package prompts renders the embedded prompt templates into chat messages.
package prompts

import (
	"bytes"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/doeshing/gitbrew/assets"
	"github.com/doeshing/gitbrew/internal/domain"
)

// Template names, matching files under assets/prompts.
const (
	GenerateCommand      = "generate_command.tmpl"
	Clarification        = "clarification.tmpl"
	ExplainCommand       = "explain_command.tmpl"
	SummarizeFile        = "summarize_file.tmpl"
	SummarizeFileSystem  = "summarize_file.system.tmpl"
	GenerateReadme       = "generate_readme.tmpl"
	GenerateReadmeSystem = "generate_readme.system.tmpl"
	ReviewPullRequest    = "review_pull_request.tmpl"
)

// Library holds the parsed templates.
type Library struct {
	tmpl *template.Template
}

// Load parses the embedded templates.
func Load() (*Library, error) {
	return LoadFS(assets.Prompts, "prompts/*.tmpl")
}

// LoadFS parses templates matching pattern from fsys.
func LoadFS(fsys fs.FS, pattern string) (*Library, error) {
	tmpl, err := template.New("prompts").Option("missingkey=error").ParseFS(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("parse prompt templates: %w", err)
	}
	return &Library{tmpl: tmpl}, nil
}

// MustLoad is Load for package initialisation and tests.
func MustLoad() *Library {
	lib, err := Load()
	if err != nil {
		panic(err)
	}
	return lib
}

type protocolData struct {
	Start        string
	End          string
	Sep          string
	ClarifyOpen  string
	ClarifyClose string
}

func protocol() protocolData {
	return protocolData{
		Start:        domain.MarkerStart,
		End:          domain.MarkerEnd,
		Sep:          domain.MarkerSeparator,
		ClarifyOpen:  domain.MarkerClarify,
		ClarifyClose: domain.MarkerClarifyClose,
	}
}

// GenerateCommand builds the first prompt of an interaction cycle.
// The intent is embedded verbatim, surrounding whitespace included.
func (l *Library) GenerateCommand(intent string) ([]domain.ChatMessage, error) {
	content, err := l.renderRaw(GenerateCommand, struct {
		protocolData
		Intent string
	}{protocol(), intent})
	if err != nil {
		return nil, err
	}
	return []domain.ChatMessage{domain.UserMessage(strings.TrimSuffix(content, "\n"))}, nil
}

// Clarification re-prompts the model with the whole transcript.
func (l *Library) Clarification(transcript *domain.Transcript) ([]domain.ChatMessage, error) {
	content, err := l.render(Clarification, struct {
		protocolData
		Conversation string
	}{protocol(), transcript.String()})
	if err != nil {
		return nil, err
	}
	return []domain.ChatMessage{domain.UserMessage(content)}, nil
}

// ExplainCommand asks for a plain-language explanation of one command.
func (l *Library) ExplainCommand(command string) ([]domain.ChatMessage, error) {
	content, err := l.render(ExplainCommand, struct{ Command string }{command})
	if err != nil {
		return nil, err
	}
	return []domain.ChatMessage{domain.UserMessage(content)}, nil
}

// ReviewPullRequest builds the per-file review prompt.
func (l *Library) ReviewPullRequest(pr domain.PullRequest, file domain.FileChange) ([]domain.ChatMessage, error) {
	content, err := l.render(ReviewPullRequest, struct {
		Title    string
		Body     string
		Filename string
		Diff     string
	}{pr.Title, pr.Body, file.Filename, file.Patch})
	if err != nil {
		return nil, err
	}
	return []domain.ChatMessage{domain.UserMessage(content)}, nil
}

// SummarizeFile builds the per-file summary prompt used for README generation.
func (l *Library) SummarizeFile(file domain.ContentFile) ([]domain.ChatMessage, error) {
	return l.withSystem(SummarizeFileSystem, SummarizeFile, struct {
		Filename string
		Content  string
	}{file.Path, file.Content})
}

// FileSummary pairs a path with its model-written summary.
type FileSummary struct {
	Path    string
	Summary string
}

// GenerateReadme builds the final README prompt from per-file summaries.
func (l *Library) GenerateReadme(repo domain.RepoRef, summaries []FileSummary) ([]domain.ChatMessage, error) {
	return l.withSystem(GenerateReadmeSystem, GenerateReadme, struct {
		Repo      string
		Summaries []FileSummary
	}{repo.String(), summaries})
}

func (l *Library) withSystem(systemName, userName string, data interface{}) ([]domain.ChatMessage, error) {
	system, err := l.render(systemName, data)
	if err != nil {
		return nil, err
	}
	user, err := l.render(userName, data)
	if err != nil {
		return nil, err
	}
	return []domain.ChatMessage{domain.SystemMessage(system), domain.UserMessage(user)}, nil
}

func (l *Library) render(name string, data interface{}) (string, error) {
	out, err := l.renderRaw(name, data)
	return strings.TrimSpace(out), err
}

func (l *Library) renderRaw(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := l.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
