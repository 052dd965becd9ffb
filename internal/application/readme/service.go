// Package readme generates a README for a hosted repository from per-file
// summaries.
package readme

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/doeshing/gitbrew/internal/application/prompts"
	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/ports"
)

// Progress is told about each file as it is summarized.
type Progress func(done, total int, path string)

// Service generates READMEs.
type Service struct {
	Host      ports.GitHost
	Completer ports.Completer
	Prompts   *prompts.Library
	Logger    ports.Logger
	Progress  Progress

	Extensions []string
	MaxFiles   int
}

// Generate summarizes the repository's files and asks the model for a README.
func (s *Service) Generate(ctx context.Context, repo domain.RepoRef) (string, error) {
	if s.Host == nil || s.Completer == nil || s.Prompts == nil || s.Logger == nil {
		return "", errors.New("readme.Service dependencies not satisfied")
	}

	files, err := s.Host.ListContents(ctx, repo, s.keep)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no summarizable files in %s", repo)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	if limit := s.maxFiles(); len(files) > limit {
		s.Logger.Warn("too many files, truncating", map[string]interface{}{"repo": repo.String(), "files": len(files), "max": limit})
		files = files[:limit]
	}

	summaries := make([]prompts.FileSummary, 0, len(files))
	for i, file := range files {
		if s.Progress != nil {
			s.Progress(i, len(files), file.Path)
		}
		messages, err := s.Prompts.SummarizeFile(file)
		if err != nil {
			return "", err
		}
		summary, err := s.Completer.Complete(ctx, messages)
		if err != nil {
			return "", fmt.Errorf("summarize %s: %w", file.Path, err)
		}
		summaries = append(summaries, prompts.FileSummary{Path: file.Path, Summary: strings.TrimSpace(summary)})
	}

	messages, err := s.Prompts.GenerateReadme(repo, summaries)
	if err != nil {
		return "", err
	}
	s.Logger.Info("generating readme", map[string]interface{}{"repo": repo.String(), "files": len(summaries)})
	readme, err := s.Completer.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate readme: %w", err)
	}
	return strings.TrimSpace(readme) + "\n", nil
}

// WriteFile writes content to path, refusing to clobber an existing file
// unless overwrite is set.
func WriteFile(path, content string, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (s *Service) keep(path string) bool {
	exts := s.Extensions
	if len(exts) == 0 {
		exts = domain.DefaultReadmeExtensions
	}
	lower := strings.ToLower(path)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

func (s *Service) maxFiles() int {
	if s.MaxFiles <= 0 {
		return domain.DefaultReadmeMaxFiles
	}
	return s.MaxFiles
}
