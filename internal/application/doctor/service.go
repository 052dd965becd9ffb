package doctor

import (
	"context"
	"fmt"

	"github.com/doeshing/gitbrew/internal/application/command"
	appconfig "github.com/doeshing/gitbrew/internal/application/config"
	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	History        ports.HistoryRepository
	// LookPath resolves executables, normally exec.LookPath.
	LookPath func(string) (string, error)
	// Getenv reads secrets, normally os.Getenv.
	Getenv func(string) string
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded %s", cfg.ConfigFormatVersion)))

	if err := appconfig.Validate(cfg); err != nil {
		checks = append(checks, fail("Config values", err.Error()))
	} else {
		checks = append(checks, ok("Config values", fmt.Sprintf("%d model(s) configured", len(cfg.Models))))
	}

	checks = append(checks, s.toolCheck(cfg.GetToolPrefix()))
	checks = append(checks, policyCheck(cfg.GetToolPrefix()))
	checks = append(checks, s.apiCheck(cfg))
	checks = append(checks, s.githubCheck(cfg))
	checks = append(checks, s.historyCheck(ctx, cfg))

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) toolCheck(tool string) domain.HealthCheck {
	if s.LookPath == nil {
		return warn("Tool", "lookup unavailable")
	}
	path, err := s.LookPath(tool)
	if err != nil {
		return fail("Tool", fmt.Sprintf("%s not found on PATH", tool))
	}
	return ok("Tool", path)
}

func policyCheck(prefix string) domain.HealthCheck {
	classifier := command.NewClassifier(prefix)
	readOnly := 0
	for _, rule := range command.Policy() {
		if rule.Verdict == domain.VerdictReadOnly {
			readOnly++
		}
	}
	if classifier.Classify(prefix+" status") != domain.VerdictReadOnly ||
		classifier.Classify(prefix+" push") != domain.VerdictMutating ||
		classifier.Classify(prefix+" frobnicate") != domain.VerdictMutating {
		return fail("Safety policy", "classifier disagrees with the policy table")
	}
	return ok("Safety policy", fmt.Sprintf("%d read-only tokens, everything else confirmed", readOnly))
}

func (s *Service) apiCheck(cfg domain.Config) domain.HealthCheck {
	model, err := cfg.GetDefaultModel()
	if err != nil {
		return fail("API keys", err.Error())
	}
	if model.AuthEnvVar == "" {
		return ok("API keys", fmt.Sprintf("%s needs no key", model.Name))
	}
	if s.getenv(model.AuthEnvVar) == "" {
		return warn("API keys", fmt.Sprintf("%s missing for %s", model.AuthEnvVar, model.Name))
	}
	return ok("API keys", fmt.Sprintf("%s set for %s", model.AuthEnvVar, model.Name))
}

func (s *Service) githubCheck(cfg domain.Config) domain.HealthCheck {
	env := cfg.GetGitHubTokenEnvVar()
	if s.getenv(env) == "" {
		return warn("GitHub token", fmt.Sprintf("%s missing; issues, review and readme will fail", env))
	}
	return ok("GitHub token", fmt.Sprintf("%s set", env))
}

func (s *Service) historyCheck(ctx context.Context, cfg domain.Config) domain.HealthCheck {
	if !cfg.History.Enabled {
		return warn("History", "disabled")
	}
	if s.History == nil {
		return warn("History", "store not initialized")
	}
	if _, err := s.History.Records(ctx, 1, ""); err != nil {
		return fail("History", err.Error())
	}
	return ok("History", cfg.History.Path)
}

func (s *Service) getenv(key string) string {
	if s.Getenv == nil {
		return ""
	}
	return s.Getenv(key)
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
