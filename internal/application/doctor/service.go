package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	configapp "github.com/doeshing/promptline/internal/application/config"
	"github.com/doeshing/promptline/internal/domain"
	"github.com/doeshing/promptline/internal/ports"
)

// PatchVerifier reports which optimize steps still have work to do.
type PatchVerifier interface {
	Verify(root, targetOS string) domain.PatchReport
}

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	CacheStore     ports.CacheRepository
	Runner         ports.CommandRunner
	Detect         func(domain.EnvironmentView) domain.CapabilityProfile
	Env            func() domain.EnvironmentView
	Patches        PatchVerifier
	FindRoot       func(start string) (string, error)
}

// Run executes checks and returns a report. Problems are reported as
// checks; the error is reserved for an unwired service.
func (s *Service) Run(ctx context.Context, start string) (domain.HealthReport, error) {
	if s.ConfigProvider == nil {
		return domain.HealthReport{}, errors.New("doctor.Service dependencies not satisfied")
	}
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, warn("Config file", fmt.Sprintf("using defaults: %v", err)))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("loaded format %s", cfg.ConfigFormatVersion)))
	}
	if err := configapp.Validate(cfg); err != nil {
		checks = append(checks, fail("Config values", err.Error()))
	} else {
		checks = append(checks, ok("Config values", "valid"))
	}

	if s.CacheStore != nil {
		checks = append(checks, cacheCheck(s.CacheStore))
	}
	if s.Runner != nil {
		checks = append(checks, gitCheck(ctx, s.Runner))
	}
	if s.Detect != nil && s.Env != nil {
		caps := s.Detect(s.Env())
		checks = append(checks, ok("Terminal", fmt.Sprintf("class=%s unicode=%t color=%t",
			caps.TerminalClass, caps.SupportsUnicode, caps.SupportsColor)))
	}
	if s.Patches != nil && s.FindRoot != nil {
		checks = append(checks, s.patchChecks(start, cfg.TargetOS())...)
	}

	return domain.HealthReport{Checks: checks}, nil
}

func cacheCheck(store ports.CacheRepository) domain.HealthCheck {
	entries, err := store.Entries()
	if err != nil {
		return warn("Cache store", fmt.Sprintf("%s unreadable, it will be rebuilt: %v", store.Path(), err))
	}
	return ok("Cache store", fmt.Sprintf("%d entries at %s", len(entries), store.Path()))
}

func gitCheck(ctx context.Context, runner ports.CommandRunner) domain.HealthCheck {
	out, err := runner.Run(ctx, "", "git", "--version")
	if err != nil {
		return warn("Git", fmt.Sprintf("unavailable, branch segments stay blank: %v", err))
	}
	return ok("Git", strings.TrimSpace(out))
}

func (s *Service) patchChecks(start, targetOS string) []domain.HealthCheck {
	root, err := s.FindRoot(start)
	if err != nil {
		return []domain.HealthCheck{warn("Optimize", err.Error())}
	}
	var checks []domain.HealthCheck
	for _, step := range s.Patches.Verify(root, targetOS).Steps {
		name := "Optimize " + step.ID
		if step.Outcome == domain.OutcomeAlreadySatisfied {
			checks = append(checks, ok(name, "up to date"))
			continue
		}
		checks = append(checks, warn(name, "pending, run `promptline optimize`"))
	}
	return checks
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
