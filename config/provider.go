package config

import (
	"strings"

	"github.com/brettbedarf/projectfs/internal/util"
)

// ProviderType names the language model backend driving the agent.
// It only matters to the core for picking the step ceiling.
type ProviderType = string

const (
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderMock       ProviderType = "mock"
)

// DetectProvider resolves the active provider from the environment.
// An explicit PROVIDER wins when its API key is present; otherwise the first
// available key is used and mock is the fallback.
func DetectProvider(getenv func(string) string) ProviderType {
	logger := util.GetLogger("DetectProvider")

	hasKey := func(name string) bool { return strings.TrimSpace(getenv(name)) != "" }

	if explicit := strings.ToLower(strings.TrimSpace(getenv("PROVIDER"))); explicit != "" {
		switch {
		case explicit == ProviderOpenRouter && hasKey("OPENROUTER_API_KEY"):
			return ProviderOpenRouter
		case explicit == ProviderAnthropic && hasKey("ANTHROPIC_API_KEY"):
			return ProviderAnthropic
		case explicit == ProviderMock:
			return ProviderMock
		}
		logger.Warn().Str("provider", explicit).Msg("Provider requested but its API key is missing; using mock")
		return ProviderMock
	}

	if hasKey("OPENROUTER_API_KEY") {
		return ProviderOpenRouter
	}
	if hasKey("ANTHROPIC_API_KEY") {
		return ProviderAnthropic
	}
	return ProviderMock
}
