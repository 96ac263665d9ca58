package cmdutil

import (
	"strings"

	"github.com/schmitthub/composefixture/internal/config"
)

// RequireProjectName fails unless a project name was configured. Commands
// that act on a project started by another process cannot use the
// per-process default name.
func RequireProjectName(cfg *config.Config) error {
	if strings.TrimSpace(cfg.ProjectName) == "" {
		return FlagErrorf("a project name is required: pass --project-name or set %s_PROJECT_NAME", config.EnvPrefix)
	}
	return nil
}
