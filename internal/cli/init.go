package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vgs/internal/backup"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and the grant store",
		Long: "Create the configuration directory and a default config.yaml, then\n" +
			"create the baseline grant tables in the data directory when they are missing.",
		Args: cobra.NoArgs,
		RunE: a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	created, err := ensureDefaultConfigFile(a.configDir)
	if err != nil {
		return sysError("write config", err)
	}
	if created {
		a.logger.Info("wrote default config", "dir", a.configDir)
		// Pick up the file just written.
		if a.config, err = loadConfig(a.configDir); err != nil {
			return sysError("load config", err)
		}
	}

	s, err := a.open(cmd.Context(), backup.Plan{}, true)
	if err != nil {
		return err
	}
	path := s.store.Path()
	if err := s.close(); err != nil {
		return err
	}

	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), map[string]string{
			"config_dir": a.configDir,
			"database":   path,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "vgs initialized: %s\n", path)
	return nil
}
