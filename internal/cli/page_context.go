package cli

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/pipette/internal/browser"
	"github.com/jmylchreest/pipette/internal/pagescript"
)

func newPageContextCmd() *cobra.Command {
	var flags browserFlags

	cmd := &cobra.Command{
		Use:    "page-context",
		Short:  "Serve the page script as a plugin (internal)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := browser.DefaultConfig()
			if err := flags.apply(cmd.Flags(), &cfg); err != nil {
				return err
			}
			if cfg.Viewport.Scale <= 0 {
				return fmt.Errorf("device pixel scale must be positive (got %g)", cfg.Viewport.Scale)
			}

			// go-plugin relays JSON log lines on stderr into the host logger.
			logger := hclog.New(&hclog.LoggerOptions{
				Name:       "page",
				Output:     cmd.ErrOrStderr(),
				Level:      hclog.Trace,
				JSONFormat: true,
			})

			script := pagescript.NewPluginScript(cfg.Viewport, nil, logger)
			defer script.Agent.Close()
			pagescript.Serve(script, logger)
			return nil
		},
	}

	flags.register(cmd.Flags(), false)
	return cmd
}
