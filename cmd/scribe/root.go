package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/kbukum/scribe/app"
	"github.com/kbukum/scribe/config"
	"github.com/kbukum/scribe/version"
)

func newRootCommand() *cobra.Command {
	var configFlag, envFlag string
	ctx := &commandContext{configFlag: &configFlag, envFlag: &envFlag}

	rootCmd := &cobra.Command{
		Use:           "scribe",
		Short:         "Segmented transcription service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&envFlag, "env-file", "", "Environment file path")

	rootCmd.AddCommand(newServeCommand(ctx, app.RoleServe))
	rootCmd.AddCommand(newServeCommand(ctx, app.RoleWorker))
	rootCmd.AddCommand(newTranscribeCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

type commandContext struct {
	configFlag *string
	envFlag    *string

	configOnce sync.Once
	config     *app.Config
	configErr  error
}

func (c *commandContext) ensureConfig() (*app.Config, error) {
	c.configOnce.Do(func() {
		var opts []config.LoaderOption
		if p := strings.TrimSpace(*c.configFlag); p != "" {
			opts = append(opts, config.WithConfigFile(p))
		}
		if p := strings.TrimSpace(*c.envFlag); p != "" {
			opts = append(opts, config.WithEnvFile(p))
		}
		cfg := &app.Config{}
		if err := config.LoadConfig(app.ServiceName, cfg, opts...); err != nil {
			c.configErr = err
			return
		}
		if cfg.Version == "" {
			cfg.Version = version.Short()
		}
		c.config = cfg
	})
	return c.config, c.configErr
}
