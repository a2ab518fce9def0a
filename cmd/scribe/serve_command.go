package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/scribe/app"
)

var roleShort = map[app.Role]string{
	app.RoleServe:  "Run the HTTP API and the worker pool",
	app.RoleWorker: "Run only the worker pool against the shared Redis queue",
}

func newServeCommand(ctx *commandContext, role app.Role) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   string(role),
		Short: roleShort[role],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Jobs.Workers = workers
			}
			a, err := app.New(cfg, role)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Worker goroutines (overrides jobs.workers)")
	return cmd
}
