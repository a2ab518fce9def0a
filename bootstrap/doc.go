// Package bootstrap runs a scribe process: it validates the config, starts
// the registered components, runs lifecycle hooks, prints a startup summary
// and shuts everything down on SIGINT/SIGTERM.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(redisComponent)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*app.Config]) error { ... })
//	app.Run(ctx)
package bootstrap
