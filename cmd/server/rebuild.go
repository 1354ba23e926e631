package main

import (
	"fmt"

	"github.com/Black-And-White-Club/cube-records/app/modules/result"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
)

func rebuildCommand() *cli.Command {
	return &cli.Command{
		Name:  "rebuild-records",
		Usage: "re-derive every record label of an event",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "event",
				Usage:    "event id, repeatable",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			rt, err := newRuntime(c)
			if err != nil {
				return err
			}
			defer rt.Close()

			module, err := result.NewModule(c.Context, rt.cfg, result.Deps{
				DB:     rt.db,
				Logger: rt.logger,
				Tracer: otel.Tracer(serviceName),
			})
			if err != nil {
				return fmt.Errorf("failed to create results module: %w", err)
			}
			defer module.Close(c.Context)

			for _, eventID := range c.StringSlice("event") {
				changed, err := module.Service.RebuildEvent(c.Context, eventID)
				if err != nil {
					return fmt.Errorf("rebuild %s: %w", eventID, err)
				}
				fmt.Fprintf(c.App.Writer, "%s: %d label(s) changed\n", eventID, changed)
			}
			return nil
		},
	}
}
