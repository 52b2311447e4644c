package cli

import (
	"context"

	mcpserver "github.com/rmts-health/rmts/pkg/controller/mcp"
	"github.com/urfave/cli/v3"
)

func mcpCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve report tools over MCP on stdin/stdout",
		Flags: allFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, _ = cfg.setupLogger(ctx)

			uc, cleanup, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			return mcpserver.Serve(ctx, uc, Version)
		},
	}
}
