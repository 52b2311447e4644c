package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rmts-health/rmts/pkg/model"
	"github.com/urfave/cli/v3"
)

func downloadCommand() *cli.Command {
	var (
		cfg       config
		patientID string
		reportID  model.ReportID
		output    string
	)

	flags := reportFlags(&patientID, &reportID)
	flags = append(flags, &cli.StringFlag{
		Name:        "output",
		Aliases:     []string{"o"},
		Usage:       "Output file. Defaults to <report-id>.pdf",
		Destination: &output,
	})
	flags = append(flags, allFlags(&cfg)...)

	return &cli.Command{
		Name:  "download",
		Usage: "Download the PDF of a stored report",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, _ = cfg.setupLogger(ctx)

			uc, cleanup, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if output == "" {
				output = string(reportID) + ".pdf"
			}
			f, err := os.Create(output)
			if err != nil {
				return goerr.Wrap(err, "failed to create file", goerr.V("path", output))
			}
			if err := uc.Download(ctx, patientID, reportID, f); err != nil {
				_ = f.Close()
				_ = os.Remove(output)
				return err
			}
			if err := f.Close(); err != nil {
				return goerr.Wrap(err, "failed to close file", goerr.V("path", output))
			}

			fmt.Fprintf(c.Root().Writer, "Report saved to %s\n", output)
			return nil
		},
	}
}
