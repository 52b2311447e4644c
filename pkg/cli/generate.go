package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func generateCommand() *cli.Command {
	var (
		cfg           config
		patientID     string
		appointmentID string
		quiet         bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "patient-id",
			Aliases:     []string{"id"},
			Usage:       "Patient to generate a report for",
			Required:    true,
			Destination: &patientID,
		},
		&cli.StringFlag{
			Name:        "appointment-id",
			Usage:       "Appointment the report belongs to",
			Destination: &appointmentID,
		},
		&cli.BoolFlag{
			Name:        "quiet",
			Aliases:     []string{"q"},
			Usage:       "Do not show progress",
			Destination: &quiet,
		},
	}
	flags = append(flags, allFlags(&cfg)...)

	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a report from the latest sensor readings",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, _ = cfg.setupLogger(ctx)

			uc, cleanup, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var s *spinner.Spinner
			if !quiet {
				s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
				s.Suffix = " generating report for " + patientID
				s.Start()
			}
			stored, err := uc.Generate(ctx, patientID, appointmentID)
			if s != nil {
				s.Stop()
			}
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(stored, "", "  ")
			if err != nil {
				return goerr.Wrap(err, "failed to marshal report")
			}
			fmt.Fprintf(c.Root().Writer, "%s\n", string(data))
			return nil
		},
	}
}
