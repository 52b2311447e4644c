package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rmts-health/rmts/pkg/model"
	"github.com/urfave/cli/v3"
)

func reportFlags(patientID *string, reportID *model.ReportID) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "patient-id",
			Usage:       "Patient owning the report",
			Required:    true,
			Destination: patientID,
		},
		&cli.StringFlag{
			Name:        "report-id",
			Aliases:     []string{"id"},
			Usage:       "Report ID",
			Required:    true,
			Destination: (*string)(reportID),
		},
	}
}

func showCommand() *cli.Command {
	var (
		cfg       config
		patientID string
		reportID  model.ReportID
	)

	flags := reportFlags(&patientID, &reportID)
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "show",
		Usage: "Show metadata of a stored report",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, _ = cfg.setupLogger(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			stored, err := repo.GetReport(ctx, patientID, reportID)
			if err != nil {
				return goerr.Wrap(err, "failed to show report")
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
