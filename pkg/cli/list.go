package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rmts-health/rmts/pkg/model"
	"github.com/urfave/cli/v3"
)

func listCommand() *cli.Command {
	var (
		cfg       config
		patientID string
		xlsxPath  string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "patient-id",
			Aliases:     []string{"id"},
			Usage:       "Patient whose reports are listed",
			Required:    true,
			Destination: &patientID,
		},
		&cli.StringFlag{
			Name:        "xlsx",
			Usage:       "Write the report index to this XLSX file instead of printing it",
			Destination: &xlsxPath,
		},
	}
	flags = append(flags, allFlags(&cfg)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List reports of a patient, newest first",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, _ = cfg.setupLogger(ctx)

			if xlsxPath != "" {
				uc, cleanup, err := cfg.newUseCase(ctx)
				if err != nil {
					return err
				}
				defer cleanup()

				f, err := os.Create(xlsxPath)
				if err != nil {
					return goerr.Wrap(err, "failed to create file", goerr.V("path", xlsxPath))
				}
				if err := uc.ExportIndex(ctx, patientID, f); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return goerr.Wrap(err, "failed to close file", goerr.V("path", xlsxPath))
				}
				fmt.Fprintf(c.Root().Writer, "Report index written to %s\n", xlsxPath)
				return nil
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			reports, err := repo.ListReports(ctx, patientID)
			if err != nil {
				return goerr.Wrap(err, "failed to list reports")
			}

			if len(reports) == 0 {
				fmt.Fprintf(c.Root().Writer, "No reports found\n")
				return nil
			}
			for _, r := range reports {
				createdAt := "pending"
				if ts := model.FormatTimestamp(r.CreatedAt); ts != nil {
					createdAt = *ts
				}
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%s\t%s\n", r.ID, createdAt, r.GeneratedVia, r.ReportURL)
			}
			return nil
		},
	}
}
