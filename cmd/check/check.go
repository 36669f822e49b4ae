package check

import (
	"context"
	"fmt"
	"os"

	"github.com/paularlott/cli"

	"github.com/martinsuchenak/fqdngen/internal/batch"
	"github.com/martinsuchenak/fqdngen/internal/config"
	"github.com/martinsuchenak/fqdngen/internal/csvio"
	"github.com/martinsuchenak/fqdngen/internal/log"
	"github.com/martinsuchenak/fqdngen/internal/probe"
	"github.com/martinsuchenak/fqdngen/internal/resolve"
	"github.com/martinsuchenak/fqdngen/internal/storage"
)

func Command() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "input", Usage: "Input CSV file (ip_address, device_hostname, optional interface_name, domain)", Required: true},
		&cli.StringFlag{Name: "output", Usage: "Report CSV file", DefaultValue: "fqdn-report.csv"},
		&cli.BoolFlag{Name: "ping", Usage: "Probe each address with ICMP and record reachability"},
		&cli.StringFlag{Name: "store", Usage: "SQLite file to append this run to", EnvVars: []string{"FQDNGEN_STORE"}},
	}
	flags = append(flags, config.GetFlags()...)

	return &cli.Command{
		Name:        "check",
		Usage:       "Check a CSV of devices against DNS",
		Description: "Normalize device and interface names into canonical FQDNs and report whether forward and reverse DNS agree with them",
		Flags:       flags,
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load()
			log.Configure(cfg.LogLevel, cfg.LogFormat)

			settings, err := cfg.Settings()
			if err != nil {
				return err
			}

			inputPath := cmd.GetString("input")
			in, err := os.Open(inputPath)
			if err != nil {
				return fmt.Errorf("opening input: %w", err)
			}
			defer in.Close()

			rows, err := csvio.ReadRows(in)
			if err != nil {
				return err
			}
			log.Debug("Input parsed", "file", inputPath, "rows", len(rows))

			var prober *probe.PingProber
			if cmd.GetBool("ping") {
				prober = probe.NewPingProber()
				if !prober.Privileged() {
					log.Warn("ICMP probing needs raw socket privileges, skipping reachability checks")
					prober = nil
				}
			}

			coordinator := batch.New(resolve.SystemResolver(), prober, settings)
			run, err := coordinator.Run(ctx, rows)
			if err != nil {
				log.Error("Batch failed", "file", inputPath, "error", err)
				return err
			}

			outputPath := cmd.GetString("output")
			out, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("creating report: %w", err)
			}
			defer out.Close()

			if err := csvio.WriteReport(out, run.Records, prober != nil); err != nil {
				return err
			}

			if storePath := cmd.GetString("store"); storePath != "" {
				store, err := storage.Open(storePath)
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.SaveRun(run); err != nil {
					return fmt.Errorf("storing run: %w", err)
				}
				log.Info("Run stored", "run_id", run.ID, "store", storePath)
			}

			fmt.Printf("Run %s finished: %d records, %d rows skipped\n", run.ID, run.Produced, run.Skipped)
			fmt.Printf("Report written to %s\n", outputPath)
			return nil
		},
	}
}
