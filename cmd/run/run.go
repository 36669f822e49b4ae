package run

import (
	"fmt"
	"net/http"
	"time"

	"github.com/paularlott/cli"

	"github.com/martinsuchenak/fqdngen/internal/model"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:        "run",
		Usage:       "Browse stored check runs",
		Description: "Query run history from a fqdngen server",
		Commands: []*cli.Command{
			ListCommand(),
			GetCommand(),
		},
	}
}

func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "server", Usage: "Server URL", EnvVars: []string{"FQDNGEN_SERVER"}, DefaultValue: "http://localhost:8080"},
		&cli.StringFlag{Name: "api-token", Usage: "API authentication token", EnvVars: []string{"FQDNGEN_API_TOKEN"}},
	}
}

func makeRequest(method, url, token string) (*http.Response, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return client.Do(req)
}

func printRuns(runs []model.Run) {
	if len(runs) == 0 {
		fmt.Println("No runs found")
		return
	}
	for _, r := range runs {
		fmt.Printf("%s\t%s\trows:%d\trecords:%d\tskipped:%d\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.TotalRows, r.Produced, r.Skipped)
	}
}

func printRun(run *model.Run) {
	fmt.Printf("ID:        %s\n", run.ID)
	fmt.Printf("Started:   %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Printf("Completed: %s\n", run.CompletedAt.Format(time.RFC3339))
	fmt.Printf("Duration:  %ds\n", run.DurationSeconds)
	fmt.Printf("Rows:      %d (%d records, %d skipped)\n", run.TotalRows, run.Produced, run.Skipped)

	if len(run.Records) > 0 {
		fmt.Println("Records:")
		for _, rec := range run.Records {
			forward := string(rec.Forward.Status)
			if rec.Forward.ExistingValue != "" {
				forward += " (" + rec.Forward.ExistingValue + ")"
			}
			reverse := string(rec.Reverse.Status)
			if rec.Reverse.ExistingValue != "" {
				reverse += " (" + rec.Reverse.ExistingValue + ")"
			}
			fmt.Printf("  - %s %s forward:%s reverse:%s\n", rec.FullName, rec.IPAddress, forward, reverse)
		}
	}

	if len(run.Failures) > 0 {
		fmt.Println("Skipped rows:")
		for _, f := range run.Failures {
			fmt.Printf("  - %s %s: %s\n", f.Hostname, f.IPAddress, f.Reason)
		}
	}
}

