package run

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/paularlott/cli"

	"github.com/martinsuchenak/fqdngen/internal/log"
	"github.com/martinsuchenak/fqdngen/internal/model"
)

func GetCommand() *cli.Command {
	return &cli.Command{
		Name:        "get",
		Usage:       "Show one stored run",
		Description: "Show a stored run with its records and skipped rows",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Flags: serverFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.GetStringArg("id")
			log.Debug("Getting run", "run_id", id, "server", cmd.GetString("server"))

			resp, err := makeRequest("GET", cmd.GetString("server")+"/api/runs/"+id, cmd.GetString("api-token"))
			if err != nil {
				log.Error("Failed to connect to server", "error", err, "run_id", id)
				return fmt.Errorf("failed to connect to server: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				log.Warn("Run not found", "run_id", id)
				return fmt.Errorf("run not found")
			}
			if resp.StatusCode != http.StatusOK {
				log.Error("Server returned error", "status", resp.Status, "run_id", id)
				return fmt.Errorf("server error: %s", resp.Status)
			}

			var run model.Run
			if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
				log.Error("Failed to decode run response", "error", err, "run_id", id)
				return err
			}

			printRun(&run)
			return nil
		},
	}
}
