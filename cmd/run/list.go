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

func ListCommand() *cli.Command {
	return &cli.Command{
		Name:        "list",
		Usage:       "List stored runs",
		Description: "List all check runs stored on the server",
		Flags:       serverFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			log.Debug("Listing runs", "server", cmd.GetString("server"))

			resp, err := makeRequest("GET", cmd.GetString("server")+"/api/runs", cmd.GetString("api-token"))
			if err != nil {
				log.Error("Failed to connect to server for list", "error", err)
				return fmt.Errorf("failed to connect to server: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				log.Error("Server returned error for list", "status", resp.Status)
				return fmt.Errorf("server error: %s", resp.Status)
			}

			var runs []model.Run
			if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
				log.Error("Failed to decode run list response", "error", err)
				return err
			}

			printRuns(runs)
			return nil
		},
	}
}
