package name

import (
	"context"
	"fmt"

	"github.com/paularlott/cli"

	"github.com/martinsuchenak/fqdngen/internal/config"
	"github.com/martinsuchenak/fqdngen/internal/normalize"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:        "name",
		Usage:       "Normalize names without touching DNS",
		Description: "One-off helpers that print the canonical label for a device or interface",
		Commands: []*cli.Command{
			DeviceCommand(),
			InterfaceCommand(),
		},
	}
}

func DeviceCommand() *cli.Command {
	return &cli.Command{
		Name:        "device",
		Usage:       "Normalize a device hostname",
		Description: "Print the canonical short-form label for a raw device hostname",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "hostname", Required: true},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			hostname, err := normalize.DeviceHostname(cmd.GetStringArg("hostname"))
			if err != nil {
				return err
			}
			fmt.Println(hostname)
			return nil
		},
	}
}

func InterfaceCommand() *cli.Command {
	return &cli.Command{
		Name:        "interface",
		Usage:       "Normalize an interface name",
		Description: "Print the canonical label for a device plus layer-3 interface",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "hostname", Required: true},
			&cli.StringArg{Name: "interface", Required: true},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "interface-map", Usage: "JSON file replacing the built-in interface table"},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			table := normalize.DefaultInterfaceMap
			if path := cmd.GetString("interface-map"); path != "" {
				loaded, err := config.LoadInterfaceMap(path)
				if err != nil {
					return err
				}
				table = loaded
			}

			hostname, err := normalize.DeviceHostname(cmd.GetStringArg("hostname"))
			if err != nil {
				return err
			}
			label, err := normalize.InterfaceHostname(hostname, cmd.GetStringArg("interface"), table)
			if err != nil {
				return err
			}
			fmt.Println(label)
			return nil
		},
	}
}
