// Package command provides CLI command definitions for redisnode-cli.
package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/shardflow/redisnode/internal/cli/connection"
	"github.com/shardflow/redisnode/internal/cli/output"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "System health and status",
		Subcommands: []*cli.Command{
			{
				Name:   "health",
				Usage:  "Check server health via /healthz",
				Action: systemHealth,
			},
		},
	}
}

func systemHealth(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := client.Get(ctx, "/healthz")
	if err != nil {
		PrintError("health check failed: %v", err)
		return fmt.Errorf("server unreachable")
	}

	var result struct {
		Status           string `json:"status"`
		ClientsConnected int64  `json:"clients_connected"`
		ClientsMonitors  int64  `json:"clients_monitors"`
		Workers          int    `json:"workers"`
		ReplWorkers      int    `json:"repl_workers"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	switch output.Format(flags.Output) {
	case output.FormatJSON:
		formatter := &output.JSONFormatter{}
		return formatter.Format(os.Stdout, result)
	default:
		if result.Status == "ok" {
			fmt.Printf("Server is healthy\n")
		} else {
			fmt.Printf("Server reports status: %s\n", result.Status)
		}
		fmt.Printf("  Target:           %s\n", client.BaseURL())
		fmt.Printf("  Clients:          %d\n", result.ClientsConnected)
		fmt.Printf("  Monitors:         %d\n", result.ClientsMonitors)
		fmt.Printf("  Workers:          %d\n", result.Workers)
		fmt.Printf("  Repl workers:     %d\n", result.ReplWorkers)
		return nil
	}
}
