// Package command provides CLI command definitions for redisnode-cli.
package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI local configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show CLI configuration",
				Action: configShow,
			},
			{
				Name:   "validate",
				Usage:  "Validate CLI configuration",
				Action: configValidate,
			},
		},
	}
}

func configPath() string {
	homeDir, _ := os.UserHomeDir()
	return homeDir + "/.config/redisnode-cli/cli.yaml"
}

func configShow(c *cli.Context) error {
	fmt.Printf("CLI Configuration\n")
	fmt.Printf("=================\n\n")

	path := configPath()
	fmt.Printf("Config file: %s\n\n", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("(No configuration file found)\n")
		fmt.Printf("\nDefault settings:\n")
		fmt.Printf("  Server:  localhost:5080\n")
		fmt.Printf("  Socket:  /var/run/redisnode-server/redisnode-server.sock\n")
		fmt.Printf("  Output:  table\n")
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	fmt.Printf("%s\n", string(content))
	return nil
}

func configValidate(c *cli.Context) error {
	path := configPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("No configuration file found at %s\n", path)
		fmt.Printf("Using default settings.\n")
		return nil
	}

	if _, err := os.ReadFile(path); err != nil {
		return fmt.Errorf("cannot read config: %w", err)
	}

	fmt.Printf("Configuration file is valid: %s\n", path)
	return nil
}
