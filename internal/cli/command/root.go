// Package command provides CLI command definitions for redisnode-cli.
//
// It uses urfave/cli/v2 for command parsing and runs one command per
// invocation; it has no interactive REPL mode.
package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/shardflow/redisnode/internal/cli/connection"
	"github.com/shardflow/redisnode/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "redisnode-cli",
		Usage:   "redisnode-server command-line management tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ConnectCommand(),
			ClientCommand(),
			SystemCommand(),
			ConfigCommand(),
		},
		Before: func(c *cli.Context) error {
			mgr := connection.NewManager()
			c.App.Metadata["connMgr"] = mgr
			return nil
		},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "redisnode-server admin address (e.g., localhost:5080)",
			EnvVars: []string{"REDISNODE_SERVER"},
			Value:   "localhost:5080",
		},
		&cli.StringFlag{
			Name:    "socket",
			Usage:   "redisnode-server local control socket path",
			EnvVars: []string{"REDISNODE_SOCKET"},
			Value:   "/var/run/redisnode-server/redisnode-server.sock",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable verbose output",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server string
	Socket string

	Output string // table, json, yaml
	Wide   bool

	Verbose bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:  c.String("server"),
		Socket:  c.String("socket"),
		Output:  c.String("output"),
		Wide:    c.Bool("wide"),
		Verbose: c.Bool("verbose"),
	}
}

// GetConnectionManager retrieves the connection manager from context.
func GetConnectionManager(c *cli.Context) *connection.Manager {
	if mgr, ok := c.App.Metadata["connMgr"].(*connection.Manager); ok {
		return mgr
	}
	return nil
}

// EnsureConnected builds an HTTP client for the admin/debug surface from
// the global --server flag.
func EnsureConnected(c *cli.Context) (*connection.HTTPClient, error) {
	flags := ParseGlobalFlags(c)
	return connection.NewHTTPClient(flags.Server), nil
}

// EnsureSocket builds a local control-socket client from the global
// --socket flag.
func EnsureSocket(c *cli.Context) *connection.SocketClient {
	flags := ParseGlobalFlags(c)
	return connection.NewSocketClient(flags.Socket)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}

// truncateID shortens long identifiers for table display.
func truncateID(id string) string {
	const maxLen = 16
	if len(id) <= maxLen {
		return id
	}
	return id[:maxLen-3] + "..."
}
