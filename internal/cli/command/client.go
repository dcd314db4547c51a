// Package command provides CLI command definitions for redisnode-cli.
package command

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/shardflow/redisnode/internal/cli/output"
)

// clientInfo is the structured form of one internal/server/redisserver
// Worker.ListClients line, used so --output table/json/yaml all render the
// same data instead of clientList just echoing the raw control-socket text.
type clientInfo struct {
	ID        uint64 `json:"id"`
	Addr      string `json:"addr"`
	Name      string `json:"name"`
	Age       int64  `json:"age"`
	Idle      int64  `json:"idle"`
	Flags     string `json:"flags"`
	Cmd       string `json:"cmd"`
	Namespace string `json:"namespace" table:"wide"`
	FD        int    `json:"fd" table:"wide"`
	QBuf      int64  `json:"qbuf" table:"wide"`
	OBuf      int64  `json:"obuf" table:"wide"`
}

// parseClientList turns Worker.ListClients's "key=value key=value ..." lines
// into structured rows, keeping the wire format itself untouched so other
// tooling consuming the control socket directly keeps working.
func parseClientList(resp string) ([]clientInfo, error) {
	lines := strings.Split(strings.TrimRight(resp, "\n"), "\n")
	infos := make([]clientInfo, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		info, err := parseClientLine(line)
		if err != nil {
			return nil, fmt.Errorf("parse client line %q: %w", line, err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func parseClientLine(line string) (clientInfo, error) {
	var info clientInfo
	for _, tok := range strings.Fields(line) {
		key, val, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		var err error
		switch key {
		case "id":
			info.ID, err = strconv.ParseUint(val, 10, 64)
		case "addr":
			info.Addr = val
		case "fd":
			info.FD, err = strconv.Atoi(val)
		case "name":
			info.Name = val
		case "age":
			info.Age, err = strconv.ParseInt(val, 10, 64)
		case "idle":
			info.Idle, err = strconv.ParseInt(val, 10, 64)
		case "flags":
			info.Flags = val
		case "namespace":
			info.Namespace = val
		case "qbuf":
			info.QBuf, err = strconv.ParseInt(val, 10, 64)
		case "obuf":
			info.OBuf, err = strconv.ParseInt(val, 10, 64)
		case "cmd":
			info.Cmd = val
		}
		if err != nil {
			return info, fmt.Errorf("field %s: %w", key, err)
		}
	}
	return info, nil
}

// colorizeMonitorFlag highlights the Monitor flag ('O') in table output so
// monitor connections stand out in a `client list` scan.
func colorizeMonitorFlag(flags string) string {
	if !strings.ContainsRune(flags, 'O') {
		return flags
	}
	return color.New(color.FgGreen, color.Bold).Sprint(flags)
}

// ClientCommand returns the client subcommand group, talking to
// redisnode-server's local control socket rather than the HTTP admin
// surface: it needs to work even when the HTTP listener is down.
func ClientCommand() *cli.Command {
	return &cli.Command{
		Name:  "client",
		Usage: "Inspect and manage connections to the Redis front end",
		Subcommands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show connection and worker counts",
				Action: clientStatus,
			},
			{
				Name:   "list",
				Usage:  "List every connected client",
				Action: clientList,
			},
			{
				Name:      "kill",
				Usage:     "Kill connections matching --id or --addr",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:  "id",
						Usage: "Kill the connection with this client id",
					},
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Kill the connection from this remote address",
					},
				},
				Action: clientKill,
			},
		},
	}
}

func clientStatus(c *cli.Context) error {
	sock := EnsureSocket(c)
	resp, err := sock.Execute("status")
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	fmt.Print(resp)
	return nil
}

func clientList(c *cli.Context) error {
	sock := EnsureSocket(c)
	resp, err := sock.Execute("clients")
	if err != nil {
		return fmt.Errorf("list clients: %w", err)
	}

	if resp == "" {
		fmt.Println("(no clients connected)")
		return nil
	}

	clients, err := parseClientList(resp)
	if err != nil {
		return fmt.Errorf("list clients: %w", err)
	}

	flags := ParseGlobalFlags(c)
	format := output.Format(flags.Output)
	if format == output.FormatTable {
		for i := range clients {
			clients[i].Flags = colorizeMonitorFlag(clients[i].Flags)
		}
	}

	return output.NewFormatter(format, flags.Wide).Format(os.Stdout, clients)
}

func clientKill(c *cli.Context) error {
	id := c.Uint64("id")
	addr := c.String("addr")
	if id == 0 && addr == "" {
		return fmt.Errorf("kill requires --id or --addr")
	}

	sock := EnsureSocket(c)

	var args []string
	if id != 0 {
		args = append(args, "id="+strconv.FormatUint(id, 10))
	}
	if addr != "" {
		args = append(args, "addr="+addr)
	}

	resp, err := sock.Execute("kill", args...)
	if err != nil {
		return fmt.Errorf("kill: %w", err)
	}

	resp = strings.TrimSuffix(resp, "\n")
	if strings.HasPrefix(resp, "ERR") {
		return fmt.Errorf("%s", resp)
	}
	fmt.Fprintln(os.Stdout, resp)
	return nil
}
