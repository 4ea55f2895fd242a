// Package radio implements terminal.Radio for the platforms the terminal
// runs on.
package radio

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rollcall-dev/rollcall/internal/terminal"
)

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

// NMCLI drives NetworkManager through its command-line client.
type NMCLI struct {
	iface string
	run   runFunc
}

// NewNMCLI returns a radio bound to iface, or to whichever wifi device
// NetworkManager picks when iface is empty.
func NewNMCLI(iface string) *NMCLI {
	return &NMCLI{iface: iface, run: execRun}
}

func (n *NMCLI) Scan(ctx context.Context) ([]terminal.AccessPoint, error) {
	args := []string{"-t", "-f", "SSID,SIGNAL", "device", "wifi", "list", "--rescan", "yes"}
	if n.iface != "" {
		args = append(args, "ifname", n.iface)
	}
	out, err := n.run(ctx, "nmcli", args...)
	if err != nil {
		return nil, err
	}
	return parseWifiList(string(out)), nil
}

func (n *NMCLI) Join(ctx context.Context, ssid, password string) error {
	args := []string{"device", "wifi", "connect", ssid}
	if password != "" {
		args = append(args, "password", password)
	}
	if n.iface != "" {
		args = append(args, "ifname", n.iface)
	}
	_, err := n.run(ctx, "nmcli", args...)
	return err
}

func (n *NMCLI) Connected(ctx context.Context) (bool, error) {
	out, err := n.run(ctx, "nmcli", "-t", "-f", "STATE", "general")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(out)) == "connected", nil
}

// parseWifiList reads nmcli terse output, where ':' inside an SSID is
// escaped as "\:".
func parseWifiList(out string) []terminal.AccessPoint {
	var aps []terminal.AccessPoint
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		fields := splitTerse(line)
		if len(fields) != 2 || fields[0] == "" {
			continue
		}
		sig, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			continue
		}
		aps = append(aps, terminal.AccessPoint{SSID: fields[0], Signal: sig})
	}
	return aps
}

func splitTerse(line string) []string {
	var (
		fields []string
		cur    strings.Builder
	)
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '\\' && i+1 < len(line):
			i++
			cur.WriteByte(line[i])
		case c == ':':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(fields, cur.String())
}
