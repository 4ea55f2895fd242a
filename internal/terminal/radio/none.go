package radio

import (
	"context"

	"github.com/rollcall-dev/rollcall/internal/terminal"
)

// None is for wired terminals and development machines: the link is always
// up and there is nothing to join.
type None struct{}

func (None) Scan(context.Context) ([]terminal.AccessPoint, error) { return nil, nil }
func (None) Join(context.Context, string, string) error           { return nil }
func (None) Connected(context.Context) (bool, error)              { return true, nil }

// New returns the driver named by driver ("nmcli" or "none").
func New(driver, iface string) terminal.Radio {
	if driver == "none" {
		return None{}
	}
	return NewNMCLI(iface)
}
