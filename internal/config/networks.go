package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Networks is the ordered list of candidate access points the terminal may
// join, all sharing one password.  Order matters: candidates the radio
// cannot see are tried in this order.
type Networks struct {
	Password string   `yaml:"password"`
	Networks []string `yaml:"networks"`
}

var ErrNoNetworks = errors.New("no candidate networks configured")

// LoadNetworks reads path when it exists, otherwise falls back to
// ROLLCALL_WIFI_NETWORKS (comma separated) and ROLLCALL_WIFI_PASSWORD.
func LoadNetworks(path string) (Networks, error) {
	loadDotEnv()

	if path != "" {
		n, err := readNetworksFile(path)
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return Networks{}, err
		}
	}

	n := Networks{
		Password: os.Getenv(envPrefix + "_WIFI_PASSWORD"),
		Networks: splitCSV(os.Getenv(envPrefix + "_WIFI_NETWORKS")),
	}
	if len(n.Networks) == 0 {
		return Networks{}, ErrNoNetworks
	}
	return n, nil
}

func readNetworksFile(path string) (Networks, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Networks{}, err
	}
	var n Networks
	if err := yaml.Unmarshal(raw, &n); err != nil {
		return Networks{}, fmt.Errorf("parse %s: %w", path, err)
	}

	// Drop blanks and duplicates, keeping first-seen order.
	seen := make(map[string]struct{}, len(n.Networks))
	out := n.Networks[:0]
	for _, ssid := range n.Networks {
		ssid = strings.TrimSpace(ssid)
		if ssid == "" {
			continue
		}
		if _, dup := seen[ssid]; dup {
			continue
		}
		seen[ssid] = struct{}{}
		out = append(out, ssid)
	}
	n.Networks = out

	if len(n.Networks) == 0 {
		return Networks{}, fmt.Errorf("%s: %w", path, ErrNoNetworks)
	}
	return n, nil
}
