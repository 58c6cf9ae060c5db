package client

import (
	"context"
	"fmt"
	"strings"

	"network-ai-monitor/internal/model"

	"github.com/prometheus/procfs"
)

// NetDevCollector reads per-interface byte counters from /proc/net/dev.
type NetDevCollector struct {
	fs     procfs.FS
	ignore map[string]bool
}

// NewNetDevCollector opens the proc filesystem at procPath. Interfaces in ignore
// are skipped; the loopback interface is always skipped.
func NewNetDevCollector(procPath string, ignore []string) (*NetDevCollector, error) {
	if procPath == "" {
		procPath = procfs.DefaultMountPoint
	}
	fs, err := procfs.NewFS(procPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open procfs at %s: %v", procPath, err)
	}

	skip := map[string]bool{"lo": true}
	for _, name := range ignore {
		skip[strings.ToLower(strings.TrimSpace(name))] = true
	}

	return &NetDevCollector{
		fs:     fs,
		ignore: skip,
	}, nil
}

// ListInterfaces returns the current cumulative counters keyed by interface name.
func (c *NetDevCollector) ListInterfaces(ctx context.Context) (map[string]model.Counters, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	netDev, err := c.fs.NetDev()
	if err != nil {
		return nil, fmt.Errorf("%w: read net/dev: %v", model.ErrCollaboratorUnavailable, err)
	}

	out := make(map[string]model.Counters, len(netDev))
	for name, line := range netDev {
		if c.ignore[strings.ToLower(name)] {
			continue
		}
		out[name] = model.Counters{
			BytesReceived: line.RxBytes,
			BytesSent:     line.TxBytes,
		}
	}
	return out, nil
}
