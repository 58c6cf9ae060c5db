package client

import (
	"context"
	"fmt"
	"strings"

	"network-ai-monitor/internal/model"

	"github.com/vishvananda/netlink"
)

// NetlinkCollector reads per-interface byte counters over rtnetlink instead of
// parsing /proc, for hosts where /proc/net/dev is not mounted.
type NetlinkCollector struct {
	list   func() ([]netlink.Link, error)
	ignore map[string]bool
}

func NewNetlinkCollector(ignore []string) *NetlinkCollector {
	skip := map[string]bool{"lo": true}
	for _, name := range ignore {
		skip[strings.ToLower(strings.TrimSpace(name))] = true
	}
	return &NetlinkCollector{
		list:   netlink.LinkList,
		ignore: skip,
	}
}

func (c *NetlinkCollector) ListInterfaces(ctx context.Context) (map[string]model.Counters, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	links, err := c.list()
	if err != nil {
		return nil, fmt.Errorf("%w: netlink link list: %v", model.ErrCollaboratorUnavailable, err)
	}

	out := make(map[string]model.Counters, len(links))
	for _, link := range links {
		attrs := link.Attrs()
		if attrs == nil || c.ignore[strings.ToLower(attrs.Name)] {
			continue
		}
		// A dump without statistics must not reach the sampler as {0,0}: it would
		// move the baseline to zero and turn the next real dump into a spike.
		if attrs.Statistics == nil {
			continue
		}
		out[attrs.Name] = model.Counters{
			BytesReceived: attrs.Statistics.RxBytes,
			BytesSent:     attrs.Statistics.TxBytes,
		}
	}
	return out, nil
}
