package connectivity

import (
	"context"
	"slices"

	psnet "github.com/shirou/gopsutil/v3/net"
	"go.uber.org/zap"
)

// NetInfo reports whether the device currently has network connectivity.
type NetInfo interface {
	Online(ctx context.Context) bool
}

// NetInfoFunc adapts a function to NetInfo.
type NetInfoFunc func(ctx context.Context) bool

func (f NetInfoFunc) Online(ctx context.Context) bool { return f(ctx) }

// AlwaysOnline never blocks requests.
var AlwaysOnline NetInfo = NetInfoFunc(func(context.Context) bool { return true })

// InterfaceNetInfo treats the device as online when any non-loopback
// interface is up and has an address.
type InterfaceNetInfo struct {
	list func(ctx context.Context) ([]psnet.InterfaceStat, error)
	log  *zap.Logger
}

// NewInterfaceNetInfo reads interfaces through gopsutil.
func NewInterfaceNetInfo(log *zap.Logger) *InterfaceNetInfo {
	if log == nil {
		log = zap.NewNop()
	}
	return &InterfaceNetInfo{
		list: func(ctx context.Context) ([]psnet.InterfaceStat, error) {
			return psnet.InterfacesWithContext(ctx)
		},
		log: log,
	}
}

// Online implements NetInfo. When interfaces cannot be listed it reports
// online and lets the request itself fail.
func (n *InterfaceNetInfo) Online(ctx context.Context) bool {
	stats, err := n.list(ctx)
	if err != nil {
		n.log.Debug("list interfaces", zap.Error(err))
		return true
	}
	for _, st := range stats {
		if slices.Contains(st.Flags, "loopback") || !slices.Contains(st.Flags, "up") {
			continue
		}
		if len(st.Addrs) > 0 {
			return true
		}
	}
	return false
}
