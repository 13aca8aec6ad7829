package hal

import (
	"net"

	corehal "github.com/kilianp07/pillbox/core/hal"
)

// HostNetwork reports the host online when a non-loopback interface is up.
type HostNetwork struct {
	interfaces func() ([]net.Interface, error)
}

var _ corehal.NetworkMonitor = HostNetwork{}

// NewHostNetwork returns a monitor reading the host interfaces.
func NewHostNetwork() HostNetwork {
	return HostNetwork{interfaces: net.Interfaces}
}

func (h HostNetwork) Online() bool {
	list := h.interfaces
	if list == nil {
		list = net.Interfaces
	}
	ifs, err := list()
	if err != nil {
		return false
	}
	for _, i := range ifs {
		if i.Flags&net.FlagUp != 0 && i.Flags&net.FlagLoopback == 0 {
			return true
		}
	}
	return false
}
