package ota

import (
	"net"
	"sync"

	"github.com/open-wap/go-push-gateway/internal/logger"
)

// BearerboxAddress holds the gateway's own contact address, used when
// building the contact-point payload of session-request pushes. It is
// written from the configuration path while the driver may be reading
// it, so it carries its own lock; registry serialization does not
// cover it.
type BearerboxAddress struct {
	mu      sync.Mutex
	address string
}

func NewBearerboxAddress() *BearerboxAddress {
	return &BearerboxAddress{}
}

// Set stores the contact address. A loopback placeholder is resolved
// to a routable interface address, since the clients must be able to
// reach the gateway through it.
func (b *BearerboxAddress) Set(address string) {
	resolved := resolveLoopback(address)
	b.mu.Lock()
	b.address = resolved
	b.mu.Unlock()
	logger.DebugF("Bearerbox contact address set to %s", resolved)
}

func (b *BearerboxAddress) Get() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.address
}

func resolveLoopback(address string) string {
	ip := net.ParseIP(address)
	isLoopback := (ip != nil && ip.IsLoopback()) || address == "localhost"
	if !isLoopback {
		return address
	}

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		logger.WarnF("Unable to list interface addresses, keeping %s: %v", address, err)
		return address
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil {
			return v4.String()
		}
	}
	logger.WarnF("No routable interface address found, keeping %s", address)
	return address
}
