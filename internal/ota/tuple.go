// Package ota carries the device-facing protocol boundary: the event
// vocabulary exchanged with the OTA layer, the abort-reason
// translation into PAP codes, the well-known push ports, and the
// driver that forwards push requests to the session services.
package ota

const (
	// Well-known WAP push ports.
	ConnectedCliPort       = 9201
	ConnectedServPort      = 9201
	ConnectionlessPushPort = 2948
	ConnectionlessServPort = 9200
)

// AddrTuple names one peer pair: the client's address and port and the
// gateway's own. It is a value type; handing a tuple across a
// component boundary copies it, so either side can drop its copy
// independently.
type AddrTuple struct {
	RemoteAddress string
	RemotePort    int
	LocalAddress  string
	LocalPort     int
}

// NewAddrTuple builds a tuple for a client address. The local address
// mirrors the wildcard the datagram layer binds to.
func NewAddrTuple(remoteAddress string, remotePort, localPort int) AddrTuple {
	return AddrTuple{
		RemoteAddress: remoteAddress,
		RemotePort:    remotePort,
		LocalAddress:  "0.0.0.0",
		LocalPort:     localPort,
	}
}

// WithRemotePort gives a copy of the tuple with the client port
// rewritten. Session requests go to the connectionless push port even
// when the session itself is connection-oriented.
func (t AddrTuple) WithRemotePort(port int) AddrTuple {
	t.RemotePort = port
	return t
}
