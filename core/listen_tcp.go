package core

import (
	"fmt"
	"net"
	"strconv"
)

// PortInUseError is returned by ListenTCP when the port is already bound.
type PortInUseError struct {
	Addr  string
	Cause error
}

func (e *PortInUseError) Error() string {
	return fmt.Sprintf("port %s is already in use; set PORT or --port to another value", e.Addr)
}

func (e *PortInUseError) Unwrap() error {
	return e.Cause
}

// ListenTCP opens the server listener on host:port. An occupied port yields a
// *PortInUseError.
func ListenTCP(host string, port int) (net.Listener, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	ln, err := net.Listen("tcp", addr)
	if err == nil {
		return ln, nil
	}
	if addrInUse(err) {
		return nil, &PortInUseError{Addr: addr, Cause: err}
	}
	return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
}
