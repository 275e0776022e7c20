// Package ports picks TCP ports for locally started servers.
package ports

import (
	"fmt"
	"net"
)

// FindFreePort asks the kernel for an unused loopback port.
func FindFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("listen: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// Resolve returns port unchanged, or a free port when port is 0.
func Resolve(port int) (int, error) {
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("port out of range: %d", port)
	}
	if port != 0 {
		return port, nil
	}
	return FindFreePort()
}
