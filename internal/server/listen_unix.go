//go:build unix

package server

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// listenControl はリスニングソケットにSO_REUSEADDRを設定する
var listenControl = func(network, address string, c syscall.RawConn) error {
	var serr error
	err := c.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return serr
}
