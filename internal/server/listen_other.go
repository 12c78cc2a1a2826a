//go:build !unix

package server

import "syscall"

var listenControl func(network, address string, c syscall.RawConn) error
