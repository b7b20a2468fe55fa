//go:build !unix

package transport

import "net"

func newRawStream(net.Conn) (Stream, bool) { return nil, false }
