package sockettransport

import (
	"errors"
	"net"
)

var errNoRedial = errors.New("socket cannot be redialed")

type impl interface {
	// Dial the socket.
	Dial(network, local, remote string) (net.Conn, error)

	// Redial the socket.
	Redial(oldConn net.Conn) (net.Conn, error)

	// Receive packets on the socket and pass them to tr.post.
	// Returns when a socket error occurs.
	RxLoop(tr *transport) error
}

var implByNetwork = make(map[string]impl)

// noLocalAddrDialer dials with only remote addr.
type noLocalAddrDialer struct{}

func (noLocalAddrDialer) Dial(network, local, remote string) (net.Conn, error) {
	return net.Dial(network, remote)
}

// localAddrRedialer redials reusing local addr.
type localAddrRedialer struct{}

func (localAddrRedialer) Redial(oldConn net.Conn) (net.Conn, error) {
	local, remote := oldConn.LocalAddr(), oldConn.RemoteAddr()
	oldConn.Close()
	dialer := net.Dialer{LocalAddr: local}
	return dialer.Dial(remote.Network(), remote.String())
}

// noLocalAddrRedialer redials with only remote addr.
type noLocalAddrRedialer struct{}

func (noLocalAddrRedialer) Redial(oldConn net.Conn) (net.Conn, error) {
	remote := oldConn.RemoteAddr()
	oldConn.Close()
	return net.Dial(remote.Network(), remote.String())
}

// nopRedialer keeps using the same socket.
type nopRedialer struct{}

func (nopRedialer) Redial(oldConn net.Conn) (net.Conn, error) {
	return oldConn, nil
}

// noRedialer refuses to redial.
type noRedialer struct{}

func (noRedialer) Redial(oldConn net.Conn) (net.Conn, error) {
	oldConn.Close()
	return nil, errNoRedial
}
