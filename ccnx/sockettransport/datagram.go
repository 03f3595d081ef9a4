package sockettransport

import (
	"net"

	"github.com/gogf/greuse"
)

// datagramImpl receives one packet per datagram.
type datagramImpl struct {
	nopRedialer
}

func (datagramImpl) RxLoop(tr *transport) error {
	for {
		buffer := make([]byte, tr.cfg.RxBufferLength)
		n, e := tr.Conn().Read(buffer)
		if e != nil {
			return e
		}
		if !tr.post(buffer[:n]) {
			return nil
		}
	}
}

type udpImpl struct {
	datagramImpl
}

func (udpImpl) Dial(network, local, remote string) (net.Conn, error) {
	return greuse.Dial(network, local, remote)
}

func init() {
	implByNetwork["udp"] = udpImpl{}
	implByNetwork["udp4"] = udpImpl{}
	implByNetwork["udp6"] = udpImpl{}
}
