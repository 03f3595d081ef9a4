package sockettransport

import (
	"errors"
	"fmt"
	"net"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/tlv"
)

// ErrPacketTooLarge indicates an incoming packet exceeds RxBufferLength.
var ErrPacketTooLarge = errors.New("packet exceeds RxBufferLength")

// streamImpl frames packets by the packet length in the fixed header.
type streamImpl struct{}

func (streamImpl) RxLoop(tr *transport) error {
	buffer := make([]byte, tr.cfg.RxBufferLength)
	nAvail := 0
	for {
		nRead, e := tr.Conn().Read(buffer[nAvail:])
		if e != nil {
			return e
		}
		nAvail += nRead

		// parse and post packets
		off := 0
		for {
			length, e := ccnx.PacketLength(buffer[off:nAvail])
			if errors.Is(e, tlv.ErrIncomplete) {
				break
			}
			if e != nil {
				return e
			}
			if length > len(buffer) {
				return fmt.Errorf("%w: %d", ErrPacketTooLarge, length)
			}
			if off+length > nAvail {
				break
			}
			if !tr.post(buffer[off : off+length : off+length]) {
				return net.ErrClosed
			}
			off += length
		}
		if off == 0 {
			continue
		}

		// copy remaining portion to a new buffer
		// don't reuse buffer because the packets passed to tr.rx are still referencing it
		remain := buffer[off:nAvail]
		buffer = make([]byte, tr.cfg.RxBufferLength)
		nAvail = copy(buffer, remain)
	}
}

type tcpImpl struct {
	streamImpl
	noLocalAddrDialer
	localAddrRedialer
}

type unixImpl struct {
	streamImpl
	noLocalAddrDialer
	noLocalAddrRedialer
}

type pipeImpl struct {
	streamImpl
	noRedialer
}

func (pipeImpl) Dial(network, local, remote string) (net.Conn, error) {
	return nil, fmt.Errorf("cannot dial %s", network)
}

func init() {
	var tcp tcpImpl
	implByNetwork["tcp"] = tcp
	implByNetwork["tcp4"] = tcp
	implByNetwork["tcp6"] = tcp
	implByNetwork["unix"] = unixImpl{}
	implByNetwork["pipe"] = pipeImpl{}
}
