package ccnx

import (
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/an"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/tlv"
)

// ControlKind indicates the category of a control message.
type ControlKind string

// ControlKind values.
const (
	ControlRequest      ControlKind = "CPI_REQUEST"
	ControlAck          ControlKind = "CPI_ACK"
	ControlNotification ControlKind = "CPI_NOTIFICATION"
)

var lastSequence atomic.Uint64

// NextSequence returns a process-wide unique control sequence number.
func NextSequence() uint64 {
	return lastSequence.Add(1)
}

// Control represents a control plane interface (CPI) message exchanged with the local forwarder.
// It is carried as a JSON document.
type Control struct {
	Kind ControlKind
	Seq  uint64

	// Op is the requested operation, such as an.CpiOpFlush.
	// In an acknowledgement, it repeats the operation of the acknowledged request.
	Op string
	// Prefix is the route prefix of REGISTER and UNREGISTER operations.
	Prefix Name

	// OriginalSeq is the sequence number of the acknowledged request.
	OriginalSeq uint64
	// Return is an.CpiReturnAck or an.CpiReturnNack.
	Return string

	// Status is the connection status of a notification.
	Status string
}

// NewFlushRequest creates a flush request.
func NewFlushRequest() *Control {
	return &Control{
		Kind: ControlRequest,
		Seq:  NextSequence(),
		Op:   an.CpiOpFlush,
	}
}

// NewAddRouteToSelfRequest creates a request that routes a prefix to the requesting connection.
func NewAddRouteToSelfRequest(prefix Name) *Control {
	return &Control{
		Kind:   ControlRequest,
		Seq:    NextSequence(),
		Op:     an.CpiOpRegister,
		Prefix: prefix,
	}
}

// NewRemoveRouteToSelfRequest creates a request that removes a route added by NewAddRouteToSelfRequest.
func NewRemoveRouteToSelfRequest(prefix Name) *Control {
	return &Control{
		Kind:   ControlRequest,
		Seq:    NextSequence(),
		Op:     an.CpiOpUnregister,
		Prefix: prefix,
	}
}

func newResponse(req *Control, ret string) *Control {
	return &Control{
		Kind:        ControlAck,
		Seq:         NextSequence(),
		Op:          req.Op,
		Prefix:      req.Prefix,
		OriginalSeq: req.Seq,
		Return:      ret,
	}
}

// NewAck creates a positive acknowledgement of a request.
func NewAck(req *Control) *Control {
	return newResponse(req, an.CpiReturnAck)
}

// NewNack creates a negative acknowledgement of a request.
func NewNack(req *Control) *Control {
	return newResponse(req, an.CpiReturnNack)
}

// NewConnectionNotification creates a connection status notification.
func NewConnectionNotification(status string) *Control {
	return &Control{
		Kind:   ControlNotification,
		Seq:    NextSequence(),
		Op:     an.CpiOpConnection,
		Status: status,
	}
}

// NewConnectionOpenNotification creates a notification that the connection has been opened.
func NewConnectionOpenNotification() *Control {
	return NewConnectionNotification(an.CpiStatusOpen)
}

// ToMessage wraps this Control as a Message.
func (ctrl *Control) ToMessage() *Message {
	return &Message{Control: ctrl}
}

// IsAck determines whether this is a positive acknowledgement.
func (ctrl Control) IsAck() bool {
	return ctrl.Kind == ControlAck && ctrl.Return == an.CpiReturnAck
}

// AckOriginalSequence returns the sequence number of the request being acknowledged.
// ok is false if this is not an acknowledgement.
func (ctrl Control) AckOriginalSequence() (seq uint64, ok bool) {
	if ctrl.Kind != ControlAck {
		return 0, false
	}
	return ctrl.OriginalSeq, true
}

// IsNotification determines whether this is a notification.
func (ctrl Control) IsNotification() bool {
	return ctrl.Kind == ControlNotification
}

// IsConnectionOpen determines whether this is a connection open notification.
func (ctrl Control) IsConnectionOpen() bool {
	return ctrl.IsNotification() && ctrl.Op == an.CpiOpConnection && ctrl.Status == an.CpiStatusOpen
}

func (ctrl Control) String() string {
	switch ctrl.Kind {
	case ControlAck:
		return fmt.Sprintf("%s %s seq=%d orig=%d %s", ctrl.Kind, ctrl.Op, ctrl.Seq, ctrl.OriginalSeq, ctrl.Return)
	case ControlNotification:
		return fmt.Sprintf("%s %s %s", ctrl.Kind, ctrl.Op, ctrl.Status)
	}
	if len(ctrl.Prefix) > 0 {
		return fmt.Sprintf("%s %s seq=%d %s", ctrl.Kind, ctrl.Op, ctrl.Seq, ctrl.Prefix)
	}
	return fmt.Sprintf("%s %s seq=%d", ctrl.Kind, ctrl.Op, ctrl.Seq)
}

type cpiRoute struct {
	Prefix Name `json:"PREFIX"`
}

type cpiConnection struct {
	Status string `json:"STATUS"`
}

type cpiBody struct {
	Sequence         uint64         `json:"SEQUENCE"`
	OriginalSequence uint64         `json:"ORIGINAL_SEQUENCE,omitempty"`
	Return           string         `json:"RETURN,omitempty"`
	Flush            *struct{}      `json:"FLUSH,omitempty"`
	Register         *cpiRoute      `json:"REGISTER,omitempty"`
	Unregister       *cpiRoute      `json:"UNREGISTER,omitempty"`
	Connection       *cpiConnection `json:"CONNECTION,omitempty"`
}

// MarshalJSON implements json.Marshaler interface.
func (ctrl Control) MarshalJSON() ([]byte, error) {
	body := cpiBody{
		Sequence:         ctrl.Seq,
		OriginalSequence: ctrl.OriginalSeq,
		Return:           ctrl.Return,
	}
	switch ctrl.Op {
	case an.CpiOpFlush:
		body.Flush = &struct{}{}
	case an.CpiOpRegister:
		body.Register = &cpiRoute{Prefix: ctrl.Prefix}
	case an.CpiOpUnregister:
		body.Unregister = &cpiRoute{Prefix: ctrl.Prefix}
	case an.CpiOpConnection:
		body.Connection = &cpiConnection{Status: ctrl.Status}
	default:
		return nil, fmt.Errorf("%w: unknown operation %q", ErrControl, ctrl.Op)
	}

	switch ctrl.Kind {
	case ControlRequest, ControlAck, ControlNotification:
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrControl, ctrl.Kind)
	}
	return json.Marshal(map[ControlKind]cpiBody{ctrl.Kind: body})
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (ctrl *Control) UnmarshalJSON(j []byte) error {
	var m map[ControlKind]cpiBody
	if e := json.Unmarshal(j, &m); e != nil {
		return e
	}
	if len(m) != 1 {
		return ErrControl
	}

	*ctrl = Control{}
	for kind, body := range m {
		ctrl.Kind = kind
		ctrl.Seq = body.Sequence
		ctrl.OriginalSeq = body.OriginalSequence
		ctrl.Return = body.Return
		switch {
		case body.Flush != nil:
			ctrl.Op = an.CpiOpFlush
		case body.Register != nil:
			ctrl.Op, ctrl.Prefix = an.CpiOpRegister, body.Register.Prefix
		case body.Unregister != nil:
			ctrl.Op, ctrl.Prefix = an.CpiOpUnregister, body.Unregister.Prefix
		case body.Connection != nil:
			ctrl.Op, ctrl.Status = an.CpiOpConnection, body.Connection.Status
		default:
			return fmt.Errorf("%w: missing operation", ErrControl)
		}
	}

	switch ctrl.Kind {
	case ControlRequest, ControlAck, ControlNotification:
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrControl, ctrl.Kind)
	}
}

// Field implements tlv.Fielder interface.
func (ctrl Control) Field() tlv.Field {
	j, e := json.Marshal(ctrl)
	if e != nil {
		return tlv.FieldError(e)
	}
	return tlv.TLVBytes(an.TtControl, j)
}
