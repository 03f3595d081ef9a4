package an

// Control plane interface (CPI) operations.
const (
	CpiOpFlush      = "FLUSH"
	CpiOpRegister   = "REGISTER"
	CpiOpUnregister = "UNREGISTER"
	CpiOpConnection = "CONNECTION"
)

// CPI acknowledgement return values.
const (
	CpiReturnAck  = "ACK"
	CpiReturnNack = "NACK"
)

// CPI connection notification status values.
const (
	CpiStatusOpen     = "CONNECTION_OPEN"
	CpiStatusClosed   = "CONNECTION_CLOSED"
	CpiStatusFlowCtrl = "FLOW_CONTROL"
)
