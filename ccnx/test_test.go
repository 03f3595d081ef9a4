package ccnx_test

import (
	"github.com/parc-ccnx-archive/Libccnx-portal/core/testenv"
)

var (
	makeAR       = testenv.MakeAR
	bytesFromHex = testenv.BytesFromHex
	bytesEqual   = testenv.BytesEqual
)
