package l3_test

import (
	"github.com/parc-ccnx-archive/Libccnx-portal/core/testenv"
)

var makeAR = testenv.MakeAR
