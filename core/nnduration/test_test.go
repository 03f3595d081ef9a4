package nnduration_test

import (
	"github.com/parc-ccnx-archive/Libccnx-portal/core/testenv"
)

var (
	makeAR   = testenv.MakeAR
	fromJSON = testenv.FromJSON
	toJSON   = testenv.ToJSON
)
