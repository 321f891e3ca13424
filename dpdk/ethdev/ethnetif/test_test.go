package ethnetif_test

import (
	"github.com/usnistgov/pktfwd/core/testenv"
)

var makeAR = testenv.MakeAR
