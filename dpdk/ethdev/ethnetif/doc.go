// Package ethnetif provides Ethernet ports backed by kernel network interfaces.
//
// Packets are exchanged through AF_PACKET sockets.
// Links are controlled via netlink, and driver information is gathered via ethtool.
package ethnetif

import (
	"github.com/usnistgov/pktfwd/core/logging"
)

var logger = logging.New("ethnetif")
