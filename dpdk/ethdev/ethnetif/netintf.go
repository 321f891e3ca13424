//go:build linux

package ethnetif

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/safchain/ethtool"
	"github.com/vishvananda/netlink"
	"go.uber.org/zap"

	"github.com/usnistgov/pktfwd/core/pciaddr"
	"github.com/usnistgov/pktfwd/dpdk/eal"
)

var (
	ethtoolOnce sync.Once
	etht        *ethtool.Ethtool
)

func getEthtool() *ethtool.Ethtool {
	ethtoolOnce.Do(func() {
		var e error
		if etht, e = ethtool.NewEthtool(); e != nil {
			logger.Warn("ethtool.NewEthtool error", zap.Error(e))
		}
	})
	return etht
}

// NetIntf controls a network interface via netlink and ethtool.
type NetIntf struct {
	*netlink.LinkAttrs
	Link   netlink.Link
	logger *zap.Logger

	broughtUp      bool
	enabledPromisc bool
}

func (n *NetIntf) save(link netlink.Link) {
	n.Link = link
	n.LinkAttrs = link.Attrs()
	n.logger = logger.With(
		zap.Int("ifindex", n.Index),
		zap.String("ifname", n.Name),
	)
}

// Refresh refreshes netlink information stored in this struct.
func (n *NetIntf) Refresh() {
	link, e := netlink.LinkByIndex(n.Index)
	if e != nil {
		n.logger.Warn("refresh error", zap.Error(e))
		return
	}
	n.save(link)
}

// EnsureLinkUp brings up the link.
func (n *NetIntf) EnsureLinkUp() error {
	if n.Flags&net.FlagUp != 0 {
		return nil
	}
	if e := netlink.LinkSetUp(n.Link); e != nil {
		n.logger.Error("netlink.LinkSetUp error", zap.Error(e))
		return fmt.Errorf("netlink.LinkSetUp(%s): %w", n.Name, e)
	}
	n.logger.Info("brought up the interface")
	n.broughtUp = true
	n.Refresh()
	return nil
}

// EnablePromisc enables promiscuous mode.
func (n *NetIntf) EnablePromisc() error {
	if n.Promisc != 0 {
		return nil
	}
	if e := netlink.SetPromiscOn(n.Link); e != nil {
		return fmt.Errorf("netlink.SetPromiscOn(%s): %w", n.Name, e)
	}
	n.enabledPromisc = true
	n.Refresh()
	return nil
}

// Restore reverts link changes made by EnsureLinkUp and EnablePromisc.
func (n *NetIntf) Restore() {
	if n.enabledPromisc {
		if e := netlink.SetPromiscOff(n.Link); e != nil {
			n.logger.Warn("netlink.SetPromiscOff error", zap.Error(e))
		}
		n.enabledPromisc = false
	}
	if n.broughtUp {
		if e := netlink.LinkSetDown(n.Link); e != nil {
			n.logger.Warn("netlink.LinkSetDown error", zap.Error(e))
		}
		n.broughtUp = false
	}
}

// DriverInfo determines kernel driver name and bus address.
func (n NetIntf) DriverInfo() (driver, busInfo string, e error) {
	etht := getEthtool()
	if etht == nil {
		return "", "", fmt.Errorf("ethtool unavailable")
	}
	if driver, e = etht.DriverName(n.Name); e != nil {
		return "", "", e
	}
	busInfo, _ = etht.BusInfo(n.Name)
	return driver, busInfo, nil
}

// NumaSocket determines the NUMA socket of a physical network interface.
func (n NetIntf) NumaSocket() (socket eal.NumaSocket) {
	body, e := os.ReadFile(filepath.Join("/sys/class/net", n.Name, "device/numa_node"))
	if e != nil {
		return
	}

	i, e := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 8)
	if e != nil {
		return
	}
	return eal.NumaSocketFromID(int(i))
}

func (n *NetIntf) logInfo() {
	fields := []zap.Field{
		zap.Stringer("mac", n.HardwareAddr),
		zap.Int("mtu", n.MTU),
		zap.Stringer("numa", n.NumaSocket()),
	}
	if driver, busInfo, e := n.DriverInfo(); e == nil {
		fields = append(fields, zap.String("driver", driver))
		if addr, e := pciaddr.Parse(busInfo); e == nil {
			fields = append(fields, zap.Stringer("pci", addr))
		} else if busInfo != "" {
			fields = append(fields, zap.String("bus", busInfo))
		}
	}
	if etht := getEthtool(); etht != nil {
		if ch, e := etht.GetChannels(n.Name); e == nil {
			fields = append(fields, zap.Uint32("rx-channels", ch.RxCount), zap.Uint32("combined-channels", ch.CombinedCount))
		}
	}
	n.logger.Info("network interface found", fields...)
}

// NetIntfByName retrieves a network interface by name.
func NetIntfByName(ifname string) (n *NetIntf, e error) {
	link, e := netlink.LinkByName(ifname)
	if e != nil {
		return nil, fmt.Errorf("netlink.LinkByName(%s): %w", ifname, e)
	}

	n = &NetIntf{}
	n.save(link)
	return n, nil
}
