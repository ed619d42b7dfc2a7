package netctx

import (
	"errors"
	"fmt"
	"net"

	"github.com/c-robinson/iplib"
	"github.com/martinsuchenak/lanwatch/internal/log"
)

var (
	ErrInterfaceDown       = errors.New("interface is down")
	ErrAddressLookupFailed = errors.New("address lookup failed")
)

// InterfaceSource answers questions about local network interfaces
type InterfaceSource interface {
	IsUp(name string) (bool, error)
	IPv4(name string) (net.IP, int, error)
}

// Resolver derives the subnet context of a monitored interface
type Resolver struct {
	source InterfaceSource
}

// NewResolver creates a resolver backed by source
func NewResolver(source InterfaceSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns the subnet an interface sits on. It fails with
// ErrInterfaceDown when the interface is not up and ErrAddressLookupFailed
// when its IPv4 address cannot be determined.
func (r *Resolver) Resolve(name string) (*Subnet, error) {
	up, err := r.source.IsUp(name)
	if err != nil {
		log.Debug("Interface state query failed", "interface", name, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrInterfaceDown, name)
	}
	if !up {
		return nil, fmt.Errorf("%w: %s", ErrInterfaceDown, name)
	}

	ip, prefix, err := r.source.IPv4(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAddressLookupFailed, name, err)
	}

	subnet, err := NewSubnet(name, ip, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAddressLookupFailed, name, err)
	}

	log.Debug("Resolved subnet", "interface", name, "cidr", subnet.CIDR, "local_ip", subnet.LocalIP)
	return subnet, nil
}

// IsUp reports whether the interface is administratively up
func (r *Resolver) IsUp(name string) bool {
	up, err := r.source.IsUp(name)
	if err != nil {
		log.Debug("Interface state query failed", "interface", name, "error", err)
		return false
	}
	return up
}

// SystemInterfaces reads interface state from the operating system
type SystemInterfaces struct{}

func (SystemInterfaces) IsUp(name string) (bool, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return false, err
	}
	return iface.Flags&net.FlagUp != 0, nil
}

func (SystemInterfaces) IPv4(name string) (net.IP, int, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, 0, err
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return nil, 0, fmt.Errorf("listing addresses: %w", err)
	}

	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			ones, _ := ipnet.Mask.Size()
			return ip4, ones, nil
		}
	}
	return nil, 0, errors.New("no IPv4 address found on interface")
}

// Subnet is the addressing context of one interface for one polling cycle
type Subnet struct {
	Interface        string   `json:"interface"`
	LocalIP          string   `json:"local_ip"`
	PrefixLength     int      `json:"prefix_length"`
	CIDR             string   `json:"cidr"`
	NetworkAddress   string   `json:"network_address"`
	BroadcastAddress string   `json:"broadcast_address"`
	Excluded         []string `json:"excluded"`

	network iplib.Net4
}

// NewSubnet builds the context for a local address and prefix length. Host
// bits in ip are ignored when deriving the network.
func NewSubnet(iface string, ip net.IP, prefix int) (*Subnet, error) {
	ip4 := ip.To4()
	if ip4 == nil {
		return nil, fmt.Errorf("not an IPv4 address: %v", ip)
	}
	if prefix < 0 || prefix > 32 {
		return nil, fmt.Errorf("invalid prefix length %d", prefix)
	}

	network := iplib.NewNet4(ip4.Mask(net.CIDRMask(prefix, 32)), prefix)
	networkAddr := network.NetworkAddress().String()
	broadcastAddr := network.BroadcastAddress().String()

	return &Subnet{
		Interface:        iface,
		LocalIP:          ip4.String(),
		PrefixLength:     prefix,
		CIDR:             fmt.Sprintf("%s/%d", ip4, prefix),
		NetworkAddress:   networkAddr,
		BroadcastAddress: broadcastAddr,
		Excluded:         []string{networkAddr, broadcastAddr, ip4.String()},
		network:          network,
	}, nil
}

// IsExcluded reports whether ip is the network, broadcast or local address
func (s *Subnet) IsExcluded(ip string) bool {
	for _, excl := range s.Excluded {
		if excl == ip {
			return true
		}
	}
	return false
}

// Contains reports whether ip falls inside the subnet
func (s *Subnet) Contains(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.To4() == nil {
		return false
	}
	return s.network.Contains(parsed)
}
