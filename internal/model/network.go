package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Link pairs a local network interface with the monitor instance watching it
type Link struct {
	Name      string `json:"name"`
	Interface string `json:"interface"`
	Port      int    `json:"port"`
}

func (l Link) String() string {
	return fmt.Sprintf("%s=%s:%d", l.Name, l.Interface, l.Port)
}

// ParseLinks parses "lan1=enp3s0:5554,wan1=enp1s0:5555"
func ParseLinks(s string) ([]Link, error) {
	var links []Link
	seen := make(map[string]bool)
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		name, rest, ok := strings.Cut(item, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid link %q: expected name=interface:port", item)
		}
		iface, portStr, ok := strings.Cut(rest, ":")
		if !ok || iface == "" {
			return nil, fmt.Errorf("invalid link %q: expected name=interface:port", item)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid link %q: bad port %q", item, portStr)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate link name %q", name)
		}
		seen[name] = true

		links = append(links, Link{Name: name, Interface: iface, Port: port})
	}
	return links, nil
}

// FindLink returns the link with the given name
func FindLink(links []Link, name string) (Link, bool) {
	for _, l := range links {
		if l.Name == name {
			return l, true
		}
	}
	return Link{}, false
}
