package model

// UnknownName is reported for devices without a matching DHCP lease
const UnknownName = "Unknown"

// DeviceRecord is one host row from the monitor's host table
type DeviceRecord struct {
	IP         string `json:"ip"`
	MAC        string `json:"mac"`
	Name       string `json:"name"`
	BytesIn    int64  `json:"in"`
	BytesOut   int64  `json:"out"`
	BytesTotal int64  `json:"total"` // monitor-reported, not recomputed from In+Out
	LastSeen   string `json:"last_seen"`
}

// PortUsage is one row of a per-host TCP or UDP port table
type PortUsage struct {
	Port       string `json:"port"`
	Service    string `json:"service"`
	BytesIn    int64  `json:"in"`
	BytesOut   int64  `json:"out"`
	BytesTotal int64  `json:"total"`
	Syns       string `json:"syns,omitempty"` // TCP only
}

// ProtocolUsage is one row of a per-host IP protocol table
type ProtocolUsage struct {
	Number     string `json:"protocol_number"`
	Name       string `json:"protocol_name"`
	BytesIn    int64  `json:"in"`
	BytesOut   int64  `json:"out"`
	BytesTotal int64  `json:"total"`
}

// DeviceDetail is a snapshot of a device record enriched with its port and
// protocol breakdown
type DeviceDetail struct {
	DeviceRecord
	Timestamp string          `json:"timestamp"`
	TCPLocal  []PortUsage     `json:"tcp_local"`
	TCPRemote []PortUsage     `json:"tcp_remote"`
	UDPLocal  []PortUsage     `json:"udp_local"`
	UDPRemote []PortUsage     `json:"udp_remote"`
	Protocols []ProtocolUsage `json:"ip_protocols"`
}

// DetailFailure records a device whose detail page could not be used
type DetailFailure struct {
	IP    string `json:"ip"`
	Error string `json:"error"`
}

// DetailBatch is the result of enriching a list of devices with detail pages
type DetailBatch struct {
	Devices  []DeviceDetail  `json:"data"`
	Failures []DetailFailure `json:"failures,omitempty"`
}
