package darkstat

import (
	"net"
	"os"
	"strings"
	"testing"

	"github.com/martinsuchenak/lanwatch/internal/netctx"
)

type staticNames map[string]string

func (n staticNames) ResolveName(ip, mac string) string {
	if name, ok := n[ip+"|"+strings.ToLower(mac)]; ok {
		return name
	}
	return "Unknown"
}

func testSubnet(t *testing.T, ip string, prefix int) *netctx.Subnet {
	t.Helper()
	s, err := netctx.NewSubnet("eth0", net.ParseIP(ip), prefix)
	if err != nil {
		t.Fatalf("NewSubnet: %v", err)
	}
	return s
}

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	return string(data)
}

func TestParseDevices(t *testing.T) {
	names := staticNames{"192.168.1.20|aa:bb:cc:00:00:20": "laptop"}
	devices, err := ParseDevices(readFixture(t, "hosts.html"), testSubnet(t, "192.168.1.1", 24), names)
	if err != nil {
		t.Fatalf("ParseDevices: %v", err)
	}

	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d: %+v", len(devices), devices)
	}

	d := devices[0]
	if d.IP != "192.168.1.20" || d.MAC != "AA:BB:CC:00:00:20" || d.Name != "laptop" {
		t.Errorf("unexpected identity: %+v", d)
	}
	if d.BytesIn != 1024 || d.BytesOut != 2048 || d.BytesTotal != 3072 {
		t.Errorf("unexpected counters: %+v", d)
	}
	if d.LastSeen != "5 secs" {
		t.Errorf("last seen = %q", d.LastSeen)
	}

	d = devices[1]
	if d.IP != "192.168.1.30" || d.Name != "Unknown" {
		t.Errorf("unexpected second device: %+v", d)
	}
	if d.BytesIn != 9000000 || d.BytesTotal != 9000010 {
		t.Errorf("thousands separators not stripped: %+v", d)
	}
}

func TestParseDevicesNeverEmitsExcludedAddresses(t *testing.T) {
	for _, tc := range []struct {
		local  string
		prefix int
	}{
		{"192.168.1.1", 24},
		{"192.168.1.20", 24},
		{"192.168.1.30", 25},
		{"192.168.0.1", 16},
	} {
		subnet := testSubnet(t, tc.local, tc.prefix)
		devices, err := ParseDevices(readFixture(t, "hosts.html"), subnet, nil)
		if err != nil {
			t.Fatalf("ParseDevices: %v", err)
		}
		for _, d := range devices {
			if d.IP == subnet.NetworkAddress || d.IP == subnet.BroadcastAddress || d.IP == subnet.LocalIP {
				t.Errorf("%s/%d: excluded address %s emitted", tc.local, tc.prefix, d.IP)
			}
			if !subnet.Contains(d.IP) {
				t.Errorf("%s/%d: out-of-subnet address %s emitted", tc.local, tc.prefix, d.IP)
			}
		}
	}
}

func TestParseDevicesRoundTrip(t *testing.T) {
	html := `<table>
<tr class="alt1"><td><a href="./10.0.0.5/">10.0.0.5</a></td><td></td><td>aa:bb:cc:dd:ee:ff</td>
<td>1,000</td><td>2,000</td><td>3,500</td><td>now</td></tr>
<tr class="alt2"><td><a href="./10.0.0.255/">10.0.0.255</a></td><td></td><td>ff:ff:ff:ff:ff:ff</td>
<td>1</td><td>1</td><td>2</td><td>now</td></tr>
</table>`

	devices, err := ParseDevices(html, testSubnet(t, "10.0.0.1", 24), nil)
	if err != nil {
		t.Fatalf("ParseDevices: %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("expected exactly one device, got %d", len(devices))
	}
	// Total is taken from the monitor, not recomputed
	if devices[0].BytesTotal != 3500 {
		t.Errorf("total = %d, want 3500", devices[0].BytesTotal)
	}
	if devices[0].Name != "Unknown" {
		t.Errorf("name = %q", devices[0].Name)
	}
}

func TestParseDevicesEmptyPage(t *testing.T) {
	devices, err := ParseDevices("<html><body>no hosts</body></html>", testSubnet(t, "10.0.0.1", 24), nil)
	if err != nil {
		t.Fatalf("ParseDevices: %v", err)
	}
	if devices == nil || len(devices) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", devices)
	}
}
