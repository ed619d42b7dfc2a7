package lease

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleLeases = `1700000000 aa:bb:cc:dd:ee:ff 10.0.0.5 printer 01:aa:bb:cc:dd:ee:ff
1700000100 11:22:33:44:55:66 10.0.0.6 laptop *
broken line
0 AA:BB:CC:DD:EE:FF 10.0.0.7 printer-dup *
`

func writeLeases(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dnsmasq.leases")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing lease file: %v", err)
	}
	return path
}

func TestResolveName(t *testing.T) {
	table, err := Load(writeLeases(t, sampleLeases))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name string
		ip   string
		mac  string
		want string
	}{
		{"exact", "10.0.0.5", "aa:bb:cc:dd:ee:ff", "printer"},
		{"uppercase mac", "10.0.0.5", "AA:BB:CC:DD:EE:FF", "printer"},
		{"uppercase mac in file", "10.0.0.7", "aa:bb:cc:dd:ee:ff", "printer-dup"},
		{"ip mismatch", "10.0.0.99", "aa:bb:cc:dd:ee:ff", "Unknown"},
		{"mac mismatch", "10.0.0.5", "11:22:33:44:55:66", "Unknown"},
		{"ip prefix is not a match", "10.0.0.", "aa:bb:cc:dd:ee:ff", "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.ResolveName(tt.ip, tt.mac); got != tt.want {
				t.Errorf("ResolveName(%q, %q) = %q, want %q", tt.ip, tt.mac, got, tt.want)
			}
		})
	}
}

func TestLoadSkipsShortRecords(t *testing.T) {
	table, err := Load(writeLeases(t, sampleLeases))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	entries := table.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 leases, got %d", len(entries))
	}
	if entries[0].Expires.Unix() != 1700000000 {
		t.Errorf("expiry = %v", entries[0].Expires)
	}
	if !entries[2].Expires.IsZero() {
		t.Errorf("infinite lease should have zero expiry, got %v", entries[2].Expires)
	}
}

func TestMissingLeaseFile(t *testing.T) {
	table, err := FileSource{Path: filepath.Join(t.TempDir(), "missing")}.Load()
	if !errors.Is(err, ErrLeaseFileUnavailable) {
		t.Fatalf("expected ErrLeaseFileUnavailable, got %v", err)
	}
	// A nil table still answers lookups
	if got := table.ResolveName("10.0.0.5", "aa:bb:cc:dd:ee:ff"); got != "Unknown" {
		t.Errorf("nil table resolved %q", got)
	}
	if len(table.Entries()) != 0 {
		t.Error("nil table should have no entries")
	}
}
