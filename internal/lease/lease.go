package lease

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/martinsuchenak/lanwatch/internal/model"
)

var ErrLeaseFileUnavailable = errors.New("lease file unavailable")

// Lease is one dnsmasq lease record
type Lease struct {
	Expires time.Time `json:"expires"`
	MAC     string    `json:"mac"`
	IP      string    `json:"ip"`
	Name    string    `json:"name"`
}

// Table is an in-memory copy of the lease file
type Table struct {
	leases []Lease
}

// Load reads a dnsmasq lease file. Records with fewer than four fields are
// skipped.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLeaseFileUnavailable, err)
	}
	defer f.Close()

	table := &Table{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}

		entry := Lease{
			MAC:  strings.ToLower(fields[1]),
			IP:   fields[2],
			Name: fields[3],
		}
		if secs, err := strconv.ParseInt(fields[0], 10, 64); err == nil && secs > 0 {
			entry.Expires = time.Unix(secs, 0)
		}
		table.leases = append(table.leases, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLeaseFileUnavailable, err)
	}

	return table, nil
}

// ResolveName returns the name of the first lease matching ip exactly and mac
// case-insensitively, or "Unknown".
func (t *Table) ResolveName(ip, mac string) string {
	if t == nil {
		return model.UnknownName
	}

	mac = strings.ToLower(strings.TrimSpace(mac))
	for _, l := range t.leases {
		if l.IP == ip && l.MAC == mac {
			return l.Name
		}
	}
	return model.UnknownName
}

// Entries returns a copy of the leases in file order
func (t *Table) Entries() []Lease {
	if t == nil {
		return []Lease{}
	}
	out := make([]Lease, len(t.leases))
	copy(out, t.leases)
	return out
}

// FileSource loads the lease table from a fixed path on every call, so each
// polling cycle sees the current leases.
type FileSource struct {
	Path string
}

func (s FileSource) Load() (*Table, error) {
	return Load(s.Path)
}
