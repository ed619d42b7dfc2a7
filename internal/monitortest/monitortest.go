// Package monitortest provides a fake traffic monitor and fake interfaces for
// tests of the packages that sit on top of the scraper.
package monitortest

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
)

// Subnet the fake monitor reports on
const (
	LocalIP = "192.168.1.1"
	Prefix  = 24
)

const HostsPage = `<html><body><table>
<tr><th>IP</th><th>Hostname</th><th>MAC</th><th>In</th><th>Out</th><th>Total</th><th>Last seen</th></tr>
<tr class="alt1"><td><a href="./192.168.1.20/">192.168.1.20</a></td><td></td><td><tt>aa:bb:cc:00:00:20</tt></td>
<td>1,024</td><td>2,048</td><td>3,072</td><td>5 secs</td></tr>
<tr class="alt2"><td><a href="./192.168.1.30/">192.168.1.30</a></td><td></td><td><tt>aa:bb:cc:00:00:30</tt></td>
<td>9,000,000</td><td>10</td><td>9,000,010</td><td>1 min</td></tr>
<tr class="alt1"><td><a href="./192.168.1.255/">192.168.1.255</a></td><td></td><td><tt>ff:ff:ff:ff:ff:ff</tt></td>
<td>100</td><td>0</td><td>100</td><td>2 mins</td></tr>
<tr class="alt2"><td><a href="./192.168.1.1/">192.168.1.1</a></td><td></td><td><tt>aa:bb:cc:00:00:01</tt></td>
<td>5,000</td><td>5,000</td><td>10,000</td><td>1 sec</td></tr>
<tr class="alt1"><td><a href="./8.8.8.8/">8.8.8.8</a></td><td></td><td><tt>aa:bb:cc:00:00:01</tt></td>
<td>700</td><td>800</td><td>1,500</td><td>3 secs</td></tr>
</table></body></html>`

const DetailPage = `<html><body>
<h3>TCP ports on this host</h3>
<table>
<tr><th>Port</th><th>Service</th><th>In</th><th>Out</th><th>Total</th><th>SYNs</th></tr>
<tr><td>22</td><td>ssh</td><td>1,200</td><td>300</td><td>1,500</td><td>4</td></tr>
</table>
<h3>TCP ports on remote hosts</h3>
<table><tr><th>Port</th><th>Service</th><th>In</th><th>Out</th><th>Total</th><th>SYNs</th></tr></table>
<h3>UDP ports on this host</h3>
<table><tr><th>Port</th><th>Service</th><th>In</th><th>Out</th><th>Total</th></tr></table>
<h3>UDP ports on remote hosts</h3>
<table><tr><th>Port</th><th>Service</th><th>In</th><th>Out</th><th>Total</th></tr></table>
<h3>IP protocols</h3>
<table>
<tr><th>#</th><th>Protocol</th><th>In</th><th>Out</th><th>Total</th></tr>
<tr><td>6</td><td>tcp</td><td>1,200</td><td>300</td><td>1,500</td></tr>
</table>
</body></html>`

const GraphsDoc = `<graphs>
<minutes><e p="1" i="100" o="50"/><e p="2" i="200" o="0"/></minutes>
<hours><e p="23" i="1000" o="10"/><e p="0" i="2000" o="20"/></hours>
<days></days>
</graphs>`

// Monitor is a fake darkstat instance. The detail page of 192.168.1.30
// always fails with a server error.
type Monitor struct {
	Server *httptest.Server
	Host   string
	Port   int

	hits atomic.Int64
}

// NewMonitor starts a fake monitor that is shut down with the test
func NewMonitor(t *testing.T) *Monitor {
	t.Helper()

	m := &Monitor{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /hosts/", func(w http.ResponseWriter, r *http.Request) {
		m.hits.Add(1)
		w.Write([]byte(HostsPage))
	})
	mux.HandleFunc("GET /hosts/{ip}/", func(w http.ResponseWriter, r *http.Request) {
		m.hits.Add(1)
		if r.PathValue("ip") == "192.168.1.30" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(DetailPage))
	})
	mux.HandleFunc("GET /graphs.xml", func(w http.ResponseWriter, r *http.Request) {
		m.hits.Add(1)
		w.Write([]byte(GraphsDoc))
	})

	m.Server = httptest.NewServer(mux)
	t.Cleanup(m.Server.Close)

	u, err := url.Parse(m.Server.URL)
	if err != nil {
		t.Fatalf("parsing monitor url: %v", err)
	}
	m.Host = u.Hostname()
	m.Port, _ = strconv.Atoi(u.Port())
	return m
}

// Hits counts the requests the monitor has served
func (m *Monitor) Hits() int64 {
	return m.hits.Load()
}

// Interfaces is a fake interface source. Interfaces missing from Up are
// down; every up interface has LocalIP/Prefix.
type Interfaces struct {
	Up map[string]bool
}

func (f Interfaces) IsUp(name string) (bool, error) {
	return f.Up[name], nil
}

func (f Interfaces) IPv4(name string) (net.IP, int, error) {
	if !f.Up[name] {
		return nil, 0, errors.New("no address")
	}
	return net.ParseIP(LocalIP), Prefix, nil
}
