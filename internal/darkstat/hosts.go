package darkstat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/martinsuchenak/lanwatch/internal/log"
	"github.com/martinsuchenak/lanwatch/internal/model"
	"github.com/martinsuchenak/lanwatch/internal/netctx"
)

var (
	rowClassPattern = regexp.MustCompile(`alt[12]`)
	ipv4Pattern     = regexp.MustCompile(`\d+\.\d+\.\d+\.\d+`)
)

// host table columns
const (
	colIP = iota
	colHostname
	colMAC
	colIn
	colOut
	colTotal
	colLastSeen
	hostColumns
)

// NameResolver maps an IP/MAC pair to a device name
type NameResolver interface {
	ResolveName(ip, mac string) string
}

// ParseDevices extracts device records from the host table. Rows for the
// network, broadcast and local addresses and rows outside the subnet are
// dropped, as are rows that do not have the expected shape.
func ParseDevices(html string, subnet *netctx.Subnet, names NameResolver) ([]model.DeviceRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing host table: %w", err)
	}

	devices := []model.DeviceRecord{}
	doc.Find("tr").FilterFunction(isDataRow).Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		link := cells.Eq(colIP).Find("a").First()
		if link.Length() == 0 {
			return
		}

		href, _ := link.Attr("href")
		ip := ipv4Pattern.FindString(href)
		if ip == "" {
			return
		}

		if subnet.IsExcluded(ip) {
			return
		}
		if !subnet.Contains(ip) {
			return
		}

		if cells.Length() < hostColumns {
			log.Debug("Skipping short host row", "ip", ip, "columns", cells.Length())
			return
		}

		device, err := parseHostRow(ip, cells, names)
		if err != nil {
			log.Debug("Skipping malformed host row", "ip", ip, "error", err)
			return
		}
		devices = append(devices, device)
	})

	return devices, nil
}

func isDataRow(_ int, row *goquery.Selection) bool {
	class, ok := row.Attr("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(class) {
		if rowClassPattern.MatchString(c) {
			return true
		}
	}
	return false
}

func parseHostRow(ip string, cells *goquery.Selection, names NameResolver) (model.DeviceRecord, error) {
	mac := strings.TrimSpace(cells.Eq(colMAC).Text())

	in, err := parseCounter(cells.Eq(colIn).Text())
	if err != nil {
		return model.DeviceRecord{}, fmt.Errorf("%w: in: %v", ErrMalformedRow, err)
	}
	out, err := parseCounter(cells.Eq(colOut).Text())
	if err != nil {
		return model.DeviceRecord{}, fmt.Errorf("%w: out: %v", ErrMalformedRow, err)
	}
	total, err := parseCounter(cells.Eq(colTotal).Text())
	if err != nil {
		return model.DeviceRecord{}, fmt.Errorf("%w: total: %v", ErrMalformedRow, err)
	}

	name := model.UnknownName
	if names != nil {
		name = names.ResolveName(ip, mac)
	}

	return model.DeviceRecord{
		IP:         ip,
		MAC:        strings.ToUpper(mac),
		Name:       name,
		BytesIn:    in,
		BytesOut:   out,
		BytesTotal: total,
		LastSeen:   strings.TrimSpace(cells.Eq(colLastSeen).Text()),
	}, nil
}
