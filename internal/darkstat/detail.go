package darkstat

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/martinsuchenak/lanwatch/internal/model"
)

// Section headings on the host detail page
const (
	SectionTCPLocal  = "TCP ports on this host"
	SectionTCPRemote = "TCP ports on remote hosts"
	SectionUDPLocal  = "UDP ports on this host"
	SectionUDPRemote = "UDP ports on remote hosts"
	SectionProtocols = "IP protocols"
)

// TimestampLayout is the capture time format of a DeviceDetail
const TimestampLayout = "2006-01-02 15:04:05"

const (
	tcpColumns      = 6
	udpColumns      = 5
	protocolColumns = 5
)

// ParseDetail reads the port and protocol tables of a host detail page and
// combines them with a copy of device. A missing section or a row of the
// wrong shape fails the whole page.
func ParseDetail(html string, device model.DeviceRecord, now time.Time) (*model.DeviceDetail, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing detail page: %w", err)
	}

	tables := sectionTables(doc)
	detail := &model.DeviceDetail{
		DeviceRecord: device,
		Timestamp:    now.Format(TimestampLayout),
	}

	if detail.TCPLocal, err = parsePorts(tables, SectionTCPLocal, tcpColumns); err != nil {
		return nil, err
	}
	if detail.TCPRemote, err = parsePorts(tables, SectionTCPRemote, tcpColumns); err != nil {
		return nil, err
	}
	if detail.UDPLocal, err = parsePorts(tables, SectionUDPLocal, udpColumns); err != nil {
		return nil, err
	}
	if detail.UDPRemote, err = parsePorts(tables, SectionUDPRemote, udpColumns); err != nil {
		return nil, err
	}
	if detail.Protocols, err = parseProtocols(tables); err != nil {
		return nil, err
	}

	return detail, nil
}

// sectionTables maps each h3 heading to the first table that follows it in
// document order
func sectionTables(doc *goquery.Document) map[string]*goquery.Selection {
	tables := make(map[string]*goquery.Selection)
	var pending []string

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "h3":
			pending = append(pending, strings.TrimSpace(s.Text()))
		case "table":
			for _, heading := range pending {
				if _, seen := tables[heading]; !seen {
					tables[heading] = s
				}
			}
			pending = pending[:0]
		}
	})
	return tables
}

// sectionRows returns the body rows of a section's table, header excluded
func sectionRows(tables map[string]*goquery.Selection, heading string) (*goquery.Selection, error) {
	table, ok := tables[heading]
	if !ok {
		return nil, fmt.Errorf("%w: %q not found", ErrMalformedSection, heading)
	}
	rows := table.Find("tr")
	if rows.Length() == 0 {
		return rows, nil
	}
	return rows.Slice(1, rows.Length()), nil
}

func rowCells(row *goquery.Selection) []string {
	var cells []string
	row.Find("td").Each(func(_ int, td *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(td.Text()))
	})
	return cells
}

func parsePorts(tables map[string]*goquery.Selection, heading string, columns int) ([]model.PortUsage, error) {
	rows, err := sectionRows(tables, heading)
	if err != nil {
		return nil, err
	}

	ports := []model.PortUsage{}
	for i := range rows.Length() {
		cells := rowCells(rows.Eq(i))
		if len(cells) != columns {
			return nil, fmt.Errorf("%w: %s row %d has %d cells, want %d", ErrMalformedRow, heading, i+1, len(cells), columns)
		}

		in, out, total, err := parseTriple(cells[2], cells[3], cells[4])
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ErrMalformedRow, heading, i+1, err)
		}

		usage := model.PortUsage{
			Port:       cells[0],
			Service:    cells[1],
			BytesIn:    in,
			BytesOut:   out,
			BytesTotal: total,
		}
		if columns == tcpColumns {
			usage.Syns = cells[5]
		}
		ports = append(ports, usage)
	}
	return ports, nil
}

func parseProtocols(tables map[string]*goquery.Selection) ([]model.ProtocolUsage, error) {
	rows, err := sectionRows(tables, SectionProtocols)
	if err != nil {
		return nil, err
	}

	protocols := []model.ProtocolUsage{}
	for i := range rows.Length() {
		cells := rowCells(rows.Eq(i))
		if len(cells) != protocolColumns {
			return nil, fmt.Errorf("%w: %s row %d has %d cells, want %d", ErrMalformedRow, SectionProtocols, i+1, len(cells), protocolColumns)
		}

		in, out, total, err := parseTriple(cells[2], cells[3], cells[4])
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ErrMalformedRow, SectionProtocols, i+1, err)
		}

		protocols = append(protocols, model.ProtocolUsage{
			Number:     cells[0],
			Name:       strings.ToUpper(cells[1]),
			BytesIn:    in,
			BytesOut:   out,
			BytesTotal: total,
		})
	}
	return protocols, nil
}

func parseTriple(in, out, total string) (int64, int64, int64, error) {
	i, err := parseCounter(in)
	if err != nil {
		return 0, 0, 0, err
	}
	o, err := parseCounter(out)
	if err != nil {
		return 0, 0, 0, err
	}
	t, err := parseCounter(total)
	if err != nil {
		return 0, 0, 0, err
	}
	return i, o, t, nil
}
