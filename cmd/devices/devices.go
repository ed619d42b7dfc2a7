package devices

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/martinsuchenak/lanwatch/internal/config"
	"github.com/martinsuchenak/lanwatch/internal/log"
	"github.com/martinsuchenak/lanwatch/internal/model"
	"github.com/martinsuchenak/lanwatch/internal/report"
	"github.com/paularlott/cli"
)

func Commands() []*cli.Command {
	return []*cli.Command{
		ListCommand(),
		TopCommand(),
		DetailsCommand(),
		SeriesCommand(),
		LatestCommand(),
		LinksCommand(),
	}
}

func serverFlag() cli.Flag {
	return &cli.StringFlag{Name: "server", Usage: "Server URL", EnvVars: []string{"LANWATCH_SERVER"}, DefaultValue: config.ServerURL()}
}

func createHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// getJSON fetches url and decodes a 200 response into v. Error bodies are
// turned into Go errors carrying the server's message.
func getJSON(url string, v any) error {
	resp, err := createHTTPClient().Get(url)
	if err != nil {
		log.Error("Failed to connect to server", "error", err, "url", url)
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		log.Warn("Server returned error", "status", resp.Status, "url", url, "error", body.Error)
		if body.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, body.Error)
		}
		return fmt.Errorf("server error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		log.Error("Failed to decode response", "error", err, "url", url)
		return err
	}
	return nil
}

func linkURL(cmd *cli.Command, link, path string) string {
	return strings.TrimRight(cmd.GetString("server"), "/") + "/api/" + link + "/" + path
}

func printDevices(devices []report.DeviceView) {
	if len(devices) == 0 {
		fmt.Println("No devices found")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "IP\tMAC\tNAME\tIN\tOUT\tTOTAL\tLAST SEEN")
	for _, d := range devices {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", d.IP, d.MAC, d.Name, d.In, d.Out, d.Total, d.LastSeen)
	}
	w.Flush()
}

func printBuckets(buckets []report.BucketView) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tIN\tOUT\tTOTAL")
	for _, b := range buckets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.Timestamp, b.In, b.Out, b.Total)
	}
	w.Flush()
}

func printDetail(d *model.DeviceDetail) {
	fmt.Printf("IP:         %s\n", d.IP)
	fmt.Printf("MAC:        %s\n", d.MAC)
	fmt.Printf("Name:       %s\n", d.Name)
	fmt.Printf("In/Out:     %s / %s bytes\n", humanize.Comma(d.BytesIn), humanize.Comma(d.BytesOut))
	fmt.Printf("Total:      %s bytes (%s)\n", humanize.Comma(d.BytesTotal), report.HumanizeBytes(d.BytesTotal))
	fmt.Printf("Captured:   %s\n", d.Timestamp)
	printPorts("TCP local", d.TCPLocal)
	printPorts("TCP remote", d.TCPRemote)
	printPorts("UDP local", d.UDPLocal)
	printPorts("UDP remote", d.UDPRemote)
	if len(d.Protocols) > 0 {
		fmt.Println("Protocols:")
		for _, p := range d.Protocols {
			fmt.Printf("  - %s (%s) %s\n", p.Name, p.Number, report.HumanizeBytes(p.BytesTotal))
		}
	}
	fmt.Println()
}

func printPorts(title string, ports []model.PortUsage) {
	if len(ports) == 0 {
		return
	}
	fmt.Printf("%s:\n", title)
	for _, p := range ports {
		fmt.Printf("  - %s/%s in:%s out:%s total:%s\n",
			p.Port, p.Service, report.HumanizeBytes(p.BytesIn), report.HumanizeBytes(p.BytesOut), report.HumanizeBytes(p.BytesTotal))
	}
}

func printSnapshot(s *model.Snapshot) {
	fmt.Printf("ID:         %s\n", s.ID)
	fmt.Printf("Link:       %s (%s)\n", s.Link, s.Interface)
	fmt.Printf("Captured:   %s (%s)\n", s.CapturedAt.Format(time.RFC3339), humanize.Time(s.CapturedAt))
	fmt.Printf("Status:     %s\n", s.Status)
	if s.Error != "" {
		fmt.Printf("Error:      %s\n", s.Error)
	}
	fmt.Printf("Devices:    %d\n", len(s.Data))
	for _, f := range s.Failures {
		fmt.Printf("  ! %s: %s\n", f.IP, f.Error)
	}
	fmt.Println()
	for i := range s.Data {
		printDetail(&s.Data[i])
	}
}
