package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/ishanjain/crayond/pkg/netif"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

// DisplayBanner shows the crayond startup banner
func DisplayBanner(version, backend, listen string) {
	fmt.Println()
	fmt.Printf("%s%s", colorCyan, colorBold)
	fmt.Println("╔═══════════════════════════════════════════════════════════════╗")
	fmt.Printf("║ %-61s ║\n", "crayond v"+version)
	fmt.Printf("║ %-61s ║\n", "Network Interface Management Service")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")
	fmt.Printf("%s", colorReset)
	fmt.Println()

	fmt.Printf("%s%-30s%s%s%s%s\n", colorDim, "Registry Backend", colorReset, colorYellow, backend, colorReset)
	fmt.Printf("%s%-30s%s%s%s%s\n", colorDim, "Links API", colorReset, colorGreen, "http://"+listen+"/links", colorReset)
	fmt.Println()
}

// DisplayLinks writes links as a table sorted by name
func DisplayLinks(w io.Writer, links []netif.Interface) {
	if len(links) == 0 {
		fmt.Fprintln(w, "  No links.")
		return
	}

	sorted := append([]netif.Interface(nil), links...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tADDR\tNETMASK")
	fmt.Fprintln(tw, "  ----\t----\t-------")
	for _, l := range sorted {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", l.Name, l.Addr, l.Netmask)
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Total: %d link(s)\n", len(sorted))
}

// DisplayLink writes one link as key/value lines
func DisplayLink(w io.Writer, link netif.Interface) {
	fmt.Fprintf(w, "  %-10s %s\n", "Name:", link.Name)
	fmt.Fprintf(w, "  %-10s %s\n", "Address:", link.Addr)
	fmt.Fprintf(w, "  %-10s %s\n", "Netmask:", link.Netmask)
}

// Header writes a boxed title
func Header(w io.Writer, title string) {
	fmt.Fprintln(w, "╔═══════════════════════════════════════════════════════╗")
	fmt.Fprintf(w, "║ %-53s ║\n", title)
	fmt.Fprintln(w, "╚═══════════════════════════════════════════════════════╝")
	fmt.Fprintln(w)
}

// Fatal prints an error and exits
func Fatal(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "Error: %s\n", strings.TrimSuffix(msg, "\n"))
	os.Exit(1)
}
