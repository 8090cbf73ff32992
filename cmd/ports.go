/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/allbin/switchhub"
	"github.com/allbin/switchhub/serial"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
)

// portsCmd represents the ports command
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available serial ports",
	Long: `List the serial ports workflows can run on.

This command scans for communication-capable serial devices including:
- USB serial adapters (ttyUSB*)
- USB CDC/ACM devices (ttyACM*)
- Standard serial ports (ttyS*)
- ARM/Raspberry Pi ports (ttyAMA*)

Virtual terminals and pseudo-terminals are excluded from the listing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := serial.ListPorts()
		if err != nil {
			return fmt.Errorf("listing ports: %w", err)
		}

		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")

		filtered := filterPorts(ports, filterType)
		if len(filtered) == 0 {
			if filterType != "" {
				fmt.Printf("No serial ports found matching filter: %s\n", filterType)
			} else {
				fmt.Println("No serial ports found")
			}
			return nil
		}

		if tableFormat {
			fmt.Printf("Found %d serial port(s):\n\n", len(filtered))
			fmt.Println(renderPortTable(filtered))
			return nil
		}
		for _, port := range filtered {
			fmt.Println(port)
		}
		return nil
	},
}

// portsInfoCmd represents the ports info command
var portsInfoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial port",
	Long: `Display detailed information about a serial port including USB metadata.

Examples:
  switchhub ports info /dev/ttyUSB0

For USB adapters this shows vendor/product IDs, serial number and the
manufacturer strings read from sysfs, which helps telling console cables
apart.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := serial.GetPortInfo(args[0])
		if err != nil {
			return fmt.Errorf("getting port info: %w", err)
		}

		fmt.Printf("Port Information: %s\n\n", info.Path)
		fmt.Printf("  Name:        %s\n", info.Name)
		fmt.Printf("  Description: %s\n", info.Description)
		fmt.Printf("  Framing:     %s (configured)\n", framing())

		if info.VendorID != "" || info.ProductID != "" {
			fmt.Println("\nUSB Device Information:")
			printField("Vendor ID", info.VendorID)
			printField("Product ID", info.ProductID)
			printField("Serial", info.SerialNumber)
			printField("Manufacturer", info.Manufacturer)
			printField("Product", info.Product)
		}
		return nil
	},
}

// portsIdentifyCmd represents the ports identify command
var portsIdentifyCmd = &cobra.Command{
	Use:   "identify <port>",
	Short: "Blink a port so its cable can be found",
	Long: `Write a marker line to the port every 50ms so the activity LED of its
USB adapter flickers, or a terminal on the far end shows the marker.

Use it to find which physical console cable belongs to a port before
starting a workflow on it. Press Ctrl+C to stop early.

Examples:
  switchhub ports identify /dev/ttyUSB0
  switchhub ports identify /dev/ttyUSB0 --duration 5s`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		duration, _ := cmd.Flags().GetDuration("duration")
		port := args[0]

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		reg := switchhub.NewRegistry(cfg.EngineOptions(logger)...)
		result, err := reg.Identify(ctx, port, duration)
		if err != nil {
			return err
		}

		fmt.Println(infoStyle.Render(fmt.Sprintf("Blinking %s for %s...", port, duration)))
		if err := <-result; err != nil {
			return fmt.Errorf("could not identify %s, is it in use? %w", port, err)
		}
		fmt.Println(successStyle.Render("✓ Identify for " + port + " complete"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
	portsCmd.AddCommand(portsInfoCmd, portsIdentifyCmd)

	portsIdentifyCmd.Flags().DurationP("duration", "d", switchhub.DefaultIdentifyDuration, "How long to keep blinking")

	portsCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, standard, arm, all")
	portsCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

func printField(label, value string) {
	if value != "" {
		fmt.Printf("  %-13s %s\n", label+":", value)
	}
}

// framing renders the configured line settings, e.g. "9600 8N1".
func framing() string {
	c := serial.DefaultConfig()
	if err := serial.WithBaudRate(cfg.Baud)(&c); err != nil {
		return fmt.Sprintf("%d baud (%v)", cfg.Baud, err)
	}
	return c.Framing()
}

// filterPorts filters the port list based on the specified filter type
func filterPorts(ports []string, filterType string) []string {
	if filterType == "" || filterType == "all" {
		return ports
	}

	var filtered []string
	for _, port := range ports {
		if portMatches(portType(port), filterType) {
			filtered = append(filtered, port)
		}
	}
	return filtered
}

func portMatches(kind, filterType string) bool {
	switch strings.ToLower(filterType) {
	case "usb":
		return kind == "USB Serial" || kind == "USB CDC/ACM"
	case "standard":
		return kind == "Standard Serial"
	case "arm":
		return kind == "ARM Serial"
	}
	return false
}

func renderPortTable(ports []string) string {
	columns := []table.Column{
		table.NewColumn("port", "Port", 16),
		table.NewColumn("type", "Type", 18),
		table.NewColumn("desc", "Description", 34),
		table.NewColumn("usb", "USB ID", 11),
		table.NewColumn("serial", "Serial", 16),
	}

	rows := make([]table.Row, 0, len(ports))
	for _, port := range ports {
		info, err := serial.GetPortInfo(port)
		if err != nil {
			rows = append(rows, table.NewRow(table.RowData{
				"port": port,
				"type": "Unknown",
				"desc": fmt.Sprintf("Error: %v", err),
			}))
			continue
		}

		usbID := ""
		if info.VendorID != "" {
			usbID = info.VendorID + ":" + info.ProductID
		}
		rows = append(rows, table.NewRow(table.RowData{
			"port":   info.Name,
			"type":   portType(port),
			"desc":   info.Description,
			"usb":    usbID,
			"serial": info.SerialNumber,
		}))
	}

	return table.New(columns).
		WithRows(rows).
		BorderRounded().
		HeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))).
		WithMissingDataIndicator("").
		View()
}

// portType returns a more specific type classification for the port
func portType(port string) string {
	name := strings.ToLower(port[strings.LastIndex(port, "/")+1:])
	switch {
	case strings.HasPrefix(name, "ttyusb"):
		return "USB Serial"
	case strings.HasPrefix(name, "ttyacm"):
		return "USB CDC/ACM"
	case strings.HasPrefix(name, "ttyama"):
		return "ARM Serial"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial"
	case strings.HasPrefix(name, "ttysac"):
		return "Samsung Serial"
	case strings.HasPrefix(name, "ttyths"):
		return "Tegra Serial"
	case strings.HasPrefix(name, "ttyo"):
		return "OMAP Serial"
	case strings.HasPrefix(name, "ttys"):
		return "Standard Serial"
	default:
		return "Serial Port"
	}
}
