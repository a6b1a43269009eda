package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ishanjain/crayond/pkg/config"
	"github.com/ishanjain/crayond/pkg/linkapi"
	"github.com/ishanjain/crayond/pkg/ui"
)

const requestTimeout = 30 * time.Second

type Command struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type StatusData struct {
	Backend    string `json:"backend"`
	APIAddress string `json:"api_address"`
	Ready      bool   `json:"ready"`
	Uptime     string `json:"uptime"`
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "status":
		cmdStatus()
	case "links", "list":
		cmdLinks()
	case "show":
		cmdShow(requireArg("show <NAME>"))
	case "create":
		cmdCreate(requireArg("create <NAME>"))
	case "delete":
		cmdDelete(requireArg("delete <NAME>"))
	case "health":
		cmdHealth()
	case "config":
		cmdConfig()
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("crayonctl - Control CLI for the crayond daemon")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  crayonctl <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  status              Show daemon status")
	fmt.Println("  links               List network links")
	fmt.Println("  show <NAME>         Show one link")
	fmt.Println("  create <NAME>       Create a link")
	fmt.Println("  delete <NAME>       Delete a link")
	fmt.Println("  health              Show daemon health and operation counters")
	fmt.Println("  config              Open config file in editor")
	fmt.Println("  help                Show this help message")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  CRAYOND_SOCKET      Control socket path (default: " + config.Default().Server.SocketPath + ")")
	fmt.Println("  CRAYOND_API         Links API base URL (default: " + linkapi.DefaultBaseURL + ")")
}

func requireArg(usage string) string {
	if len(os.Args) < 3 {
		fmt.Println("Error: link name required")
		fmt.Println("Usage: crayonctl " + usage)
		os.Exit(1)
	}
	return os.Args[2]
}

func getSocketPath() string {
	if path := os.Getenv("CRAYOND_SOCKET"); path != "" {
		return path
	}
	return config.Default().Server.SocketPath
}

func newClient() (*linkapi.Client, context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	return linkapi.NewClient(os.Getenv("CRAYOND_API")), ctx, cancel
}

func sendCommand(cmd Command) (*Response, error) {
	conn, err := dialSocket(getSocketPath())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w\nIs crayond running?", err)
	}
	defer conn.Close()

	// Send command
	if err := json.NewEncoder(conn).Encode(cmd); err != nil {
		return nil, fmt.Errorf("failed to send command: %w", err)
	}

	// Receive response
	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &resp, nil
}

func cmdStatus() {
	resp, err := sendCommand(Command{Command: "status"})
	if err != nil {
		ui.Fatal("%v", err)
	}
	if !resp.Success {
		ui.Fatal("%s", resp.Error)
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		ui.Fatal("parsing response: %v", err)
	}

	ui.Header(os.Stdout, "crayond Daemon Status")

	if status.Ready {
		fmt.Printf("  ✓ Ready:             %s\n", "Yes")
	} else {
		fmt.Printf("  ⚠ Ready:             %s\n", "No")
	}
	fmt.Printf("  Backend:             %s\n", status.Backend)
	fmt.Printf("  API:                 %s\n", status.APIAddress)
	fmt.Printf("  Uptime:              %s\n", status.Uptime)
	fmt.Println()
}

func cmdLinks() {
	client, ctx, cancel := newClient()
	defer cancel()

	links, err := client.List(ctx)
	if err != nil {
		ui.Fatal("%v", err)
	}

	ui.Header(os.Stdout, "Network Links")
	ui.DisplayLinks(os.Stdout, links)
	fmt.Println()
}

func cmdShow(name string) {
	client, ctx, cancel := newClient()
	defer cancel()

	link, err := client.Get(ctx, name)
	if err != nil {
		ui.Fatal("%v", err)
	}
	if link == nil {
		ui.Fatal("no such link: %s", name)
	}

	ui.DisplayLink(os.Stdout, *link)
}

func cmdCreate(name string) {
	client, ctx, cancel := newClient()
	defer cancel()

	link, err := client.Create(ctx, name)
	if err != nil {
		ui.Fatal("%v", err)
	}

	fmt.Printf("✓ Created %s\n\n", link.Name)
	ui.DisplayLink(os.Stdout, *link)
}

func cmdDelete(name string) {
	client, ctx, cancel := newClient()
	defer cancel()

	removed, err := client.Delete(ctx, name)
	if err != nil {
		ui.Fatal("%v", err)
	}
	if !removed {
		ui.Fatal("no such link: %s", name)
	}

	fmt.Printf("✓ Deleted %s\n", name)
}

func cmdHealth() {
	client, ctx, cancel := newClient()
	defer cancel()

	status, err := client.Status(ctx)
	if err != nil {
		fmt.Printf("Error: Failed to query daemon status: %v\n", err)
		fmt.Println("\nIs crayond running?")
		os.Exit(1)
	}

	ui.Header(os.Stdout, "Daemon Health")

	prettyBytes, _ := json.MarshalIndent(status, "  ", "  ")
	fmt.Println("  " + string(prettyBytes))
	fmt.Println()
}

func cmdConfig() {
	configPath := config.DefaultConfigPath

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("Config file not found: %s\n", configPath)
		os.Exit(1)
	}

	if err := openEditor(configPath); err != nil {
		ui.Fatal("opening config: %v", err)
	}
}
