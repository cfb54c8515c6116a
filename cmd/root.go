package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"gopherview/internal/config"
	"gopherview/internal/eventbus"
	"gopherview/internal/gateway"
	"gopherview/internal/gopher"
	"gopherview/internal/navigation"
	"gopherview/internal/ui"
)

var (
	flags = struct {
		ConfigFile string
		Gateway    string
	}{}

	root = &cobra.Command{
		Use:   "gopherview [address]",
		Short: "gopherview is a terminal client for gopherspace",
		Long: `gopherview browses Gopher menus, text and search servers from the terminal.

The optional argument is anything the address bar accepts: a gopher://
URI, a bare host[:port]/selector, or free text to search for.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         runBrowser,
	}
)

func init() {
	root.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", "", "configuration file (default "+config.DefaultPath()+")")
	root.Flags().StringVar(&flags.Gateway, "gateway", "", "fetch through a gopherview gateway at this base URL instead of dialing directly")
	root.AddCommand(serveCmd)
}

// Execute runs the root command
func Execute() {
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runBrowser(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(flags.ConfigFile)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file
	logFile, err := openLog(cfg.Log.File)
	if err != nil {
		log.SetOutput(io.Discard)
	} else {
		defer logFile.Close()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	bus := eventbus.New()
	defer bus.Close()
	unsubscribe := observe(bus)
	defer unsubscribe()

	fetcher, err := newFetcher(cfg, flags.Gateway)
	if err != nil {
		return err
	}

	nav := navigation.New(
		navigation.WithBus(bus),
		navigation.WithSearchEndpoint(cfg.SearchEndpoint()),
		navigation.WithMaxHistory(cfg.History.MaxFrames),
		navigation.WithContext(ctx),
	)

	start := cfg.Home
	if len(args) > 0 {
		start = args[0]
	}

	uiModel := ui.NewModel(cfg, nav, fetcher)
	uiModel.SetStart(start)

	log.Printf("Starting UI (tab %s, start %q)", nav.ID(), start)
	p := tea.NewProgram(uiModel, tea.WithAltScreen(), tea.WithContext(ctx))
	uiModel.SetProgram(p)

	if _, err := p.Run(); err != nil {
		log.Printf("Error running program: %v", err)
		return fmt.Errorf("error running program: %w", err)
	}
	log.Printf("UI exited normally")
	return nil
}

// loadConfig reads path, or the default location when path is empty
func loadConfig(path string) (*config.Config, error) {
	svc := config.NewConfigService()
	if path == "" {
		return svc.Load()
	}
	return svc.LoadFromPath(path)
}

// newFetcher picks the transport: a gateway when one is named, otherwise
// direct gopher connections
func newFetcher(cfg *config.Config, gatewayURL string) (navigation.Fetcher, error) {
	timeout := time.Duration(cfg.Transport.TimeoutSeconds) * time.Second
	if gatewayURL != "" {
		log.Printf("Fetching through gateway %s", gatewayURL)
		return gateway.NewClient(gatewayURL, timeout), nil
	}

	client, err := gopher.NewClient(gopherOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create gopher client: %w", err)
	}
	return client, nil
}

func gopherOptions(cfg *config.Config) gopher.Options {
	return gopher.Options{
		TimeoutSeconds:     cfg.Transport.TimeoutSeconds,
		MaxBytes:           cfg.Transport.MaxBytes,
		Proxy:              cfg.Transport.Proxy,
		InsecureSkipVerify: cfg.Transport.InsecureSkipVerify,
	}
}

func openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return tea.LogToFile(path, "")
}
