package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sumire/bugtracker/internal/client"
	"github.com/sumire/bugtracker/internal/config"
	"github.com/sumire/bugtracker/internal/tracker"
	"github.com/sumire/bugtracker/internal/tui"
)

var baseURL string

var rootCmd = &cobra.Command{
	Use:   "bugtui",
	Short: "Terminal client for the bug tracker",
	Long: `bugtui lists, reports, edits and deletes bugs through the bug tracker
HTTP API. The collection is loaded once at startup and kept in sync with
the server after every action.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&baseURL, "base-url", client.DefaultBaseURL, "bug collection endpoint of the API")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	verbose := os.Getenv("APP_ENV") == config.EnvDevelopment

	// The terminal belongs to the UI, so logs go to a file in development
	// and nowhere otherwise.
	var logOut io.Writer = io.Discard
	if verbose {
		f, err := tea.LogToFile("bugtui.log", "bugtui")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug})))

	api, err := client.New(baseURL)
	if err != nil {
		return err
	}
	sync := tracker.NewSyncer(api)
	slog.Info("starting", "base_url", baseURL)

	root := tui.NewBoundary(func() tea.Model {
		return tui.NewModel(ctx, sync)
	}, tui.DefaultFallback(verbose))

	if _, err := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
