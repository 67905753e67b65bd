package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iamsorenl/Autogen-Chat-Demo/internal/health"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running bridge",
	Long: `Query /api/status on a running 'chatbridge serve' and print the worker
state, queue depths and connected clients.`,
	RunE: runStatus,
}

var (
	statusAddr string
	statusJSON bool
)

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "", "Bridge address (default: channels.web.addr)")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snapshot, err := fetchStatus(ctx, http.DefaultClient, httpURL(resolveBridgeAddr(statusAddr), "/api/status"))
	if err != nil {
		return err
	}
	return printStatus(os.Stdout, snapshot, statusJSON)
}

func fetchStatus(ctx context.Context, client *http.Client, url string) (health.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return health.Snapshot{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return health.Snapshot{}, fmt.Errorf("bridge not reachable at %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return health.Snapshot{}, fmt.Errorf("status request failed: %s: %s", resp.Status, body)
	}

	var snapshot health.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return health.Snapshot{}, fmt.Errorf("decode status: %w", err)
	}
	return snapshot, nil
}

func printStatus(w io.Writer, snapshot health.Snapshot, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	_, err := fmt.Fprint(w, health.FormatText(snapshot))
	return err
}
