package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/embercove/ideavault/internal/cache"
	"github.com/embercove/ideavault/internal/ideas"
	"github.com/embercove/ideavault/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync ideas with the server",
	Long: `Replay queued offline changes to the server, in the order they were
made, then refresh the local cache.

Commands:
  ideavault sync              # Sync now
  ideavault sync status       # Show sync status
  ideavault sync server URL   # Point at a different server`,
	RunE: runSync,
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	RunE:  runSyncStatus,
}

var syncServerCmd = &cobra.Command{
	Use:   "server [url]",
	Short: "Show or set the server URL",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSyncServer,
}

func init() {
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncServerCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	svc, store, err := newService()
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Println("🔄 Synchronizing...")

	result, err := svc.Sync(cmd.Context())
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	printSyncResult(result)
	return nil
}

func printSyncResult(result *sync.Result) {
	if result.Remaining > 0 {
		fmt.Printf("⚠️  Server unreachable mid-sync. Replayed %d, %d still queued.\n",
			result.Replayed, result.Remaining)
		return
	}

	fmt.Printf("✓ Sync complete! Replayed: %d, Refreshed: %d\n", result.Replayed, result.Refreshed)
	if result.Dropped > 0 {
		fmt.Printf("⚠️  %d change(s) were rejected by the server and discarded. See the log for details.\n",
			result.Dropped)
	}
}

func runSyncStatus(cmd *cobra.Command, args []string) error {
	client, err := sync.NewClient()
	if err != nil {
		return err
	}

	serverURL, userID, lastSync := client.Status()

	fmt.Printf("Server:    %s\n", serverURL)
	if client.IsLoggedIn() {
		fmt.Printf("User ID:   %s\n", userID)
		if lastSync.IsZero() {
			fmt.Println("Last Sync: never")
		} else {
			fmt.Printf("Last Sync: %s\n", lastSync.Format("Jan 2 15:04"))
		}
		fmt.Println("Status:    ✓ Logged in")
	} else {
		fmt.Println("Status:    Not logged in")
	}

	store, err := cache.OpenDefault()
	if err == nil {
		defer store.Close()
		if n, err := ideas.NewService(client, store).QueueLen(cmd.Context()); err == nil {
			fmt.Printf("Queued:    %d change(s)\n", n)
		}
	}

	return nil
}

func runSyncServer(cmd *cobra.Command, args []string) error {
	client, err := sync.NewClient()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		url, _, _ := client.Status()
		fmt.Printf("Server: %s\n", url)
		return nil
	}

	if err := client.SetServer(args[0]); err != nil {
		return err
	}
	fmt.Printf("✓ Server set to: %s\n", args[0])
	return nil
}

// maybeSyncCLI replays the queue before a read command if --sync was passed
// or an auto-sync is due. Failures are reported but never block the command.
func maybeSyncCLI(cmd *cobra.Command, svc *ideas.Service, force bool) {
	client, err := sync.NewClient()
	if err != nil || !client.IsLoggedIn() {
		return
	}

	queued, _ := svc.QueueLen(cmd.Context())
	if !force && queued == 0 && !client.ShouldAutoSync() {
		return
	}

	result, err := svc.Sync(cmd.Context())
	if err != nil {
		fmt.Printf("⚠️  Sync failed: %v\n", err)
		return
	}
	if result.Replayed > 0 || result.Refreshed > 0 {
		fmt.Printf("🔄 Synced (↑%d ↓%d)\n", result.Replayed, result.Refreshed)
	}
}
