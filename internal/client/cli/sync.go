package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/ground/internal/client/api"
	"github.com/iudanet/ground/internal/client/sync"
)

func (c *Cli) runPull(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("ground pull <project>")
	}

	c.io.Println("=== Pull ===")
	c.io.Println()

	result, err := c.sync.Pull(ctx, args[0])
	if err != nil {
		return explainRemote("pull failed", err)
	}

	c.io.Println("✓ Project is up to date")
	c.io.Println()
	c.printResult(result)
	return nil
}

func (c *Cli) runSync(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("ground sync <project>")
	}

	c.io.Println("=== Synchronization ===")
	c.io.Println()
	c.io.Println("Starting synchronization with server...")

	result, err := c.sync.Sync(ctx, args[0])
	if err != nil {
		if result != nil && result.PushedMutations > 0 {
			c.io.Printf("Uploaded %d mutation(s) before the failure\n", result.PushedMutations)
		}
		return explainRemote("synchronization failed", err)
	}

	c.io.Println()
	c.io.Println("✓ Synchronization completed successfully!")
	c.io.Println()
	c.printResult(result)

	if result.RejectedMutations > 0 {
		c.io.Println()
		c.io.Printf("⚠️  %d feature(s) have changes rejected by the server. Run 'ground errors' for details.\n",
			result.RejectedMutations)
	}
	return nil
}

func (c *Cli) printResult(result *sync.SyncResult) {
	c.io.Printf("Pushed to server:   %d mutations\n", result.PushedMutations)
	c.io.Printf("Pulled from server: %d documents\n", result.PulledEntities)
	c.io.Printf("Merged locally:     %d documents\n", result.MergedEntities)
	if result.SkippedEntities > 0 {
		c.io.Printf("Skipped (errors):   %d\n", result.SkippedEntities)
	}
}

// runWorker resumes interrupted uploads and runs background jobs until ctx is done.
func (c *Cli) runWorker(ctx context.Context) error {
	c.io.Println("=== Background worker ===")

	n, err := c.sync.Resume(ctx)
	if err != nil {
		return fmt.Errorf("failed to resume uploads: %w", err)
	}
	c.io.Printf("Resumed uploads for %d feature(s). Press Ctrl+C to stop.\n", n)

	if err := c.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("worker stopped: %w", err)
	}

	c.io.Println("Worker stopped. Unfinished jobs resume on the next start.")
	return nil
}

// explainRemote добавляет подсказку к ошибкам сервера
func explainRemote(action string, err error) error {
	switch {
	case errors.Is(err, api.ErrTransient):
		return fmt.Errorf("%s: server unreachable, changes stay queued: %w", action, err)
	case errors.Is(err, api.ErrUnauthorized):
		return fmt.Errorf("%s: access token refused, run 'ground login', changes stay queued: %w", action, err)
	case api.IsNotFound(err):
		return fmt.Errorf("%s: not found on server: %w", action, err)
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}
