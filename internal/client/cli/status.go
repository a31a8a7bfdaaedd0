package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/iudanet/ground/internal/client/auth"
	"github.com/iudanet/ground/internal/models"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Ground Status ===")
	c.io.Println()

	if c.session == nil {
		c.io.Println("User: not authenticated")
	} else {
		c.io.Printf("User: %s (%s)\n", displayName(c.session.User), c.session.User.ID)
		if !c.session.ExpiresAt.IsZero() {
			c.io.Printf("Token expires: %s\n", c.session.ExpiresAt.Format(time.RFC3339))
		}
	}
	c.io.Println()

	pending, err := c.sync.PendingCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending count: %w", err)
	}
	rejected, err := c.sync.SyncErrors(ctx)
	if err != nil {
		return fmt.Errorf("failed to get sync errors: %w", err)
	}

	if pending > 0 {
		c.io.Printf("⚠️  Pending sync: %d mutation(s) waiting to be uploaded\n", pending)
	} else {
		c.io.Println("✓ All changes uploaded")
	}
	if len(rejected) > 0 {
		c.io.Printf("⚠️  Rejected by server: %d mutation(s). Run 'ground errors' for details.\n", len(rejected))
	}

	uploads, err := c.worker.Pending(ctx, models.JobKindUpload)
	if err != nil {
		return fmt.Errorf("failed to get upload jobs: %w", err)
	}
	downloads, err := c.worker.Pending(ctx, models.JobKindTileDownload)
	if err != nil {
		return fmt.Errorf("failed to get download jobs: %w", err)
	}
	c.io.Printf("Background jobs: %d upload, %d tile download\n", len(uploads), len(downloads))

	areas, err := c.basemaps.Areas(ctx)
	if err != nil {
		return fmt.Errorf("failed to get offline areas: %w", err)
	}
	counts := make(map[models.DownloadState]int)
	for _, area := range areas {
		counts[area.State]++
	}
	c.io.Printf("Offline areas: %d (downloaded %d, in progress %d, failed %d)\n",
		len(areas),
		counts[models.DownloadStateDownloaded],
		counts[models.DownloadStateInProgress]+counts[models.DownloadStatePending],
		counts[models.DownloadStateFailed])

	return nil
}

func (c *Cli) runErrors(ctx context.Context) error {
	failed, err := c.sync.SyncErrors(ctx)
	if err != nil {
		return fmt.Errorf("failed to get sync errors: %w", err)
	}

	if len(failed) == 0 {
		c.io.Println("No rejected mutations.")
		return nil
	}

	tw := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "MUTATION\tTYPE\tFEATURE\tRETRIES\tERROR")
	for _, m := range failed {
		base := m.Base()
		_, _ = fmt.Fprintf(tw, "%s\t%s %s\t%s\t%d\t%s\n",
			base.ID, kindOf(m), base.Type, base.FeatureID, base.RetryCount, base.LastError)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("Run 'ground retry' to upload them again.")
	return nil
}

func (c *Cli) runRetry(ctx context.Context) error {
	n, err := c.sync.RetryFailed(ctx)
	if err != nil {
		return fmt.Errorf("failed to retry: %w", err)
	}
	c.io.Printf("✓ %d mutation(s) returned to the upload queue\n", n)
	return nil
}

func (c *Cli) runProjects(ctx context.Context) error {
	projects, err := c.store.GetProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to get projects: %w", err)
	}
	if len(projects) == 0 {
		c.io.Println("No projects. Run 'ground pull <project>' first.")
		return nil
	}

	tw := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTITLE\tLAYERS")
	for _, p := range projects {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\n", p.ID, p.Title, len(p.Layers))
	}
	return tw.Flush()
}

func (c *Cli) runLogin(ctx context.Context, args []string) error {
	c.io.Println("=== Login ===")

	var token string
	if len(args) > 0 {
		token = args[0]
	} else {
		var err error
		if token, err = c.io.ReadSecret("Access token: "); err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
	}

	session, err := auth.Login(ctx, c.store, token)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.tokenPath), 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(c.tokenPath, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	c.session = session

	c.io.Printf("✓ Logged in as %s (%s)\n", displayName(session.User), session.User.ID)
	return nil
}

func (c *Cli) runLogout() error {
	c.io.Println("=== Logout ===")

	if err := os.Remove(c.tokenPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("logout failed: %w", err)
	}
	c.session = nil

	c.io.Println("✓ Logout successful!")
	c.io.Println("Queued changes stay on this device until the next login.")
	return nil
}

func displayName(u models.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID
}

func kindOf(m models.Mutation) string {
	switch m.(type) {
	case *models.FeatureMutation:
		return "feature"
	case *models.ObservationMutation:
		return "observation"
	default:
		return "unknown"
	}
}
