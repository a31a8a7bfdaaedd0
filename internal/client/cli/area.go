package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/iudanet/ground/internal/client/basemap"
	"github.com/iudanet/ground/internal/client/storage"
	"github.com/iudanet/ground/internal/validation"
)

const areaUsage = "ground area <add|list|show|retry|remove> ..."

func (c *Cli) runArea(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError(areaUsage)
	}

	switch args[0] {
	case "add":
		return c.runAreaAdd(ctx, args[1:])
	case "list":
		return c.runAreaList(ctx)
	case "show":
		return c.runAreaShow(ctx, args[1:])
	case "retry":
		return c.runAreaRetry(ctx, args[1:])
	case "remove":
		return c.runAreaRemove(ctx, args[1:])
	default:
		return usageError(areaUsage)
	}
}

func (c *Cli) runAreaAdd(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("ground area add <project> <south,west,north,east>")
	}

	bounds, err := validation.ParseBounds(args[1])
	if err != nil {
		return err
	}
	if _, err := c.getProject(ctx, args[0]); err != nil {
		return err
	}

	area, err := c.basemaps.AddAreaAndEnqueue(ctx, args[0], bounds)
	if errors.Is(err, basemap.ErrNoBasemapSource) {
		return fmt.Errorf("project %s has no basemap to download", args[0])
	}
	if err != nil {
		if area != nil {
			return fmt.Errorf("area %s saved but its tiles could not be listed, run 'ground area retry %s': %w",
				area.ID, area.ID, err)
		}
		return fmt.Errorf("failed to add area: %w", err)
	}

	c.io.Printf("✓ Area %q (%s) added, tiles queued for download\n", area.Name, area.ID)
	c.io.Println("Run 'ground worker' or 'ground tiles download' to fetch them.")
	return nil
}

func (c *Cli) runAreaList(ctx context.Context) error {
	areas, err := c.basemaps.Areas(ctx)
	if err != nil {
		return fmt.Errorf("failed to get areas: %w", err)
	}
	if len(areas) == 0 {
		c.io.Println("No offline areas.")
		return nil
	}

	tw := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tSTATE\tBOUNDS")
	for _, area := range areas {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", area.ID, area.Name, area.State, area.Bounds)
	}
	return tw.Flush()
}

func (c *Cli) runAreaShow(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("ground area show <area>")
	}

	area, err := c.basemaps.Area(ctx, args[0])
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("area %s not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get area: %w", err)
	}

	size, err := c.basemaps.AreaStorageSize(ctx, area.ID)
	if err != nil {
		return fmt.Errorf("failed to get area size: %w", err)
	}
	tiles, err := c.basemaps.IntersectingDownloadedTileSources(ctx, area)
	if err != nil {
		return fmt.Errorf("failed to get area tiles: %w", err)
	}

	c.io.Printf("=== %s ===\n", area.Name)
	c.io.Printf("ID:      %s\n", area.ID)
	c.io.Printf("Project: %s\n", area.ProjectID)
	c.io.Printf("Bounds:  %s\n", area.Bounds)
	c.io.Printf("State:   %s\n", area.State)
	c.io.Printf("Size:    %s in %d tile archive(s)\n", humanize.Bytes(uint64(size)), len(tiles))
	for _, tile := range tiles {
		c.io.Printf("  %s  %s\n", tile.ID, tile.Path)
	}
	return nil
}

func (c *Cli) runAreaRetry(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("ground area retry <area>")
	}

	if err := c.basemaps.RetryArea(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to retry area: %w", err)
	}
	c.io.Printf("✓ Area %s queued for download\n", args[0])
	return nil
}

func (c *Cli) runAreaRemove(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 || (len(args) == 2 && args[1] != "--yes") {
		return usageError("ground area remove <area> [--yes]")
	}
	areaID := args[0]

	if len(args) == 1 {
		answer, err := c.io.ReadInput(fmt.Sprintf("Remove area %s and its unused tiles? [y/N]: ", areaID))
		if err != nil {
			return fmt.Errorf("failed to read answer: %w", err)
		}
		if a := strings.ToLower(answer); a != "y" && a != "yes" {
			c.io.Println("Cancelled.")
			return nil
		}
	}

	if err := c.basemaps.RemoveArea(ctx, areaID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("area %s not found", areaID)
		}
		return fmt.Errorf("failed to remove area: %w", err)
	}
	c.io.Printf("✓ Area %s removed\n", areaID)
	return nil
}

func (c *Cli) runTiles(ctx context.Context, args []string) error {
	if len(args) != 1 || args[0] != "download" {
		return usageError("ground tiles download")
	}

	c.io.Println("Downloading pending tiles...")
	if err := c.basemaps.DownloadPendingTiles(ctx, basemap.DownloadJobKey); err != nil {
		return fmt.Errorf("tile download failed: %w", err)
	}

	areas, err := c.basemaps.Areas(ctx)
	if err != nil {
		return fmt.Errorf("failed to get areas: %w", err)
	}
	for _, area := range areas {
		c.io.Printf("  %-40s %s\n", area.Name, area.State)
	}
	return nil
}
