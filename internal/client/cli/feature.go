package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/iudanet/ground/internal/client/storage"
	"github.com/iudanet/ground/internal/models"
	"github.com/iudanet/ground/internal/validation"
)

const featureUsage = "ground feature <add|move|delete|list> ..."

func (c *Cli) runFeature(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError(featureUsage)
	}

	switch args[0] {
	case "add":
		return c.runFeatureAdd(ctx, args[1:])
	case "move":
		return c.runFeatureMove(ctx, args[1:])
	case "delete":
		return c.runFeatureDelete(ctx, args[1:])
	case "list":
		return c.runFeatureList(ctx, args[1:])
	default:
		return usageError(featureUsage)
	}
}

func (c *Cli) runFeatureAdd(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usageError("ground feature add <project> <layer> <lat,lng>")
	}
	projectID, layerID := args[0], args[1]

	user, err := c.requireSession()
	if err != nil {
		return err
	}
	point, err := parsePoint(args[2])
	if err != nil {
		return err
	}

	project, err := c.getProject(ctx, projectID)
	if err != nil {
		return err
	}
	if _, ok := project.Layer(layerID); !ok {
		return fmt.Errorf("project %s has no layer %q", projectID, layerID)
	}

	m := &models.FeatureMutation{
		Geometry: point,
		MutationBase: models.MutationBase{
			Type:      models.MutationTypeCreate,
			ProjectID: projectID,
			FeatureID: uuid.NewString(),
			LayerID:   layerID,
			UserID:    user.ID,
		},
	}
	if err := c.sync.Apply(ctx, m); err != nil {
		return fmt.Errorf("failed to add feature: %w", err)
	}

	c.io.Printf("✓ Feature %s added, queued for upload\n", m.FeatureID)
	return nil
}

func (c *Cli) runFeatureMove(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("ground feature move <feature> <lat,lng>")
	}

	user, err := c.requireSession()
	if err != nil {
		return err
	}
	point, err := parsePoint(args[1])
	if err != nil {
		return err
	}
	feature, err := c.getFeature(ctx, args[0])
	if err != nil {
		return err
	}

	m := &models.FeatureMutation{
		Geometry:     point,
		MutationBase: featureBase(feature, models.MutationTypeUpdate, user),
	}
	if err := c.sync.Apply(ctx, m); err != nil {
		return fmt.Errorf("failed to move feature: %w", err)
	}

	c.io.Printf("✓ Feature %s moved, queued for upload\n", feature.ID)
	return nil
}

func (c *Cli) runFeatureDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("ground feature delete <feature>")
	}

	user, err := c.requireSession()
	if err != nil {
		return err
	}
	feature, err := c.getFeature(ctx, args[0])
	if err != nil {
		return err
	}

	m := &models.FeatureMutation{MutationBase: featureBase(feature, models.MutationTypeDelete, user)}
	if err := c.sync.Apply(ctx, m); err != nil {
		return fmt.Errorf("failed to delete feature: %w", err)
	}

	c.io.Printf("✓ Feature %s deleted, queued for upload\n", feature.ID)
	return nil
}

func (c *Cli) runFeatureList(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("ground feature list <project>")
	}

	features, err := c.store.GetFeatures(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get features: %w", err)
	}
	if len(features) == 0 {
		c.io.Println("No features.")
		return nil
	}

	tw := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tLAYER\tGEOMETRY\tMODIFIED BY")
	for _, f := range features {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			f.ID, f.LayerID, describeGeometry(f.Geometry), displayName(f.LastModified.User))
	}
	return tw.Flush()
}

func featureBase(f *models.Feature, typ models.MutationType, user models.User) models.MutationBase {
	return models.MutationBase{
		Type:      typ,
		ProjectID: f.ProjectID,
		FeatureID: f.ID,
		LayerID:   f.LayerID,
		UserID:    user.ID,
	}
}

func (c *Cli) getProject(ctx context.Context, id string) (*models.Project, error) {
	project, err := c.store.GetProject(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("project %s is not available offline. Run 'ground pull %s' first", id, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

func (c *Cli) getFeature(ctx context.Context, id string) (*models.Feature, error) {
	if err := validation.ValidateID("feature", id); err != nil {
		return nil, err
	}
	feature, err := c.store.GetFeature(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("feature %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feature: %w", err)
	}
	if feature.IsDeleted() {
		return nil, fmt.Errorf("feature %s is deleted", id)
	}
	return feature, nil
}

func parsePoint(s string) (orb.Point, error) {
	lat, lng, err := validation.ParsePoint(s)
	if err != nil {
		return orb.Point{}, err
	}
	return orb.Point{lng, lat}, nil
}

// describeGeometry коротко описывает геометрию для таблиц
func describeGeometry(g orb.Geometry) string {
	switch g := g.(type) {
	case nil:
		return "-"
	case orb.Point:
		return fmt.Sprintf("%.6f,%.6f", g.Lat(), g.Lon())
	default:
		data, err := geojson.NewGeometry(g).MarshalJSON()
		if err != nil || len(data) > 60 {
			return g.GeoJSONType()
		}
		return string(data)
	}
}
