package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/iudanet/ground/internal/client/storage"
	"github.com/iudanet/ground/internal/models"
	"github.com/iudanet/ground/internal/validation"
)

const observationUsage = "ground observation <add|edit|delete|list> ..."

func (c *Cli) runObservation(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError(observationUsage)
	}

	switch args[0] {
	case "add":
		return c.runObservationAdd(ctx, args[1:])
	case "edit":
		return c.runObservationEdit(ctx, args[1:])
	case "delete":
		return c.runObservationDelete(ctx, args[1:])
	case "list":
		return c.runObservationList(ctx, args[1:])
	default:
		return usageError(observationUsage)
	}
}

func (c *Cli) runObservationAdd(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("ground observation add <feature> <form> field=value...")
	}

	user, err := c.requireSession()
	if err != nil {
		return err
	}
	feature, err := c.getFeature(ctx, args[0])
	if err != nil {
		return err
	}
	form, err := c.getForm(ctx, feature.ProjectID, feature.LayerID, args[1])
	if err != nil {
		return err
	}
	deltas, err := parseResponses(form, args[2:])
	if err != nil {
		return err
	}
	if err := checkRequired(form, nil, deltas); err != nil {
		return err
	}

	m := &models.ObservationMutation{
		ObservationID:  uuid.NewString(),
		FormID:         form.ID,
		ResponseDeltas: deltas,
		MutationBase:   featureBase(feature, models.MutationTypeCreate, user),
	}
	if err := c.sync.Apply(ctx, m); err != nil {
		return fmt.Errorf("failed to add observation: %w", err)
	}

	c.io.Printf("✓ Observation %s added, queued for upload\n", m.ObservationID)
	return nil
}

func (c *Cli) runObservationEdit(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("ground observation edit <observation> field=value...")
	}

	user, err := c.requireSession()
	if err != nil {
		return err
	}
	observation, err := c.getObservation(ctx, args[0])
	if err != nil {
		return err
	}
	form, err := c.getForm(ctx, observation.ProjectID, observation.LayerID, observation.FormID)
	if err != nil {
		return err
	}
	deltas, err := parseResponses(form, args[1:])
	if err != nil {
		return err
	}
	if err := checkRequired(form, observation.Responses, deltas); err != nil {
		return err
	}

	m := observationMutation(observation, models.MutationTypeUpdate, user)
	m.ResponseDeltas = deltas
	if err := c.sync.Apply(ctx, m); err != nil {
		return fmt.Errorf("failed to edit observation: %w", err)
	}

	c.io.Printf("✓ Observation %s updated, queued for upload\n", observation.ID)
	return nil
}

func (c *Cli) runObservationDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("ground observation delete <observation>")
	}

	user, err := c.requireSession()
	if err != nil {
		return err
	}
	observation, err := c.getObservation(ctx, args[0])
	if err != nil {
		return err
	}

	if err := c.sync.Apply(ctx, observationMutation(observation, models.MutationTypeDelete, user)); err != nil {
		return fmt.Errorf("failed to delete observation: %w", err)
	}

	c.io.Printf("✓ Observation %s deleted, queued for upload\n", observation.ID)
	return nil
}

func (c *Cli) runObservationList(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("ground observation list <feature>")
	}

	observations, err := c.store.GetObservations(ctx, args[0], "")
	if err != nil {
		return fmt.Errorf("failed to get observations: %w", err)
	}
	if len(observations) == 0 {
		c.io.Println("No observations.")
		return nil
	}

	tw := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tFORM\tRESPONSES\tMODIFIED BY")
	for _, o := range observations {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			o.ID, o.FormID, formatResponses(o.Responses), displayName(o.LastModified.User))
	}
	return tw.Flush()
}

func observationMutation(o *models.Observation, typ models.MutationType, user models.User) *models.ObservationMutation {
	return &models.ObservationMutation{
		ObservationID: o.ID,
		FormID:        o.FormID,
		MutationBase: models.MutationBase{
			Type:      typ,
			ProjectID: o.ProjectID,
			FeatureID: o.FeatureID,
			LayerID:   o.LayerID,
			UserID:    user.ID,
		},
	}
}

func (c *Cli) getObservation(ctx context.Context, id string) (*models.Observation, error) {
	if err := validation.ValidateID("observation", id); err != nil {
		return nil, err
	}
	observation, err := c.store.GetObservation(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("observation %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get observation: %w", err)
	}
	if observation.IsDeleted() {
		return nil, fmt.Errorf("observation %s is deleted", id)
	}
	return observation, nil
}

func (c *Cli) getForm(ctx context.Context, projectID, layerID, formID string) (models.Form, error) {
	project, err := c.getProject(ctx, projectID)
	if err != nil {
		return models.Form{}, err
	}
	layer, ok := project.Layer(layerID)
	if !ok {
		return models.Form{}, fmt.Errorf("project %s has no layer %q", projectID, layerID)
	}
	form, ok := layer.Form(formID)
	if !ok {
		return models.Form{}, fmt.Errorf("layer %s has no form %q", layerID, formID)
	}
	return form, nil
}

// parseResponses разбирает аргументы field=value по типам полей формы.
// Пустое значение удаляет ответ
func parseResponses(form models.Form, args []string) ([]models.ResponseDelta, error) {
	deltas := make([]models.ResponseDelta, 0, len(args))
	for _, arg := range args {
		fieldID, value, ok := strings.Cut(arg, "=")
		if !ok || fieldID == "" {
			return nil, fmt.Errorf("response %q must be field=value", arg)
		}
		field, ok := form.Field(fieldID)
		if !ok {
			return nil, fmt.Errorf("form %s has no field %q", form.ID, fieldID)
		}

		delta := models.ResponseDelta{FieldID: fieldID}
		if value != "" {
			response, err := parseResponse(field, value)
			if err != nil {
				return nil, err
			}
			delta.NewResponse = &response
		}
		deltas = append(deltas, delta)
	}
	return deltas, nil
}

func parseResponse(field models.Field, value string) (models.Response, error) {
	switch field.Type {
	case models.FieldTypeNumber:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return models.Response{}, fmt.Errorf("field %s expects a number, got %q", field.ID, value)
		}
		return models.NumberResponse(n), nil
	case models.FieldTypeMultipleChoice:
		var ids []string
		for _, code := range strings.Split(value, ",") {
			id, ok := optionID(field, strings.TrimSpace(code))
			if !ok {
				return models.Response{}, fmt.Errorf("field %s has no option %q", field.ID, code)
			}
			ids = append(ids, id)
		}
		return models.MultipleChoiceResponse(ids...), nil
	default:
		return models.TextResponse(value), nil
	}
}

// optionID находит вариант ответа по ID или коду
func optionID(field models.Field, code string) (string, bool) {
	for _, option := range field.Options {
		if option.ID == code || option.Code == code {
			return option.ID, true
		}
	}
	return "", false
}

// checkRequired проверяет, что после применения deltas заполнены обязательные поля
func checkRequired(form models.Form, current models.ResponseMap, deltas []models.ResponseDelta) error {
	result := current.Apply(deltas)
	for _, field := range form.Fields {
		if _, ok := result[field.ID]; field.Required && !ok {
			return fmt.Errorf("field %s is required", field.ID)
		}
	}
	return nil
}

func formatResponses(responses models.ResponseMap) string {
	fieldIDs := make([]string, 0, len(responses))
	for fieldID := range responses {
		fieldIDs = append(fieldIDs, fieldID)
	}
	sort.Strings(fieldIDs)

	parts := make([]string, 0, len(fieldIDs))
	for _, fieldID := range fieldIDs {
		parts = append(parts, fieldID+"="+responses[fieldID].String())
	}
	return strings.Join(parts, " ")
}
