package formatter

import (
	"context"

	"matter_pipeline_backend/internal/pipeline/domain"
)

// ServiceTypeQLD is the Queensland conveyancing business line.
const ServiceTypeQLD = "conveyancing-qld"

func init() {
	Register(ServiceTypeQLD, func(deps Deps) Formatter {
		return &QLDFormatter{base: newBase(deps)}
	})
}

// QLDFormatter derives manifests for Queensland conveyancing matters. It is
// the richest variant: all participant slots, key-date and property
// collections, lot/plan extraction, and the nature-of-property step change.
type QLDFormatter struct {
	base
}

func (f *QLDFormatter) Participants(ctx context.Context) (domain.ManifestParticipants, error) {
	var out domain.ManifestParticipants

	intent, err := f.intent(ctx)
	if err != nil {
		return out, err
	}

	for _, role := range []domain.ParticipantRole{
		domain.RoleClient,
		domain.RoleClientTwo,
		domain.RoleOtherParty,
		domain.RoleOtherPartySolicitor,
		domain.RoleAgent,
		domain.RoleDepositHolder,
	} {
		p, err := f.participant(ctx, role, intent)
		if err != nil {
			return out, err
		}
		if p != nil {
			out.New = append(out.New, *p)
		}
	}

	if len(out.NewParticipantsByRole(domain.RoleClient)) == 0 {
		f.issues.Add("no client could be derived from the source data")
	}

	for _, existing := range []struct {
		field string
		role  domain.ParticipantRole
	}{
		{"practitioner_id", domain.RolePractitioner},
		{"file_owner_id", domain.RoleFileOwner},
	} {
		p, err := f.existingParticipant(ctx, existing.field, existing.role, intent)
		if err != nil {
			return out, err
		}
		if p != nil {
			out.Existing = append(out.Existing, *p)
		}
	}

	links, err := f.computeLinks(ctx, out, intent, []domain.ParticipantRole{
		domain.RoleAgent,
		domain.RoleOtherPartySolicitor,
		domain.RoleDepositHolder,
	})
	if err != nil {
		return out, err
	}
	out.LinkMatter = links

	return out, nil
}

var qldPrepareTable = []fieldMapping{
	{source: "contract_date", collection: "keydates", field: "contract_date"},
	{source: "settlement_date", collection: "keydates", field: "settlement_date"},
	{source: "purchase_price", collection: "property", field: "purchase_price", transform: sanitizeMoney},
	{source: "deposit_initial", collection: "property", field: "deposit_initial", transform: sanitizeMoney},
	{source: "deposit_balance", collection: "property", field: "deposit_balance", transform: sanitizeMoney},
	{source: "title_reference", collection: "property", field: "title_reference"},
}

func (f *QLDFormatter) DataCollections(ctx context.Context) (domain.ManifestDataCollections, error) {
	var out domain.ManifestDataCollections

	prepare, err := f.collectionValues(ctx, qldPrepareTable)
	if err != nil {
		return out, err
	}

	lotPlan, err := f.lotPlanValues(ctx, "property")
	if err != nil {
		return out, err
	}
	out.Prepare = append(prepare, lotPlan...)

	decision, err := f.propertyDecision(ctx)
	if err != nil {
		return out, err
	}
	out.Create = []domain.CollectionRecord{{
		Collection: "conveyancing_details",
		Values: map[string]string{
			"nature_of_property":   decision.Nature,
			"conveyancing_subtype": decision.Subtype,
		},
	}}

	return out, nil
}

func (f *QLDFormatter) Filenotes(ctx context.Context) ([]domain.Filenote, error) {
	conditions, err := f.value(ctx, "special_conditions")
	if err != nil {
		return nil, err
	}
	if conditions == "" {
		return nil, nil
	}
	return []domain.Filenote{{Text: "Special conditions noted on the contract: " + conditions}}, nil
}

func (f *QLDFormatter) Tasks(ctx context.Context) ([]domain.Task, error) {
	settlement, err := f.value(ctx, "settlement_date")
	if err != nil {
		return nil, err
	}
	if settlement == "" {
		return nil, nil
	}
	return []domain.Task{{Name: "Diarise settlement date " + settlement}}, nil
}

func (f *QLDFormatter) Files(_ context.Context) ([]domain.DocumentRef, error) {
	return f.deps.File.Documents, nil
}

func (f *QLDFormatter) Steps(ctx context.Context) (domain.StepChange, error) {
	decision, err := f.propertyDecision(ctx)
	if err != nil {
		return domain.StepChange{}, err
	}

	// Sales of community-titled property carry no step options in the
	// target system; the step change intentionally does not apply.
	if decision.Subtype == SubtypeNoSaleOptions {
		return domain.StepChange{}, nil
	}

	intent, err := f.intent(ctx)
	if err != nil {
		return domain.StepChange{}, err
	}

	step, err := f.deps.Config.Get(ctx, f.deps.Job.Tenant, "step.matter_opened", intent)
	if err != nil {
		return domain.StepChange{}, &domain.ConfigError{Key: "step.matter_opened", Err: err}
	}

	return domain.StepChange{
		TargetStep:       step,
		NatureOfProperty: decision.Nature,
	}, nil
}

func (f *QLDFormatter) Meta(ctx context.Context) (map[string]string, error) {
	intent, err := f.intent(ctx)
	if err != nil {
		return nil, err
	}
	decision, err := f.propertyDecision(ctx)
	if err != nil {
		return nil, err
	}

	state, err := f.value(ctx, "state")
	if err != nil {
		return nil, err
	}
	if state == "" {
		state = "QLD"
	}

	return map[string]string{
		"state":              state,
		"transaction_type":   intent,
		"nature_of_property": decision.Nature,
	}, nil
}

var _ Formatter = (*QLDFormatter)(nil)
