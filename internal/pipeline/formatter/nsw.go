package formatter

import (
	"context"

	"matter_pipeline_backend/internal/pipeline/domain"
)

// ServiceTypeNSW is the New South Wales conveyancing business line.
const ServiceTypeNSW = "conveyancing-nsw"

func init() {
	Register(ServiceTypeNSW, func(deps Deps) Formatter {
		return &NSWFormatter{base: newBase(deps)}
	})
}

// NSWFormatter derives manifests for New South Wales conveyancing matters.
// NSW contracts carry no deposit holder and settle against an exchange-based
// workflow, so the variant is narrower than Queensland's.
type NSWFormatter struct {
	base
}

func (f *NSWFormatter) Participants(ctx context.Context) (domain.ManifestParticipants, error) {
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

	p, err := f.existingParticipant(ctx, "practitioner_id", domain.RolePractitioner, intent)
	if err != nil {
		return out, err
	}
	if p != nil {
		out.Existing = append(out.Existing, *p)
	}

	links, err := f.computeLinks(ctx, out, intent, []domain.ParticipantRole{
		domain.RoleAgent,
		domain.RoleOtherPartySolicitor,
	})
	if err != nil {
		return out, err
	}
	out.LinkMatter = links

	return out, nil
}

var nswPrepareTable = []fieldMapping{
	{source: "contract_date", collection: "keydates", field: "exchange_date"},
	{source: "settlement_date", collection: "keydates", field: "completion_date"},
	{source: "purchase_price", collection: "price_details", field: "purchase_price", transform: sanitizeMoney},
	{source: "deposit_initial", collection: "price_details", field: "deposit", transform: sanitizeMoney},
	{source: "title_reference", collection: "property", field: "folio_identifier"},
}

func (f *NSWFormatter) DataCollections(ctx context.Context) (domain.ManifestDataCollections, error) {
	var out domain.ManifestDataCollections

	prepare, err := f.collectionValues(ctx, nswPrepareTable)
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

func (f *NSWFormatter) Filenotes(ctx context.Context) ([]domain.Filenote, error) {
	conditions, err := f.value(ctx, "special_conditions")
	if err != nil {
		return nil, err
	}
	if conditions == "" {
		return nil, nil
	}
	return []domain.Filenote{{Text: "Special conditions noted on the contract: " + conditions}}, nil
}

func (f *NSWFormatter) Tasks(ctx context.Context) ([]domain.Task, error) {
	settlement, err := f.value(ctx, "settlement_date")
	if err != nil {
		return nil, err
	}
	if settlement == "" {
		return nil, nil
	}
	return []domain.Task{{Name: "Diarise completion date " + settlement}}, nil
}

func (f *NSWFormatter) Files(_ context.Context) ([]domain.DocumentRef, error) {
	return f.deps.File.Documents, nil
}

func (f *NSWFormatter) Steps(ctx context.Context) (domain.StepChange, error) {
	decision, err := f.propertyDecision(ctx)
	if err != nil {
		return domain.StepChange{}, err
	}
	if decision.Subtype == SubtypeNoSaleOptions {
		return domain.StepChange{}, nil
	}

	intent, err := f.intent(ctx)
	if err != nil {
		return domain.StepChange{}, err
	}

	step, err := f.deps.Config.Get(ctx, f.deps.Job.Tenant, "step.contracts_exchanged", intent)
	if err != nil {
		return domain.StepChange{}, &domain.ConfigError{Key: "step.contracts_exchanged", Err: err}
	}

	return domain.StepChange{
		TargetStep:       step,
		NatureOfProperty: decision.Nature,
	}, nil
}

func (f *NSWFormatter) Meta(ctx context.Context) (map[string]string, error) {
	intent, err := f.intent(ctx)
	if err != nil {
		return nil, err
	}
	decision, err := f.propertyDecision(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"state":              "NSW",
		"transaction_type":   intent,
		"nature_of_property": decision.Nature,
	}, nil
}

var _ Formatter = (*NSWFormatter)(nil)
