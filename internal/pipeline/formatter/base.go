package formatter

import (
	"context"
	"strconv"
	"strings"

	"matter_pipeline_backend/internal/pipeline/domain"
	"matter_pipeline_backend/platform/phone"
)

// base carries the machinery shared by every formatter variant: data-source
// access, configuration lookups, the issue accumulator, and the
// nature-of-property decision cache.
type base struct {
	deps   Deps
	issues domain.Issues

	decided  bool
	decision PropertyDecision
}

func newBase(deps Deps) base {
	return base{deps: deps}
}

// Issues returns the findings collected so far.
func (b *base) Issues() []domain.Issue {
	return b.issues.Items()
}

func (b *base) item(ctx context.Context, name string) (domain.DataItem, error) {
	return b.deps.Source.Get(ctx, name)
}

// value returns the trimmed value for a reference field. A required field
// with no value is recorded as an issue; computation continues with the
// empty string.
func (b *base) value(ctx context.Context, name string) (string, error) {
	item, err := b.item(ctx, name)
	if err != nil {
		return "", err
	}
	v := strings.TrimSpace(item.Value)
	if v == "" && item.Required {
		b.issues.Addf("required field %q has no value", name)
	}
	return v, nil
}

// intent resolves the transaction intent: "buy" or "sell". Anything else is
// recorded as an issue and defaults to buy.
func (b *base) intent(ctx context.Context) (string, error) {
	v, err := b.value(ctx, "transaction_type")
	if err != nil {
		return "", err
	}
	switch strings.ToLower(v) {
	case "buy", "purchase":
		return "buy", nil
	case "sell", "sale":
		return "sell", nil
	case "":
		return "buy", nil
	default:
		b.issues.Addf("unrecognized transaction type %q; assuming a purchase", v)
		return "buy", nil
	}
}

// mustID resolves a type-id mapping that the pipeline cannot proceed
// without. Failure is structural, not a data gap.
func (b *base) mustID(ctx context.Context, key string, tags ...string) (int64, error) {
	raw, err := b.deps.Config.Get(ctx, b.deps.Job.Tenant, key, tags...)
	if err != nil {
		return 0, &domain.ConfigError{Key: key, Err: err}
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &domain.ConfigError{Key: key, Err: err}
	}
	return id, nil
}

// address reads and composes the address parts under a field prefix.
func (b *base) address(ctx context.Context, prefix string) (AddressParts, error) {
	var parts AddressParts
	fields := []struct {
		suffix string
		dest   *string
	}{
		{"unit", &parts.Unit},
		{"street_number", &parts.StreetNumber},
		{"street_name", &parts.StreetName},
		{"street_type", &parts.StreetType},
		{"suburb", &parts.Suburb},
		{"address_state", &parts.State},
		{"postcode", &parts.Postcode},
	}
	for _, f := range fields {
		item, err := b.item(ctx, prefix+"_"+f.suffix)
		if err != nil {
			return AddressParts{}, err
		}
		*f.dest = strings.TrimSpace(item.Value)
	}
	return parts, nil
}

// participant builds a new participant for a role, or returns nil when the
// role's name field is empty (the slot does not apply to this transaction).
// The role's participant-type id is a must-exist configuration lookup.
func (b *base) participant(ctx context.Context, role domain.ParticipantRole, intent string) (*domain.NewParticipant, error) {
	prefix := role.FieldPrefix()

	name, err := b.value(ctx, prefix+"_name")
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}

	typeID, err := b.mustID(ctx, "participant_type."+string(role), intent)
	if err != nil {
		return nil, err
	}

	p := &domain.NewParticipant{Role: role, TypeID: typeID}

	if IsCompanyName(name) {
		p.IsCompany = true
		p.CompanyName = name
	} else {
		p.Name = ParseName(name)
	}

	email, err := b.value(ctx, prefix+"_email")
	if err != nil {
		return nil, err
	}
	p.Email = email

	rawPhone, err := b.value(ctx, prefix+"_phone")
	if err != nil {
		return nil, err
	}
	if rawPhone != "" {
		normalized := phone.NormalizeE164(rawPhone)
		if normalized != rawPhone {
			b.issues.Addf("phone number for %s normalized from %q to %q", role, rawPhone, normalized)
		}
		p.Phone = normalized
	}

	addr, err := b.address(ctx, prefix)
	if err != nil {
		return nil, err
	}
	p.Address = addr.Compose()

	return p, nil
}

// fieldMapping is one row of a declarative (source-field, collection,
// target-field, optional transform) table.
type fieldMapping struct {
	source     string
	collection string
	field      string
	transform  func(string) string
}

// collectionValues walks a field-mapping table and emits a collection value
// for every present source field. A transform that changes the value is a
// sanitized substitution and is recorded as an issue.
func (b *base) collectionValues(ctx context.Context, rows []fieldMapping) ([]domain.CollectionValue, error) {
	var out []domain.CollectionValue
	for _, row := range rows {
		v, err := b.value(ctx, row.source)
		if err != nil {
			return nil, err
		}
		if v == "" {
			continue
		}
		if row.transform != nil {
			cleaned := row.transform(v)
			if cleaned != v {
				b.issues.Addf("value for %q sanitized from %q to %q", row.source, v, cleaned)
			}
			v = cleaned
		}
		out = append(out, domain.CollectionValue{
			Collection: row.collection,
			Field:      row.field,
			Value:      v,
		})
	}
	return out, nil
}

// sanitizeMoney strips currency symbols, grouping commas and whitespace.
func sanitizeMoney(v string) string {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(v)
	return strings.TrimSpace(cleaned)
}

// propertyDecision computes and caches the nature-of-property decision.
// The advisory, when present, is recorded exactly once as an issue.
func (b *base) propertyDecision(ctx context.Context) (PropertyDecision, error) {
	if b.decided {
		return b.decision, nil
	}

	intent, err := b.intent(ctx)
	if err != nil {
		return PropertyDecision{}, err
	}

	layout, err := b.value(ctx, "layout_variant")
	if err != nil {
		return PropertyDecision{}, err
	}
	if layout == "" {
		layout = LayoutStandard
	}

	titleType, err := b.value(ctx, "title_type")
	if err != nil {
		return PropertyDecision{}, err
	}

	vacant, err := b.value(ctx, "vacant_land")
	if err != nil {
		return PropertyDecision{}, err
	}
	builtOn, err := b.value(ctx, "built_on")
	if err != nil {
		return PropertyDecision{}, err
	}

	addr, err := b.address(ctx, "property")
	if err != nil {
		return PropertyDecision{}, err
	}

	b.decision = DecidePropertyNature(PropertyInputs{
		LayoutVariant:    layout,
		CommunityTitled:  strings.Contains(strings.ToLower(titleType), "community"),
		Sell:             intent == "sell",
		MultiUnitAddress: addr.LooksMultiUnit(),
		VacantLand:       strings.EqualFold(vacant, "true"),
		BuiltOn:          strings.EqualFold(builtOn, "true"),
	})
	b.decided = true

	if b.decision.Advisory != "" {
		b.issues.Add(b.decision.Advisory)
	}

	return b.decision, nil
}

// lotPlanValues extracts lot and plan references from the free-text property
// description into collection values. Multiple lots raise an issue; only the
// first is applied.
func (b *base) lotPlanValues(ctx context.Context, collection string) ([]domain.CollectionValue, error) {
	text, err := b.value(ctx, "property_description")
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}

	var out []domain.CollectionValue

	lots := ExtractLots(text)
	if len(lots) > 0 {
		out = append(out, domain.CollectionValue{Collection: collection, Field: "lot_number", Value: lots[0]})
	}
	if len(lots) > 1 {
		b.issues.AddMeta("property description names multiple lots; only the first was applied",
			map[string]string{"lots": strings.Join(lots, ",")})
	}

	plans := ExtractPlans(text)
	if len(plans) > 0 {
		first := plans[0]
		if first.Type != "" {
			out = append(out, domain.CollectionValue{Collection: collection, Field: "plan_type", Value: first.Type})
		}
		if first.Number != "" {
			out = append(out, domain.CollectionValue{Collection: collection, Field: "plan_number", Value: first.Number})
		}
		if first.Type == "" || first.Number == "" {
			b.issues.Addf("plan reference in property description is incomplete (type %q, number %q)", first.Type, first.Number)
		}
	}
	if len(plans) > 1 {
		b.issues.Addf("property description names %d plan references; only the first was applied", len(plans))
	}

	return out, nil
}

// computeLinks emits the link-to-client relations that apply given the new
// participants actually produced. A link's type id is looked up only when a
// matching participant exists, so an unused relation never hard-fails.
func (b *base) computeLinks(ctx context.Context, participants domain.ManifestParticipants, intent string, roles []domain.ParticipantRole) ([]domain.ParticipantLink, error) {
	var links []domain.ParticipantLink
	for _, role := range roles {
		if len(participants.NewParticipantsByRole(role)) == 0 {
			continue
		}
		typeID, err := b.mustID(ctx, "link_type."+string(role), intent)
		if err != nil {
			return nil, err
		}
		links = append(links, domain.ParticipantLink{
			SourceRole: role,
			TargetRole: domain.RoleClient,
			TypeID:     typeID,
		})
	}
	return links, nil
}

// existingParticipant resolves a cross-system participant id field into an
// existing-participant link, or nil when the field is empty. An unparsable
// id is a data gap, not a failure.
func (b *base) existingParticipant(ctx context.Context, field string, role domain.ParticipantRole, intent string) (*domain.ExistingParticipant, error) {
	raw, err := b.value(ctx, field)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		b.issues.Addf("participant id %q for %s is not numeric; link skipped", raw, role)
		return nil, nil
	}

	typeID, err := b.mustID(ctx, "participant_type."+string(role), intent)
	if err != nil {
		return nil, err
	}

	return &domain.ExistingParticipant{Role: role, ParticipantID: id, TypeID: typeID}, nil
}
