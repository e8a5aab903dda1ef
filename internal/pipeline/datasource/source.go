// Package datasource provides uniform named-value access over the physical
// origins of business data: the document-extraction store, the manual
// correction overlay, the CRM deal aggregate, and inbound webhook payloads.
// Formatters only ever see the Source contract, so they are origin-agnostic.
package datasource

import (
	"context"
	"fmt"

	"matter_pipeline_backend/internal/pipeline/domain"
)

// Source returns the DataItem for a known reference field. Asking for a
// field outside the reference catalog is an error; a known field with no
// value yields an empty item.
type Source interface {
	Get(ctx context.Context, name string) (domain.DataItem, error)
}

// FieldSpec describes a reference field's metadata.
type FieldSpec struct {
	Type     string
	Required bool
}

// Catalog is the closed set of reference fields a source can serve.
type Catalog map[string]FieldSpec

// Item builds a DataItem for name carrying the catalog's metadata.
// Unknown names are an error regardless of the value.
func (c Catalog) Item(name, value string) (domain.DataItem, error) {
	spec, ok := c[name]
	if !ok {
		return domain.DataItem{}, fmt.Errorf("unknown reference field %q", name)
	}
	return domain.DataItem{
		Name:     name,
		Value:    value,
		Type:     spec.Type,
		Required: spec.Required,
	}, nil
}

const (
	typeString  = "string"
	typeEmail   = "email"
	typePhone   = "phone"
	typeDate    = "date"
	typeMoney   = "money"
	typeBoolean = "boolean"
)

// ReferenceFields is the reference catalog shared by every source adapter.
var ReferenceFields = buildReferenceFields()

func buildReferenceFields() Catalog {
	c := Catalog{
		"transaction_type":     {Type: typeString, Required: true},
		"state":                {Type: typeString, Required: true},
		"contract_date":        {Type: typeDate, Required: false},
		"settlement_date":      {Type: typeDate, Required: false},
		"purchase_price":       {Type: typeMoney, Required: false},
		"deposit_initial":      {Type: typeMoney, Required: false},
		"deposit_balance":      {Type: typeMoney, Required: false},
		"title_reference":      {Type: typeString, Required: false},
		"property_description": {Type: typeString, Required: false},
		"title_type":           {Type: typeString, Required: false},
		"layout_variant":       {Type: typeString, Required: false},
		"vacant_land":          {Type: typeBoolean, Required: false},
		"built_on":             {Type: typeBoolean, Required: false},
		"special_conditions":   {Type: typeString, Required: false},
		"practitioner_id":      {Type: typeString, Required: false},
		"file_owner_id":        {Type: typeString, Required: false},
		"client_code":          {Type: typeString, Required: false},
	}

	// Every participant role serves the same field shape under its prefix.
	for _, role := range []domain.ParticipantRole{
		domain.RoleClient,
		domain.RoleClientTwo,
		domain.RoleOtherParty,
		domain.RoleOtherPartySolicitor,
		domain.RoleAgent,
		domain.RoleDepositHolder,
	} {
		prefix := role.FieldPrefix()
		c[prefix+"_name"] = FieldSpec{Type: typeString, Required: role == domain.RoleClient}
		c[prefix+"_email"] = FieldSpec{Type: typeEmail}
		c[prefix+"_phone"] = FieldSpec{Type: typePhone}
		c[prefix+"_reference"] = FieldSpec{Type: typeString}
		for _, part := range addressParts {
			c[prefix+"_"+part] = FieldSpec{Type: typeString}
		}
	}

	// Property address lives under its own prefix.
	for _, part := range addressParts {
		c["property_"+part] = FieldSpec{Type: typeString, Required: part == "street_name"}
	}

	return c
}

var addressParts = []string{
	"unit",
	"street_number",
	"street_name",
	"street_type",
	"suburb",
	"address_state",
	"postcode",
}

// AddressParts returns the composable address field suffixes in
// composition order.
func AddressParts() []string {
	return addressParts
}
