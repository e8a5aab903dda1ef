package domain

// DataItem is the uniform named-value record returned by any data source.
// Type and Required describe the reference field, not the concrete value.
type DataItem struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Present reports whether the item carries a non-empty value.
func (d DataItem) Present() bool {
	return d.Value != ""
}
