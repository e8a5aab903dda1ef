package domain

import "fmt"

// Issue is a non-fatal data-quality finding surfaced to a human reviewer as
// a filenote. Issues never halt computation.
type Issue struct {
	Description string            `json:"description"`
	Meta        map[string]string `json:"meta,omitempty"`
}

// Issues is an explicit accumulator threaded through formatters and the
// populator, replacing hidden shared mutable lists.
type Issues struct {
	items []Issue
}

// Add records an issue.
func (a *Issues) Add(description string) {
	a.items = append(a.items, Issue{Description: description})
}

// Addf records a formatted issue.
func (a *Issues) Addf(format string, args ...any) {
	a.Add(fmt.Sprintf(format, args...))
}

// AddMeta records an issue with attached metadata.
func (a *Issues) AddMeta(description string, meta map[string]string) {
	a.items = append(a.items, Issue{Description: description, Meta: meta})
}

// Extend appends previously collected issues.
func (a *Issues) Extend(issues []Issue) {
	a.items = append(a.items, issues...)
}

// Items returns the collected issues in recording order.
func (a *Issues) Items() []Issue {
	return a.items
}

// Len returns the number of collected issues.
func (a *Issues) Len() int {
	return len(a.items)
}
