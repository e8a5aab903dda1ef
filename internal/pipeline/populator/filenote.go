package populator

import (
	"context"
	"fmt"
	"strings"

	"matter_pipeline_backend/internal/pipeline/domain"
)

// issuesDisclaimer closes every generated review filenote.
const issuesDisclaimer = "This note was generated automatically during matter creation; please verify the items above against the source documents."

// RenderIssuesFilenote formats the accumulated issues as one numbered list
// with the disclaimer appended last.
func RenderIssuesFilenote(issues []domain.Issue) string {
	var b strings.Builder
	b.WriteString("Items for review from automated matter creation:\n")
	for i, issue := range issues {
		fmt.Fprintf(&b, "%d. %s\n", i+1, issue.Description)
		for k, v := range issue.Meta {
			fmt.Fprintf(&b, "   %s: %s\n", k, v)
		}
	}
	b.WriteString("\n")
	b.WriteString(issuesDisclaimer)
	return b.String()
}

// IssuesFilenote writes the consolidated issues filenote at the end of the
// participant stage. No issues, no note. Failure to write it is logged and
// swallowed like any other filenote.
func (p *Populator) IssuesFilenote(ctx context.Context, matterID int64, issues []domain.Issue) {
	if len(issues) == 0 {
		return
	}
	if err := p.client.CreateFileNote(ctx, matterID, RenderIssuesFilenote(issues)); err != nil {
		p.log.Error("issues filenote creation failed", "matter_id", matterID, "error", err)
	}
}
