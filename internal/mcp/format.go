package mcp

import (
	"fmt"
	"strings"
)

// FormatResults renders search_site output as markdown for clients that
// only read text content.
func FormatResults(out SearchSiteOutput) string {
	if len(out.Results) == 0 {
		if out.Message != "" {
			return out.Message
		}
		return fmt.Sprintf("No results found for \"%s\".", out.Query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", out.Heading)
	if len(out.Results) < out.Total {
		fmt.Fprintf(&sb, "Showing the top %d.\n\n", len(out.Results))
	}

	for i, r := range out.Results {
		fmt.Fprintf(&sb, "### %d. [%s](%s) (score: %.2f)\n", i+1, r.Title, r.Ref, r.Score)
		if len(r.Tags) > 0 {
			fmt.Fprintf(&sb, "**Tags:** %s\n", strings.Join(r.Tags, ", "))
		}
		if r.Description != "" {
			sb.WriteString("\n")
			sb.WriteString(r.Description)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
