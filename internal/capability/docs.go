// ABOUTME: Renders skill documentation into a prompt-ready markdown block
// ABOUTME: Pure function of the stored documentation, no side effects

package capability

import (
	"fmt"
	"strings"
)

// renderSkillDocs formats skill documentation as markdown for inclusion in
// the agent's system prompt.
func renderSkillDocs(docs *SkillDocumentation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", docs.Title)
	fmt.Fprintf(&b, "%s\n\n", docs.Description)
	fmt.Fprintf(&b, "## When to use\n%s\n\n", docs.WhenToUse)
	fmt.Fprintf(&b, "## Instructions\n%s\n", docs.Instructions)

	for _, ex := range docs.Examples {
		fmt.Fprintf(&b, "\n### Example: %s\n", ex.Scenario)
		fmt.Fprintf(&b, "User: %q\n", ex.UserInput)
		fmt.Fprintf(&b, "Expected: %s\n", ex.ExpectedBehavior)
	}

	return strings.TrimSpace(b.String())
}
