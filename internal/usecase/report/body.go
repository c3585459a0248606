package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bkyoung/tfpr/internal/domain"
)

var titleCaser = cases.Title(language.English)

// BuildPartBody renders one comment body: a part header, the labeled outcomes
// of the preceding steps, the chunk fenced as a verbatim block, and a
// trailing attribution line.
func BuildPartBody(part, total int, chunk string, outcomes domain.StepOutcomes, meta domain.RunContext) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("### Terraform Plan (part %d of %d)\n\n", part, total))

	writeOutcomeLine(&builder, "format", outcomes.Fmt)
	writeOutcomeLine(&builder, "initialization", outcomes.Init)
	writeOutcomeLine(&builder, "plan", outcomes.Plan)
	builder.WriteString("\n")

	builder.WriteString("<details><summary>Show plan</summary>\n\n")
	builder.WriteString("```terraform\n")
	builder.WriteString(chunk)
	if !strings.HasSuffix(chunk, "\n") {
		builder.WriteString("\n")
	}
	builder.WriteString("```\n\n")
	builder.WriteString("</details>\n\n")

	builder.WriteString(fmt.Sprintf("*Pusher: @%s, Action: `%s`, Working Directory: `%s`, Workflow: `%s`*\n",
		meta.Actor, meta.EventName, meta.WorkingDir, meta.Workflow))

	return builder.String()
}

func writeOutcomeLine(builder *strings.Builder, step string, outcome domain.Outcome) {
	builder.WriteString(fmt.Sprintf("#### %s: `%s`\n", titleCaser.String(step), outcome))
}
