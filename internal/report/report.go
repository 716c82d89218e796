// Package report renders the end-of-run summary from handlebars templates.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/aymerick/raymond"

	"github.com/fulmenhq/apkpatch/internal/pipeline"
)

const summaryTemplate = `Patch run completed in {{elapsed}}

| Stage | Duration |
|-------|----------|
{{#each stages}}| {{stage}} | {{duration}} |
{{/each}}
Output: {{output}}
`

// Summary renders a markdown summary of a completed run.
func Summary(result *pipeline.RunResult) (string, error) {
	stages := make([]map[string]string, 0, len(result.Stages))
	for _, s := range result.Stages {
		stages = append(stages, map[string]string{
			"stage":    string(s.Stage),
			"duration": formatDuration(s.Duration),
		})
	}

	data := map[string]interface{}{
		"elapsed": formatDuration(result.Elapsed),
		"stages":  stages,
		"output":  result.OutputPath,
	}

	out, err := raymond.Render(summaryTemplate, data)
	if err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	return out, nil
}

// BannerLines returns the short success banner framed by the caller.
func BannerLines(result *pipeline.RunResult) []string {
	return []string{
		"apkpatch: patched package ready",
		"output: " + result.OutputPath,
		"elapsed: " + formatDuration(result.Elapsed),
	}
}

// formatDuration trims sub-millisecond noise from stage timings.
func formatDuration(d time.Duration) string {
	s := d.Round(time.Millisecond).String()
	if strings.HasSuffix(s, "m0s") {
		s = strings.TrimSuffix(s, "0s")
	}
	return s
}
