package agent

import (
	"regexp"
	"strings"
)

var (
	// finalResultPattern delimits the answer in actor and reviewer
	// responses; updatedGuidelinePattern delimits reflection output.
	// Both match across newlines, first match wins.
	finalResultPattern      = regexp.MustCompile(`(?s)<final_result>(.*)</final_result>`)
	updatedGuidelinePattern = regexp.MustCompile(`(?s)<updated_guideline>(.*)</updated_guideline>`)
)

// extractTagged pulls the delimited answer out of a model response,
// falling back to the full text when the tag pair is absent.
func extractTagged(pattern *regexp.Regexp, response string) string {
	if match := pattern.FindStringSubmatch(response); match != nil {
		return strings.TrimSpace(match[1])
	}
	return strings.TrimSpace(response)
}
