package template

import (
	"fmt"
	"strconv"
	"strings"

	slackapi "github.com/slack-go/slack"

	"github.com/jonny/pdm-service/internal/domain/port/outbound"
)

// riskEmoji maps a risk level to an emoji prefix.
func riskEmoji(level string) string {
	switch strings.ToUpper(level) {
	case "HIGH":
		return ":red_circle:"
	case "MEDIUM":
		return ":large_yellow_circle:"
	case "LOW":
		return ":large_green_circle:"
	default:
		return ":large_blue_circle:"
	}
}

// FallbackText is the plain-text summary shown where blocks are not rendered.
func FallbackText(n outbound.RiskNotification) string {
	return fmt.Sprintf("[%s] %s failure probability %s%%", strings.ToUpper(n.RiskLevel), n.MachineID, formatFloat(n.FailureProbability))
}

// BuildRiskBlocks constructs Block Kit blocks for a high-risk prediction.
func BuildRiskBlocks(n outbound.RiskNotification) []slackapi.Block {
	header := slackapi.NewSectionBlock(
		slackapi.NewTextBlockObject(slackapi.MarkdownType,
			fmt.Sprintf("%s *%s risk of failure on %s*", riskEmoji(n.RiskLevel), strings.ToUpper(n.RiskLevel), n.MachineID), false, false),
		nil, nil,
	)

	fields := []*slackapi.TextBlockObject{
		slackapi.NewTextBlockObject(slackapi.MarkdownType,
			fmt.Sprintf("*Failure Probability*\n%s%%", formatFloat(n.FailureProbability)), false, false),
		slackapi.NewTextBlockObject(slackapi.MarkdownType,
			fmt.Sprintf("*Health Score*\n%s%%", formatFloat(n.HealthScore)), false, false),
		slackapi.NewTextBlockObject(slackapi.MarkdownType,
			fmt.Sprintf("*Top Risk Factor*\n%s (%s)", n.TopRiskFactor, strconv.FormatFloat(n.TopImpactValue, 'f', 4, 64)), false, false),
		slackapi.NewTextBlockObject(slackapi.MarkdownType,
			fmt.Sprintf("*Est. Monthly Savings*\n$%s", strconv.FormatFloat(n.MonthlySavings, 'f', 2, 64)), false, false),
	}

	footer := slackapi.NewContextBlock("",
		slackapi.NewTextBlockObject(slackapi.MarkdownType,
			fmt.Sprintf("Prediction `#%d` at %s", n.RecordID, n.Timestamp), false, false),
	)

	return []slackapi.Block{header, slackapi.NewDividerBlock(), slackapi.NewSectionBlock(nil, fields, nil), footer}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
