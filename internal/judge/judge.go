// Package judge classifies a simulated outcome into an approval tier.
package judge

import "fmt"

// Tier is the approval classification of a scenario.
type Tier string

const (
	TierReject       Tier = "reject"
	TierTrialCaution Tier = "trial_caution"
	TierTrialBudget  Tier = "trial_budget"
	TierApprove      Tier = "approve"
)

// Acceptable reports whether the tier may be offered as an alternative.
func (t Tier) Acceptable() bool {
	return t != TierReject
}

// Judgment is a tier plus a rationale that names the deciding metric.
type Judgment struct {
	Tier    Tier   `json:"tier"`
	Message string `json:"message"`
}

// Thresholds. A congestion between ApproveCongestion and RejectCongestion never reaches
// the approve rule and is always judged TrialCaution.
const (
	RejectCongestion  = 120.0
	RejectComplaint   = 60.0
	BudgetFlag        = 20.0
	ApproveCongestion = 110.0
	ApproveComplaint  = 55.0
	ApproveBudget     = 15.0
)

// Judge applies the decision rules in order; the first match wins.
func Judge(congestion, complaintScore, budgetChangePercent float64) Judgment {
	switch {
	case congestion >= RejectCongestion:
		return Judgment{
			Tier:    TierReject,
			Message: fmt.Sprintf("congestion of %.0f%% exceeds capacity; service failure is imminent", congestion),
		}
	case complaintScore >= RejectComplaint:
		return Judgment{
			Tier:    TierReject,
			Message: fmt.Sprintf("complaint score of %.0f is too high for public acceptance", complaintScore),
		}
	case budgetChangePercent > BudgetFlag:
		return Judgment{
			Tier:    TierTrialBudget,
			Message: fmt.Sprintf("operationally acceptable, but the budget rises by %.1f%%; trial with fiscal review", budgetChangePercent),
		}
	case congestion <= ApproveCongestion && complaintScore < ApproveComplaint && budgetChangePercent <= ApproveBudget:
		return Judgment{
			Tier: TierApprove,
			Message: fmt.Sprintf("congestion %.0f%%, complaints %.0f and budget change %.1f%% are all within margin",
				congestion, complaintScore, budgetChangePercent),
		}
	default:
		return Judgment{
			Tier: TierTrialCaution,
			Message: fmt.Sprintf("trial with monitoring: congestion %.0f%%, complaints %.0f, budget change %.1f%%",
				congestion, complaintScore, budgetChangePercent),
		}
	}
}
