package domain

// Plan is the subscription tier resolved by the identity provider.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// IsPremium reports whether the plan grants premium-gated features.
func (p Plan) IsPremium() bool {
	return p == PlanPremium
}

// Caller is the authenticated request identity attached by the auth
// middleware: who is calling, on which plan, and how much of the free
// tier they have already consumed.
type Caller struct {
	UserID    string
	Plan      Plan
	FreeUsage int
}
