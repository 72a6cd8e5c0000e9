package domain

// ─── Verification Checklist Types ───────────────────────────────────────────
// One checklist item is a single verifiable fact about the account being
// purchased. Required items gate release of escrowed funds.

// Well-known checklist item ids.
const (
	CheckCredentialsValid = "credentials_valid"
	CheckFollowerCount    = "follower_count"
	CheckEmailAccess      = "email_access"
	CheckNoRestrictions   = "no_restrictions"
	CheckContentIntact    = "content_intact"
)

// ChecklistItem is one entry in a buyer's verification checklist.
type ChecklistItem struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Checked     bool   `json:"checked"`
}
