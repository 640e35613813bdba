package domain

// TemplateID is the stable key of a catalog entry, used for routing, draft
// storage and purchase records.
type TemplateID string

const (
	TemplateClassic      TemplateID = "classic"
	TemplateProfessional TemplateID = "professional"
	TemplateModern       TemplateID = "modern"
	TemplateTech         TemplateID = "tech"
	TemplateCreative     TemplateID = "creative"
	TemplateElegant      TemplateID = "elegant"
	TemplateVisualCV     TemplateID = "visual-cv"
)

// Tier gates editor access.
type Tier string

const (
	TierFree Tier = "free"
	TierPaid Tier = "paid"
)

// Template is a catalog entry. Price is set iff Tier is TierPaid.
type Template struct {
	ID          TemplateID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Tier        Tier       `json:"type"`
	Price       *int       `json:"price,omitempty"`
}

// IsPaid reports whether the template requires an entitlement.
func (t Template) IsPaid() bool { return t.Tier == TierPaid }

// PriceOrZero returns the list price, zero for free templates.
func (t Template) PriceOrZero() int {
	if t.Price == nil {
		return 0
	}
	return *t.Price
}
