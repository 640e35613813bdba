package render

import (
	"errors"

	"resume-render/internal/domain"
)

// ErrTemplateNotFound is returned for ids missing from the catalog.
var ErrTemplateNotFound = errors.New("template not found")

const paidPrice = 49

func price(p int) *int { return &p }

// catalog is the display order of the template listing.
var catalog = []domain.Template{
	{
		ID:          domain.TemplateClassic,
		Name:        "Classic Professional",
		Description: "A timeless, elegant template for corporate and academic roles.",
		Tier:        domain.TierFree,
	},
	{
		ID:          domain.TemplateProfessional,
		Name:        "Corporate Clean",
		Description: "A sharp, clean template perfect for any professional application.",
		Tier:        domain.TierFree,
	},
	{
		ID:          domain.TemplateModern,
		Name:        "Modern Minimalist",
		Description: "A clean, two-column layout perfect for tech and design positions.",
		Tier:        domain.TierPaid,
		Price:       price(paidPrice),
	},
	{
		ID:          domain.TemplateTech,
		Name:        "Tech Dark-Mode",
		Description: "A sleek, dark-themed template designed for developers.",
		Tier:        domain.TierPaid,
		Price:       price(paidPrice),
	},
	{
		ID:          domain.TemplateCreative,
		Name:        "Creative Bold",
		Description: "A stylish template with a splash of color to make you stand out.",
		Tier:        domain.TierPaid,
		Price:       price(paidPrice),
	},
	{
		ID:          domain.TemplateElegant,
		Name:        "Elegant Serif",
		Description: "A sophisticated design that emphasizes typography and class.",
		Tier:        domain.TierPaid,
		Price:       price(paidPrice),
	},
	{
		ID:          domain.TemplateVisualCV,
		Name:        "Visual CV",
		Description: "A modern resume with a striking visual header and photo.",
		Tier:        domain.TierPaid,
		Price:       price(paidPrice),
	},
}

// List returns the catalog in display order.
func List() []domain.Template {
	out := make([]domain.Template, len(catalog))
	for i, t := range catalog {
		if t.Price != nil {
			t.Price = price(*t.Price)
		}
		out[i] = t
	}
	return out
}

// Find looks up a catalog entry by id.
func Find(id domain.TemplateID) (domain.Template, bool) {
	for _, t := range List() {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Template{}, false
}
