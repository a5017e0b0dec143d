package domain

import "time"

// Renderable view models handed to the external document renderer. The
// structure is the whole contract: ordered sections with optional
// nesting and bullet items, no layout concerns.

type Section struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Items       []Bullet  `json:"items,omitempty"`
	Sections    []Section `json:"sections,omitempty"`
}

type Bullet struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Value       string `json:"value,omitempty"`
	Done        bool   `json:"done,omitempty"`
}

// DocumentView is the renderable form of a financial document.
type DocumentView struct {
	Number   string    `json:"number"`
	Title    string    `json:"title"`
	Kind     DocType   `json:"kind"`
	Status   Status    `json:"status"`
	Sections []Section `json:"sections"`
}

// SpecificationView is the renderable form of a specification's feature
// tree, nested one section level per feature level.
type SpecificationView struct {
	Title    string    `json:"title"`
	Progress Progress  `json:"progress"`
	Sections []Section `json:"sections"`
}

// RenderDocument builds the view model for a financial document. The
// display status is resolved at render time so an exported overdue
// invoice is labelled overdue even though the stored status is not.
func RenderDocument(d *Document, now time.Time) DocumentView {
	view := DocumentView{
		Number: d.Number,
		Title:  d.Title,
		Kind:   d.Type,
		Status: d.DisplayStatus(now),
	}

	client := Section{Title: "Client"}
	client.Items = append(client.Items, Bullet{Title: d.Client.Name, Description: d.Client.Address})
	if d.Client.Email != "" {
		client.Items = append(client.Items, Bullet{Title: "Email", Value: d.Client.Email})
	}
	if d.Client.Phone != "" {
		client.Items = append(client.Items, Bullet{Title: "Phone", Value: d.Client.Phone})
	}
	view.Sections = append(view.Sections, client)

	lines := Section{Title: "Line items"}
	for _, it := range d.Items {
		lines.Items = append(lines.Items, Bullet{
			Title:       it.Description,
			Description: it.Quantity.String() + " x " + it.UnitPrice.String(),
			Value:       it.Total.String(),
		})
	}
	view.Sections = append(view.Sections, lines)

	totals := Section{Title: "Totals"}
	totals.Items = append(totals.Items, Bullet{Title: "Subtotal", Value: d.Subtotal.String()})
	if !d.Discount.IsZero() {
		totals.Items = append(totals.Items, Bullet{Title: "Discount", Value: d.Discount.Neg().String()})
	}
	if !d.Tax.IsZero() {
		totals.Items = append(totals.Items, Bullet{Title: "Tax", Value: d.Tax.String()})
	}
	totals.Items = append(totals.Items, Bullet{Title: "Total", Value: d.Total.String()})
	if !d.PaidAmount.IsZero() {
		totals.Items = append(totals.Items,
			Bullet{Title: "Paid", Value: d.PaidAmount.String()},
			Bullet{Title: "Balance due", Value: d.Balance().String()})
	}
	view.Sections = append(view.Sections, totals)

	if d.Type == TypeContract && len(d.Milestones) > 0 {
		ms := Section{Title: "Payment milestones"}
		for _, m := range d.Milestones {
			ms.Items = append(ms.Items, Bullet{
				Title:       m.Title,
				Description: string(m.Status),
				Value:       m.Amount.String(),
				Done:        m.Status == MilestonePaid,
			})
		}
		view.Sections = append(view.Sections, ms)
	}
	return view
}

// RenderSpecification builds the table-of-contents style view of the
// feature tree. Level-2 features nest as subsections, level-3 as
// bullets under them.
func RenderSpecification(spec Specification, features []Feature) SpecificationView {
	view := SpecificationView{
		Title:    spec.Title,
		Progress: ComputeProgress(features),
	}
	for _, root := range BuildTree(features) {
		view.Sections = append(view.Sections, featureSection(root))
	}
	return view
}

func featureSection(n *FeatureNode) Section {
	s := Section{Title: n.Feature.Title, Description: n.Feature.Description}
	for _, child := range n.Children {
		if len(child.Children) == 0 {
			s.Items = append(s.Items, Bullet{
				Title:       child.Feature.Title,
				Description: child.Feature.Description,
				Done:        child.Feature.IsCompleted,
			})
			continue
		}
		s.Sections = append(s.Sections, featureSection(child))
	}
	return s
}
