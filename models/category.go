package models

// Category is one node of the marketplace category tree.
type Category struct {
	ID       string     `json:"_id"`
	Name     string     `json:"name"`
	ParentID string     `json:"parent,omitempty"`
	Children []Category `json:"children,omitempty"`
}

// CategoryWithRelations is returned by the with-ancestors / with-descendants
// endpoints.
type CategoryWithRelations struct {
	Category
	Ancestors   []Category `json:"ancestors,omitempty"`
	Descendants []Category `json:"descendants,omitempty"`
}
