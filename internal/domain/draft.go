package domain

// CategoryDraft is an admin publish form for a category. The store assigns
// the id.
type CategoryDraft struct {
	Name  string `validate:"required"`
	Photo string `validate:"required"`
}

// ProductDraft is an admin publish form for a product. All seven fields are
// required; a selling price above the original price is rejected at publish
// time.
type ProductDraft struct {
	CategoryID    string   `validate:"required"`
	Name          string   `validate:"required"`
	Photo         string   `validate:"required"`
	OriginalPrice float64  `validate:"required,gt=0"`
	SellingPrice  float64  `validate:"required,gt=0,ltefield=OriginalPrice"`
	Colors        []string `validate:"required,min=1,dive,required"`
	Description   string   `validate:"required"`
}
