package model

// CustomerCategory is the loyalty tier of a customer. The zero value means unset.
type CustomerCategory string

const (
	CustomerCategoryVIP     CustomerCategory = "vip"
	CustomerCategoryPremium CustomerCategory = "premium"
	CustomerCategoryRegular CustomerCategory = "regular"
)

// Customer is read-only from the inventory module's point of view.
type Customer struct {
	ID       string
	Name     string
	Category CustomerCategory
	Email    string
}
