package domain

// ProductFilter narrows catalog lookups. Empty fields are not applied.
// Mark and Fraction match products that either carry the same value or carry
// none at all, so generic items are never filtered out by a characteristic
// they do not have.
type ProductFilter struct {
	ProductType string
	Mark        string
	Fraction    string
}

// Product is a catalog item returned by product lookups.
type Product struct {
	ID           int64
	Name         string
	ProductType  string
	Mark         *string
	Fraction     *string
	PricePerUnit int64
	Unit         string
	Available    bool
	Description  string
}
