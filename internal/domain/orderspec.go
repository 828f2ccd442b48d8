package domain

// ProductCharacteristics holds optional product attributes collected from a
// user turn. Every field may be absent.
type ProductCharacteristics struct {
	Mark     *string `json:"mark,omitempty"`
	Fraction *string `json:"fraction,omitempty"`
	SubType  *string `json:"sub_type,omitempty"`
}

// DeliveryInfo holds optional delivery details.
type DeliveryInfo struct {
	Address *string `json:"address,omitempty"`
	Date    *string `json:"date,omitempty"`
}

// OrderSpec is a partial order specification accumulated across
// conversational turns. Fields only ever accumulate: merging never un-sets a
// previously known field unless the incoming turn supplies a replacement.
type OrderSpec struct {
	ProductType     *string                 `json:"product_type,omitempty"`
	Quantity        *string                 `json:"quantity,omitempty"`
	Characteristics *ProductCharacteristics `json:"characteristics,omitempty"`
	Delivery        *DeliveryInfo           `json:"delivery,omitempty"`
}

// Required fields for a complete specification, in the fixed enumeration
// order used by MissingFields.
const (
	FieldProductType = "product_type"
	FieldQuantity    = "quantity"
	FieldMark        = "characteristics.mark"
)

// MergeOrderSpecs combines an existing specification with fields extracted
// from a new turn. For every leaf field the incoming value wins only when it
// is set; an absent incoming value preserves the existing one. Nested records
// merge field by field, never by whole-object replacement. The function is
// pure: neither argument is modified.
func MergeOrderSpecs(existing, incoming OrderSpec) OrderSpec {
	merged := OrderSpec{
		ProductType: mergeField(existing.ProductType, incoming.ProductType),
		Quantity:    mergeField(existing.Quantity, incoming.Quantity),
	}

	if existing.Characteristics != nil || incoming.Characteristics != nil {
		var ex, in ProductCharacteristics
		if existing.Characteristics != nil {
			ex = *existing.Characteristics
		}
		if incoming.Characteristics != nil {
			in = *incoming.Characteristics
		}
		merged.Characteristics = &ProductCharacteristics{
			Mark:     mergeField(ex.Mark, in.Mark),
			Fraction: mergeField(ex.Fraction, in.Fraction),
			SubType:  mergeField(ex.SubType, in.SubType),
		}
	}

	if existing.Delivery != nil || incoming.Delivery != nil {
		var ex, in DeliveryInfo
		if existing.Delivery != nil {
			ex = *existing.Delivery
		}
		if incoming.Delivery != nil {
			in = *incoming.Delivery
		}
		merged.Delivery = &DeliveryInfo{
			Address: mergeField(ex.Address, in.Address),
			Date:    mergeField(ex.Date, in.Date),
		}
	}

	return merged
}

func mergeField(existing, incoming *string) *string {
	if incoming != nil && *incoming != "" {
		v := *incoming
		return &v
	}
	if existing != nil {
		v := *existing
		return &v
	}
	return nil
}

// IsComplete reports whether the specification carries everything needed for
// a catalog lookup: product type, quantity, and product mark. Fraction and
// delivery details are collected when offered but are not required.
func (s OrderSpec) IsComplete() bool {
	return s.ProductType != nil &&
		s.Quantity != nil &&
		s.Characteristics != nil &&
		s.Characteristics.Mark != nil
}

// MissingFields enumerates the required fields that are still unset, always
// in the same stable order so clarification text is deterministic.
func (s OrderSpec) MissingFields() []string {
	var missing []string
	if s.ProductType == nil {
		missing = append(missing, FieldProductType)
	}
	if s.Quantity == nil {
		missing = append(missing, FieldQuantity)
	}
	if s.Characteristics == nil || s.Characteristics.Mark == nil {
		missing = append(missing, FieldMark)
	}
	return missing
}

// Mark returns the product mark or the empty string when unset.
func (s OrderSpec) Mark() string {
	if s.Characteristics == nil || s.Characteristics.Mark == nil {
		return ""
	}
	return *s.Characteristics.Mark
}

// Fraction returns the product fraction or the empty string when unset.
func (s OrderSpec) Fraction() string {
	if s.Characteristics == nil || s.Characteristics.Fraction == nil {
		return ""
	}
	return *s.Characteristics.Fraction
}

// StringValue dereferences an optional string field, returning "" when nil.
func StringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// StringPtr returns a pointer to v, for building specifications in code.
func StringPtr(v string) *string {
	return &v
}
