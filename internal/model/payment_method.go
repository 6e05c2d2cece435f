package model

// RequiredField is a dynamic field a payment method needs filled in
// before a seamless submission (e.g. customerPhoneNumber for mobile money).
type RequiredField struct {
	FieldType   string `json:"fieldType"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Optional    bool   `json:"optional"`
}

// PaymentMethod is a directory entry from the payments engine's
// GET /payment-methods/for-currency listing.
type PaymentMethod struct {
	ID                       int             `json:"id"`
	Name                     string          `json:"name"`
	Description              string          `json:"description"`
	Code                     string          `json:"code"`
	MinimumAmount            float64         `json:"minimumAmount"`
	MaximumAmount            float64         `json:"maximumAmount"`
	RedirectRequired         bool            `json:"redirectRequired"`
	Active                   bool            `json:"active"`
	RequiredFields           []RequiredField `json:"requiredFields"`
	Currencies               []string        `json:"currencies"`
	ProcessingPaymentMessage string          `json:"processingPaymentMessage"`
}

// RequiresField reports whether the method declares a non-optional
// required field with the given name.
func (m *PaymentMethod) RequiresField(name string) bool {
	for _, f := range m.RequiredFields {
		if f.Name == name && !f.Optional {
			return true
		}
	}
	return false
}
