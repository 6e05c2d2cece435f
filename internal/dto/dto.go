package dto

// PurchaseRequest is what the UI boundary submits for a single plaque
// purchase attempt. Selection (currency, method, option) is validated
// against the caller's checkout session before anything is built.
type PurchaseRequest struct {
	AlbumID         string  `json:"albumId"`
	AlbumName       string  `json:"albumName"`
	AlbumArtist     string  `json:"albumArtist"`
	AlbumImage      string  `json:"albumImage"`
	PlaqueType      string  `json:"plaqueType"`
	SupportAmount   float64 `json:"supportAmount"`
	CurrencyCode    string  `json:"currencyCode"`
	PaymentMethodID string  `json:"paymentMethodId"`
	PaymentOption   string  `json:"paymentOption"`
	Phone           string  `json:"phone"`

	IncludeShipping      bool   `json:"includeShipping"`
	ShippingAddress      string `json:"shippingAddress"`
	DeliveryInstructions string `json:"deliveryInstructions"`
	ShippingContact      string `json:"shippingContact"`
}

// AlbumDetails rides along on both submission payloads so the store can
// render the plaque without a second album lookup.
type AlbumDetails struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
	Image  string `json:"image"`
}

// RedirectPayload is the POST /purchase-redirect body. Redirect methods
// take no method code, no required fields and no shipping substructure.
type RedirectPayload struct {
	AlbumID      string       `json:"albumId"`
	PlaqueType   string       `json:"plaqueType"`
	Amount       float64      `json:"amount"`
	Phone        string       `json:"phone"`
	CurrencyCode string       `json:"currencyCode"`
	AlbumDetails AlbumDetails `json:"albumDetails"`
}

// ShippingDetails is always present on seamless payloads; IncludeShipping
// toggles whether the rest of it is meaningful.
type ShippingDetails struct {
	IncludeShipping bool   `json:"includeShipping"`
	Address         string `json:"address,omitempty"`
	Instructions    string `json:"instructions,omitempty"`
	ContactNumber   string `json:"contactNumber,omitempty"`
}

// SeamlessPayload is the POST /purchase-seamless body.
type SeamlessPayload struct {
	AlbumID           string            `json:"albumId"`
	PlaqueType        string            `json:"plaqueType"`
	Amount            float64           `json:"amount"`
	Phone             string            `json:"phone"`
	PaymentMethodCode string            `json:"paymentMethodCode"`
	CurrencyCode      string            `json:"currencyCode"`
	RequiredFields    map[string]string `json:"requiredFields"`
	AlbumDetails      AlbumDetails      `json:"albumDetails"`
	ShippingDetails   ShippingDetails   `json:"shippingDetails"`
}

// PurchaseOutcome is the engine's answer to a submission: either a
// redirect hand-off or one of the seamless outcomes.
type PurchaseOutcome struct {
	Flow                string `json:"flow"`    // redirect | seamless
	Outcome             string `json:"outcome"` // redirect | instructions | pollable | success
	RedirectURL         string `json:"redirectUrl,omitempty"`
	PaymentInstructions string `json:"paymentInstructions,omitempty"`
	RelayMessage        string `json:"relayMessage,omitempty"`
	ReferenceNumber     string `json:"referenceNumber,omitempty"`
	Message             string `json:"message,omitempty"`
}

// CurrencyListing pairs the active currencies with the resolved default.
type CurrencyListing struct {
	Currencies      []CurrencyView `json:"currencies"`
	DefaultCurrency string         `json:"defaultCurrency"`
}

type CurrencyView struct {
	Code            string  `json:"code"`
	Name            string  `json:"name"`
	DefaultCurrency bool    `json:"defaultCurrency"`
	RateToDefault   float64 `json:"rateToDefault"`
}
