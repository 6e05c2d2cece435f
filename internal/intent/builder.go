package intent

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"plaque-payments/internal/dto"
	"plaque-payments/internal/model"
)

// Validation failure codes, surfaced inline to the user. These never
// reach the network layer.
const (
	CodeMissingSelection = "MISSING_SELECTION"
	CodeMissingContact   = "MISSING_CONTACT"
	CodeInvalidContact   = "INVALID_CONTACT"
	CodeInvalidAmount    = "INVALID_AMOUNT"
	CodeUnsupportedField = "UNSUPPORTED_FIELD"
)

type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// shippingSurcharge is a flat add-on in the purchase's currency, applied
// only when shipping is opted in.
var shippingSurcharge = decimal.NewFromFloat(10.00)

// fieldResolver fills one method-declared required field from the user's
// input. New dynamic field types get an entry here.
type fieldResolver func(req *dto.PurchaseRequest) string

var fieldResolvers = map[string]fieldResolver{
	"customerPhoneNumber": func(req *dto.PurchaseRequest) string {
		return req.Phone
	},
}

// Intent is a validated, gateway-shaped submission. Exactly one of the
// payloads is set, matching the routing decision.
type Intent struct {
	Redirect        bool
	Method          *model.PaymentMethod
	Total           decimal.Decimal
	RedirectPayload *dto.RedirectPayload
	SeamlessPayload *dto.SeamlessPayload
}

// Build validates the request against the selected method and produces
// the payload for the applicable submission path. Checks run in a fixed
// order and the first failure wins.
func Build(req *dto.PurchaseRequest, method *model.PaymentMethod, option string) (*Intent, error) {
	if method == nil || option == "" {
		return nil, &ValidationError{Code: CodeMissingSelection, Message: "Please select a payment method and option"}
	}
	if req.Phone == "" {
		return nil, &ValidationError{Code: CodeMissingContact, Message: "Please enter your phone number"}
	}
	if !phonePattern.MatchString(req.Phone) {
		return nil, &ValidationError{Code: CodeInvalidContact, Message: "Please enter a valid phone number"}
	}

	total := decimal.NewFromFloat(req.SupportAmount)
	if req.IncludeShipping {
		total = total.Add(shippingSurcharge)
	}
	if !total.IsPositive() {
		return nil, &ValidationError{Code: CodeInvalidAmount, Message: "Invalid amount. Please check your support amount."}
	}

	albumID := req.AlbumID
	if albumID == "" {
		// Placeholder for demo/manual flows where no album identity was
		// resolved; keeps the payload well-formed.
		albumID = "album-" + uuid.NewString()
	}

	album := dto.AlbumDetails{
		Name:   req.AlbumName,
		Artist: req.AlbumArtist,
		Image:  req.AlbumImage,
	}

	in := &Intent{
		Redirect: method.RedirectRequired,
		Method:   method,
		Total:    total,
	}

	if method.RedirectRequired {
		in.RedirectPayload = &dto.RedirectPayload{
			AlbumID:      albumID,
			PlaqueType:   req.PlaqueType,
			Amount:       total.InexactFloat64(),
			Phone:        req.Phone,
			CurrencyCode: req.CurrencyCode,
			AlbumDetails: album,
		}
		return in, nil
	}

	requiredFields, err := resolveRequiredFields(req, method)
	if err != nil {
		return nil, err
	}

	shipping := dto.ShippingDetails{IncludeShipping: false}
	if req.IncludeShipping {
		contact := req.ShippingContact
		if contact == "" {
			contact = req.Phone
		}
		shipping = dto.ShippingDetails{
			IncludeShipping: true,
			Address:         req.ShippingAddress,
			Instructions:    req.DeliveryInstructions,
			ContactNumber:   contact,
		}
	}

	in.SeamlessPayload = &dto.SeamlessPayload{
		AlbumID:           albumID,
		PlaqueType:        req.PlaqueType,
		Amount:            total.InexactFloat64(),
		Phone:             req.Phone,
		PaymentMethodCode: method.Code,
		CurrencyCode:      req.CurrencyCode,
		RequiredFields:    requiredFields,
		AlbumDetails:      album,
		ShippingDetails:   shipping,
	}
	return in, nil
}

// resolveRequiredFields fills every field the method declares. A required
// field with no resolver fails the build instead of going out incomplete.
func resolveRequiredFields(req *dto.PurchaseRequest, method *model.PaymentMethod) (map[string]string, error) {
	fields := map[string]string{}
	for _, rf := range method.RequiredFields {
		resolver, ok := fieldResolvers[rf.Name]
		if !ok {
			if rf.Optional {
				continue
			}
			return nil, &ValidationError{
				Code:    CodeUnsupportedField,
				Message: fmt.Sprintf("%s requires %q, which is not supported yet", method.Name, rf.DisplayName),
			}
		}
		fields[rf.Name] = resolver(req)
	}
	return fields, nil
}
