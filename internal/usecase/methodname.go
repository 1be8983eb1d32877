package usecase

import "modena-payment-service/internal/domain/model"

// bankLabels maps processor payment-instrument codes to display names for
// order notes.
var bankLabels = map[string]string{
	"HABAEE2X":    "Swedbank",
	"EEUHEE2X":    "SEB",
	"LHVBEE22":    "LHV",
	"RIKOEE22":    "Luminor",
	"MTASKU":      "mTasku",
	"PARXEE22":    "Citadele",
	"EKRDEE22":    "COOP",
	"MASTER_CARD": "Mastercard",
	"VISA":        "VISA",
}

// SelectedMethodLabel resolves the human-readable payment method stored in
// the order note. Variants selling a single named product answer with their
// own title; bank-link variants answer with the selected instrument, falling
// back to the localized generic label.
func (u *checkoutUC) SelectedMethodLabel(v model.GatewayVariant, selectedOption string) string {
	switch v.Kind {
	case model.GatewaySlice, model.GatewayCredit, model.GatewayLeasing, model.GatewayClick:
		return v.TextFor(u.bucket).Title
	}
	if label, ok := bankLabels[selectedOption]; ok {
		return label
	}
	return u.tr.T("method.generic")
}
