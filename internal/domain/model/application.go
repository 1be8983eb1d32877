package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationStatus is the lifecycle status the processor reports for a
// submitted financing application.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusSuccess  ApplicationStatus = "SUCCESS"
	ApplicationStatusFailed   ApplicationStatus = "FAILED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

// Customer carries the billing identity sent with an application.
type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	// Address is the billing address lines joined into a single string.
	Address string `json:"address"`
}

// OrderLineItem is one application line. Amount is tax-inclusive, matching
// the processor's pricing model.
type OrderLineItem struct {
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Quantity int             `json:"quantity"`
	Currency string          `json:"currency"`
}

// Application is the financing request for one checkout attempt. Built once,
// never mutated after submission.
type Application struct {
	MaturityInMonths int             `json:"maturityInMonths"`
	SelectedOption   string          `json:"selectedOption,omitempty"`
	OrderReference   string          `json:"orderReference"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Items            []OrderLineItem `json:"items"`
	Customer         Customer        `json:"customer"`
	Timestamp        string          `json:"timestamp"`
	Currency         string          `json:"currency"`
}

// ApplicationTimestamp renders t as the microsecond-precision UTC ISO-8601
// string the processor expects.
func ApplicationTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000Z")
}

// ProcessorRequest is one redirect attempt: the application plus the three
// callback URLs the processor will invoke, scoped by gateway variant id.
type ProcessorRequest struct {
	Application        Application `json:"application"`
	SuccessCallbackURL string      `json:"successCallbackUrl"`
	CancelCallbackURL  string      `json:"cancelCallbackUrl"`
	AsyncCallbackURL   string      `json:"asyncCallbackUrl"`
}

// ProcessorResponse is the parsed body of an inbound callback. Every field is
// untrusted until it has been validated against the order's stored metadata.
type ProcessorResponse struct {
	ApplicationID string
	OrderID       string
}

// ApplicationResult is the processor's answer to a submitted application.
type ApplicationResult struct {
	ApplicationID    string
	RedirectLocation string
}
