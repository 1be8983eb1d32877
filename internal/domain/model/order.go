package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Order metadata keys. Written once per successful application submission and
// read on every later callback for validation.
const (
	MetaApplicationID  = "modena-application-id"
	MetaSelectedMethod = "modena-payment-method"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// LineKind distinguishes the store order rows an application is built from.
type LineKind string

const (
	LineKindProduct  LineKind = "line_item"
	LineKindFee      LineKind = "fee"
	LineKindShipping LineKind = "shipping"
)

// OrderLine is one product, fee or shipping row on a store order.
type OrderLine struct {
	Name        string
	Kind        LineKind
	ProductID   int64
	VariationID int64
	Quantity    int
	Total       decimal.Decimal // net amount
	TotalTax    decimal.Decimal
}

// GrossAmount is the tax-inclusive amount submitted to the processor.
func (l OrderLine) GrossAmount() decimal.Decimal {
	return l.Total.Add(l.TotalTax)
}

// Billing holds the order's billing fields used to build a Customer.
type Billing struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address1  string
	Address2  string
	City      string
	State     string
}

// JoinedAddress joins the address fields into the single string the processor
// expects. Empty segments are kept, matching how the store formats it.
func (b Billing) JoinedAddress() string {
	return strings.Join([]string{b.Address1, b.Address2, b.City, b.State}, ", ")
}

// Order is the store-owned record this service reconciles against. The
// NeedsPayment flag is the idempotency gate for every mutating callback.
type Order struct {
	ID            int64
	Status        OrderStatus
	PaymentMethod string
	Currency      string
	Total         decimal.Decimal
	Lines         []OrderLine
	Billing       Billing
	// CartSession is the store session key owning the shopper's cart.
	CartSession string
	NeedsPayment bool

	// Metadata, empty until an application has been submitted.
	ApplicationID string
	MethodLabel   string
}
