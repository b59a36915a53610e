// services/order_builder.go
package services

import (
	"fmt"
	"strings"
	"time"

	"hotel-addons/apperrors"
	"hotel-addons/models"

	"github.com/shopspring/decimal"
)

// Step numbers follow the four screens of the add-on order wizard.
type Step int

const (
	StepSelectBillingMode  Step = 1
	StepCustomerResolution Step = 2
	StepServiceSelection   Step = 3
	StepConfirmation       Step = 4
	StepSubmitted          Step = 5
	StepCancelled          Step = 6
)

func (s Step) String() string {
	switch s {
	case StepSelectBillingMode:
		return "SelectBillingMode"
	case StepCustomerResolution:
		return "CustomerResolution"
	case StepServiceSelection:
		return "ServiceSelection"
	case StepConfirmation:
		return "Confirmation"
	case StepSubmitted:
		return "Submitted"
	case StepCancelled:
		return "Cancelled"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

type LookupStatus string

const (
	LookupIdle     LookupStatus = "idle"
	LookupPending  LookupStatus = "pending"
	LookupResolved LookupStatus = "resolved"
	LookupFailed   LookupStatus = "failed"
)

// Lookup tracks one cross-entity read: pending -> resolved | failed.
type Lookup struct {
	Status LookupStatus `json:"status"`
	Query  string       `json:"query,omitempty"`
	Error  string       `json:"error,omitempty"`

	cause error
}

// Err is the typed error behind a failed lookup.
func (l Lookup) Err() error { return l.cause }

// ---------------------------
// Payer (per billing method)
// ---------------------------

type Payer interface {
	BillingMethod() string
	Resolved() bool
	LookupState() Lookup
}

// CashPayer: walk-in sale, payer is a registered customer.
type CashPayer struct {
	Lookup   Lookup
	Customer *models.Customer
}

func (p CashPayer) BillingMethod() string { return models.BillingMethodCash }
func (p CashPayer) Resolved() bool        { return p.Customer != nil }
func (p CashPayer) LookupState() Lookup   { return p.Lookup }

// RoomPayer: charged to a reservation's room folio.
type RoomPayer struct {
	Lookup      Lookup
	Reservation *models.Reservation
}

func (p RoomPayer) BillingMethod() string { return models.BillingMethodRoom }
func (p RoomPayer) Resolved() bool        { return p.Reservation != nil }
func (p RoomPayer) LookupState() Lookup   { return p.Lookup }

// ReferencePayer: billed against a free-text reference (company PO, voucher)
// on top of a reservation.
type ReferencePayer struct {
	ReferenceNo string
	Lookup      Lookup
	Reservation *models.Reservation
}

func (p ReferencePayer) BillingMethod() string { return models.BillingMethodReference }
func (p ReferencePayer) Resolved() bool {
	return p.Reservation != nil && strings.TrimSpace(p.ReferenceNo) != ""
}
func (p ReferencePayer) LookupState() Lookup { return p.Lookup }

func newPayer(method string) Payer {
	idle := Lookup{Status: LookupIdle}
	switch method {
	case models.BillingMethodCash:
		return CashPayer{Lookup: idle}
	case models.BillingMethodRoom:
		return RoomPayer{Lookup: idle}
	default:
		return ReferencePayer{Lookup: idle}
	}
}

// ---------------------------
// Cart
// ---------------------------

// CartLine snapshots the catalog price at the moment the line is added.
type CartLine struct {
	ServiceID   uint            `json:"serviceId"`
	ServiceName string          `json:"serviceName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Currency    string          `json:"currency"`
	UnitType    string          `json:"unitType"`
	ServiceDate *time.Time      `json:"serviceDate,omitempty"`
	ServiceTime string          `json:"serviceTime,omitempty"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes,omitempty"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// CartLinePatch edits a line in place; the snapshot price never changes.
type CartLinePatch struct {
	Quantity    *int
	ServiceDate *time.Time
	ServiceTime *string
	Status      *string
	Notes       *string
}

// Cart is a value: every operation returns a new cart.
type Cart struct {
	Currency string     `json:"currency"`
	Lines    []CartLine `json:"lines"`
}

func (c Cart) Empty() bool { return len(c.Lines) == 0 }

func (c Cart) Contains(serviceID uint) bool {
	return c.index(serviceID) >= 0
}

func (c Cart) index(serviceID uint) int {
	for i, l := range c.Lines {
		if l.ServiceID == serviceID {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	return Cart{Currency: c.Currency, Lines: append([]CartLine(nil), c.Lines...)}
}

// Toggle adds the line, or removes it if its service is already in the cart.
func (c Cart) Toggle(line CartLine) Cart {
	out := c.clone()
	if i := out.index(line.ServiceID); i >= 0 {
		out.Lines = append(out.Lines[:i], out.Lines[i+1:]...)
		return out
	}
	out.Lines = append(out.Lines, line)
	return out
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// ---------------------------
// States
// ---------------------------

type State interface {
	Step() Step
}

type SelectBillingMode struct {
	Cart       Cart
	LastMethod string
}

type CustomerResolution struct {
	Cart  Cart
	Payer Payer
}

type ServiceSelection struct {
	Cart  Cart
	Payer Payer
}

type Confirmation struct {
	Cart  Cart
	Payer Payer
}

// LineResult is the outcome of committing one cart line.
type LineResult struct {
	ServiceID uint                            `json:"serviceId"`
	Committed bool                            `json:"committed"`
	Addon     *models.ReservationServiceAddon `json:"addon,omitempty"`
	ErrorKind string                          `json:"errorKind,omitempty"`
	Error     string                          `json:"error,omitempty"`
}

type Submitted struct {
	Payer   Payer
	Results []LineResult
}

type Cancelled struct{}

func (SelectBillingMode) Step() Step  { return StepSelectBillingMode }
func (CustomerResolution) Step() Step { return StepCustomerResolution }
func (ServiceSelection) Step() Step   { return StepServiceSelection }
func (Confirmation) Step() Step       { return StepConfirmation }
func (Submitted) Step() Step          { return StepSubmitted }
func (Cancelled) Step() Step          { return StepCancelled }

func NewOrder(currency string) State {
	return SelectBillingMode{Cart: Cart{Currency: strings.ToUpper(strings.TrimSpace(currency))}}
}

func CartOf(s State) Cart {
	switch st := s.(type) {
	case SelectBillingMode:
		return st.Cart
	case CustomerResolution:
		return st.Cart
	case ServiceSelection:
		return st.Cart
	case Confirmation:
		return st.Cart
	}
	return Cart{}
}

func PayerOf(s State) Payer {
	switch st := s.(type) {
	case CustomerResolution:
		return st.Payer
	case ServiceSelection:
		return st.Payer
	case Confirmation:
		return st.Payer
	case Submitted:
		return st.Payer
	}
	return nil
}

func IsTerminal(s State) bool {
	switch s.(type) {
	case Submitted, Cancelled:
		return true
	}
	return false
}

func stepErr(s State, format string, args ...any) error {
	return apperrors.State(s.Step().String(), format, args...)
}

// ---------------------------
// Transitions (pure)
// ---------------------------

// ChooseBillingMode: 1 -> 2. Payer fields start empty.
func ChooseBillingMode(s State, method string) (State, error) {
	st, ok := s.(SelectBillingMode)
	if !ok {
		return s, stepErr(s, "billing mode can only be chosen on step 1")
	}
	method = strings.TrimSpace(method)
	if !models.ValidBillingMethod(method) {
		return s, apperrors.Validation("billingMethod", "must be one of Cash, Room, Reference No.")
	}
	return CustomerResolution{Cart: st.Cart, Payer: newPayer(method)}, nil
}

func Next(s State) (State, error) {
	switch st := s.(type) {
	case SelectBillingMode:
		return s, stepErr(s, "choose a billing mode first")
	case CustomerResolution:
		if st.Payer.LookupState().Status == LookupPending {
			return s, stepErr(s, "a lookup is still in progress")
		}
		if st.Payer.BillingMethod() == models.BillingMethodCash && !st.Payer.Resolved() {
			return s, stepErr(s, "customer is not resolved")
		}
		return ServiceSelection{Cart: st.Cart, Payer: st.Payer}, nil
	case ServiceSelection:
		if st.Cart.Empty() {
			return s, stepErr(s, "cart is empty")
		}
		return Confirmation{Cart: st.Cart, Payer: st.Payer}, nil
	case Confirmation:
		return s, stepErr(s, "confirmation is finished by submit")
	}
	return s, stepErr(s, "order is already closed")
}

// Back moves one step backwards and keeps the cart.
func Back(s State) (State, error) {
	switch st := s.(type) {
	case CustomerResolution:
		return SelectBillingMode{Cart: st.Cart, LastMethod: st.Payer.BillingMethod()}, nil
	case ServiceSelection:
		return CustomerResolution{Cart: st.Cart, Payer: st.Payer}, nil
	case Confirmation:
		return ServiceSelection{Cart: st.Cart, Payer: st.Payer}, nil
	case SelectBillingMode:
		return s, stepErr(s, "already on the first step")
	}
	return s, stepErr(s, "order is already closed")
}

// Cancel discards the cart. Cancelling twice is a no-op.
func Cancel(s State) (State, error) {
	switch s.(type) {
	case Cancelled:
		return s, nil
	case Submitted:
		return s, stepErr(s, "order was already submitted")
	}
	return Cancelled{}, nil
}

// withPayer edits the payer on the steps where it is editable (2 and 3).
func withPayer(s State, fn func(Payer) (Payer, error)) (State, error) {
	switch st := s.(type) {
	case CustomerResolution:
		p, err := fn(st.Payer)
		if err != nil {
			return s, err
		}
		return CustomerResolution{Cart: st.Cart, Payer: p}, nil
	case ServiceSelection:
		p, err := fn(st.Payer)
		if err != nil {
			return s, err
		}
		return ServiceSelection{Cart: st.Cart, Payer: p}, nil
	}
	return s, stepErr(s, "payer can only be changed on steps 2 and 3")
}

// BeginLookup marks the payer lookup as pending and drops the previous result.
func BeginLookup(s State, query string) (State, error) {
	return withPayer(s, func(p Payer) (Payer, error) {
		pending := Lookup{Status: LookupPending, Query: strings.TrimSpace(query)}
		switch pp := p.(type) {
		case CashPayer:
			return CashPayer{Lookup: pending}, nil
		case RoomPayer:
			return RoomPayer{Lookup: pending}, nil
		case ReferencePayer:
			return ReferencePayer{ReferenceNo: pp.ReferenceNo, Lookup: pending}, nil
		}
		return p, stepErr(s, "unknown payer")
	})
}

func failedLookup(l Lookup, err error) Lookup {
	return Lookup{Status: LookupFailed, Query: l.Query, Error: err.Error(), cause: err}
}

// ResolveCustomer finishes a pending Cash lookup. A nil customer without an
// error means nothing matched.
func ResolveCustomer(s State, customer *models.Customer, lookupErr error) (State, error) {
	return withPayer(s, func(p Payer) (Payer, error) {
		cp, ok := p.(CashPayer)
		if !ok {
			return p, stepErr(s, "customer lookup only applies to Cash billing")
		}
		if cp.Lookup.Status != LookupPending {
			return p, stepErr(s, "no customer lookup in progress")
		}
		switch {
		case lookupErr != nil:
			return CashPayer{Lookup: failedLookup(cp.Lookup, lookupErr)}, nil
		case customer == nil:
			return CashPayer{Lookup: failedLookup(cp.Lookup, apperrors.NotFound("customer", cp.Lookup.Query))}, nil
		}
		c := *customer
		return CashPayer{Lookup: Lookup{Status: LookupResolved, Query: cp.Lookup.Query}, Customer: &c}, nil
	})
}

// ResolveReservation finishes a pending Room / Reference No. lookup.
func ResolveReservation(s State, reservation *models.Reservation, lookupErr error) (State, error) {
	return withPayer(s, func(p Payer) (Payer, error) {
		var current Lookup
		switch pp := p.(type) {
		case RoomPayer:
			current = pp.Lookup
		case ReferencePayer:
			current = pp.Lookup
		default:
			return p, stepErr(s, "reservation lookup does not apply to Cash billing")
		}
		if current.Status != LookupPending {
			return p, stepErr(s, "no reservation lookup in progress")
		}

		next := Lookup{Status: LookupResolved, Query: current.Query}
		var res *models.Reservation
		switch {
		case lookupErr != nil:
			next = failedLookup(current, lookupErr)
		case reservation == nil:
			next = failedLookup(current, apperrors.NotFound("reservation", current.Query))
		default:
			r := *reservation
			res = &r
		}

		if rp, ok := p.(ReferencePayer); ok {
			return ReferencePayer{ReferenceNo: rp.ReferenceNo, Lookup: next, Reservation: res}, nil
		}
		return RoomPayer{Lookup: next, Reservation: res}, nil
	})
}

// SetReferenceNo captures the free-text reference of Reference No. billing.
func SetReferenceNo(s State, ref string) (State, error) {
	return withPayer(s, func(p Payer) (Payer, error) {
		rp, ok := p.(ReferencePayer)
		if !ok {
			return p, apperrors.Validation("referenceNo", "reference number only applies to Reference No. billing")
		}
		ref = strings.TrimSpace(ref)
		if ref == "" {
			return p, apperrors.Validation("referenceNo", "reference number is required")
		}
		rp.ReferenceNo = ref
		return rp, nil
	})
}

func validateCartLine(line CartLine, currency string) (CartLine, error) {
	if line.ServiceID == 0 {
		return line, apperrors.Validation("serviceId", "service is required")
	}
	if line.Quantity <= 0 {
		return line, apperrors.Validation("quantity", "quantity must be greater than 0")
	}
	if !line.UnitPrice.IsPositive() {
		return line, apperrors.Validation("unitPrice", "unit price must be greater than 0")
	}
	if !strings.EqualFold(line.Currency, currency) {
		return line, apperrors.Validation("currency", "cart is priced in %s", currency)
	}
	if line.Status == "" {
		line.Status = models.AddonStatusPending
	}
	if !models.ValidAddonStatus(line.Status) {
		return line, apperrors.Validation("status", "unknown status %q", line.Status)
	}
	if err := validateServiceTime(line.ServiceTime); err != nil {
		return line, err
	}
	line.Currency = currency
	return line, nil
}

// ToggleService adds a line (validated) or removes the same service again.
func ToggleService(s State, line CartLine) (State, error) {
	st, ok := s.(ServiceSelection)
	if !ok {
		return s, stepErr(s, "services can only be selected on step 3")
	}
	if st.Cart.Contains(line.ServiceID) {
		return ServiceSelection{Cart: st.Cart.Toggle(line), Payer: st.Payer}, nil
	}
	line, err := validateCartLine(line, st.Cart.Currency)
	if err != nil {
		return s, err
	}
	return ServiceSelection{Cart: st.Cart.Toggle(line), Payer: st.Payer}, nil
}

func UpdateCartLine(s State, serviceID uint, patch CartLinePatch) (State, error) {
	st, ok := s.(ServiceSelection)
	if !ok {
		return s, stepErr(s, "cart lines can only be edited on step 3")
	}
	cart := st.Cart.clone()
	i := cart.index(serviceID)
	if i < 0 {
		return s, apperrors.NotFound("cart line", serviceID)
	}
	line := cart.Lines[i]
	if patch.Quantity != nil {
		line.Quantity = *patch.Quantity
	}
	if patch.ServiceDate != nil {
		d := *patch.ServiceDate
		line.ServiceDate = &d
	}
	if patch.ServiceTime != nil {
		line.ServiceTime = *patch.ServiceTime
	}
	if patch.Status != nil {
		line.Status = *patch.Status
	}
	if patch.Notes != nil {
		line.Notes = *patch.Notes
	}
	line, err := validateCartLine(line, cart.Currency)
	if err != nil {
		return s, err
	}
	cart.Lines[i] = line
	return ServiceSelection{Cart: cart, Payer: st.Payer}, nil
}

// ReadyToSubmit checks the submit guards of step 4.
func ReadyToSubmit(s State) (Confirmation, error) {
	st, ok := s.(Confirmation)
	if !ok {
		return Confirmation{}, stepErr(s, "submit is only possible from confirmation")
	}
	if st.Cart.Empty() {
		return Confirmation{}, stepErr(s, "cart is empty")
	}
	switch p := st.Payer.(type) {
	case CashPayer:
		if !p.Resolved() {
			return Confirmation{}, stepErr(s, "customer is not resolved")
		}
	case RoomPayer:
		if !p.Resolved() {
			return Confirmation{}, stepErr(s, "no reservation resolved")
		}
	case ReferencePayer:
		if p.Reservation == nil {
			return Confirmation{}, stepErr(s, "no reservation resolved")
		}
		if strings.TrimSpace(p.ReferenceNo) == "" {
			return Confirmation{}, stepErr(s, "reference number is missing")
		}
	default:
		return Confirmation{}, stepErr(s, "payer is not resolved")
	}
	return st, nil
}

func Complete(c Confirmation, results []LineResult) State {
	return Submitted{Payer: c.Payer, Results: append([]LineResult(nil), results...)}
}
