// services/order_session_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"hotel-addons/apperrors"
	"hotel-addons/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderSession is one operator's add-on order wizard.
type OrderSession struct {
	mu sync.Mutex

	ID         string
	Operator   string
	State      State
	LastError  error
	Candidates []models.Reservation
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type ErrorView struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type PayerView struct {
	BillingMethod string              `json:"billingMethod"`
	Resolved      bool                `json:"resolved"`
	Lookup        Lookup              `json:"lookup"`
	Customer      *models.Customer    `json:"customer,omitempty"`
	Reservation   *models.Reservation `json:"reservation,omitempty"`
	ReferenceNo   string              `json:"referenceNo,omitempty"`
}

// SessionView is what the UI renders for the current step.
type SessionView struct {
	ID         string               `json:"id"`
	Operator   string               `json:"operator"`
	Step       int                  `json:"step"`
	StepName   string               `json:"stepName"`
	Payer      *PayerView           `json:"payer,omitempty"`
	LastMethod string               `json:"lastBillingMethod,omitempty"`
	Cart       Cart                 `json:"cart"`
	CartTotal  decimal.Decimal      `json:"cartTotal"`
	Candidates []models.Reservation `json:"candidates,omitempty"`
	Results    []LineResult         `json:"results,omitempty"`
	Error      *ErrorView           `json:"error,omitempty"`
	UpdatedAt  time.Time            `json:"updatedAt"`
}

// ToggleServiceInput is the step-3 selection of one catalog service.
type ToggleServiceInput struct {
	ServiceID   uint       `json:"serviceId"`
	Quantity    int        `json:"quantity"`
	ServiceDate *time.Time `json:"-"`
	ServiceTime string     `json:"serviceTime"`
	Status      string     `json:"status"`
	Notes       string     `json:"notes"`
}

type PreviewLine struct {
	ServiceID     uint            `json:"serviceId"`
	ServiceName   string          `json:"serviceName"`
	Quantity      int             `json:"quantity"`
	CartUnitPrice decimal.Decimal `json:"cartUnitPrice"`
	LiveUnitPrice decimal.Decimal `json:"liveUnitPrice"`
	LineTotal     decimal.Decimal `json:"lineTotal"`
	Available     bool            `json:"available"`
	Note          string          `json:"note,omitempty"`
}

// Preview is priced from the live catalog, not from the cart snapshots.
type Preview struct {
	Currency string          `json:"currency"`
	Lines    []PreviewLine   `json:"lines"`
	Total    decimal.Decimal `json:"total"`
}

type SubmitResult struct {
	Session   *SessionView `json:"session"`
	Committed int          `json:"committed"`
	Failed    int          `json:"failed"`
}

// OrderSessionService runs order wizards in memory, one per session id.
// Commits happen only in Submit.
type OrderSessionService struct {
	Catalog         *CatalogService
	Addons          *AddonService
	Customers       CustomerRegistry
	Reservations    ReservationRegistry
	DefaultCurrency string
	CashSalePrefix  string
	SessionTTL      time.Duration

	mu       sync.RWMutex
	sessions map[string]*OrderSession
	newID    func() string
	now      func() time.Time
}

func NewOrderSessionService(
	catalog *CatalogService,
	addons *AddonService,
	customers CustomerRegistry,
	reservations ReservationRegistry,
	defaultCurrency string,
	cashSalePrefix string,
) *OrderSessionService {
	if cashSalePrefix == "" {
		cashSalePrefix = "CASH"
	}
	return &OrderSessionService{
		Catalog:         catalog,
		Addons:          addons,
		Customers:       customers,
		Reservations:    reservations,
		DefaultCurrency: strings.ToUpper(defaultCurrency),
		CashSalePrefix:  cashSalePrefix,
		SessionTTL:      12 * time.Hour,
		sessions:        make(map[string]*OrderSession),
		newID:           func() string { return uuid.NewString() },
		now:             time.Now,
	}
}

// ---------------------------
// session bookkeeping
// ---------------------------

func (s *OrderSessionService) Start(operator, currency string) *SessionView {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = s.DefaultCurrency
	}
	now := s.now()
	sess := &OrderSession{
		ID:        s.newID(),
		Operator:  operator,
		State:     NewOrder(currency),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sweepLocked(now)
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	log.Printf("➡️ order session %s started by %s (%s)", sess.ID, operator, currency)
	return sess.view()
}

// Sweep drops idle sessions and returns how many were removed.
// main ตั้ง cron เรียกเป็นระยะ นอกจากนี้ Start ก็ sweep ด้วย
func (s *OrderSessionService) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.sweepLocked(now)
	if removed > 0 {
		log.Printf("🧹 swept %d idle order session(s)", removed)
	}
	return removed
}

// sweepLocked drops sessions idle for longer than SessionTTL.
func (s *OrderSessionService) sweepLocked(now time.Time) int {
	if s.SessionTTL <= 0 {
		return 0
	}
	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.UpdatedAt)
		sess.mu.Unlock()
		if idle > s.SessionTTL {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *OrderSessionService) lookup(id string) (*OrderSession, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("order session", id)
	}
	return sess, nil
}

func (s *OrderSessionService) Get(id string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// Discard removes a session from memory (after cancel or submit).
func (s *OrderSessionService) Discard(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// with runs fn under the session lock. fn returns the next state; on error
// the state stays and the error is attached to the session.
func (s *OrderSessionService) with(id string, fn func(sess *OrderSession) (State, error)) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	next, err := fn(sess)
	if next != nil {
		sess.State = next
	}
	sess.LastError = err
	sess.UpdatedAt = s.now()
	return sess.view(), err
}

func (sess *OrderSession) view() *SessionView {
	cart := CartOf(sess.State)
	v := &SessionView{
		ID:         sess.ID,
		Operator:   sess.Operator,
		Step:       int(sess.State.Step()),
		StepName:   sess.State.Step().String(),
		Cart:       cart.clone(),
		CartTotal:  cart.Total(),
		Candidates: sess.Candidates,
		UpdatedAt:  sess.UpdatedAt,
	}
	if v.Cart.Lines == nil {
		v.Cart.Lines = []CartLine{}
	}
	if st, ok := sess.State.(SelectBillingMode); ok {
		v.LastMethod = st.LastMethod
	}
	if st, ok := sess.State.(Submitted); ok {
		v.Results = st.Results
	}
	if p := PayerOf(sess.State); p != nil {
		v.Payer = payerView(p)
	}
	if sess.LastError != nil {
		v.Error = &ErrorView{Kind: apperrors.Kind(sess.LastError), Message: sess.LastError.Error()}
	}
	return v
}

func payerView(p Payer) *PayerView {
	pv := &PayerView{BillingMethod: p.BillingMethod(), Resolved: p.Resolved(), Lookup: p.LookupState()}
	switch pp := p.(type) {
	case CashPayer:
		pv.Customer = pp.Customer
	case RoomPayer:
		pv.Reservation = pp.Reservation
	case ReferencePayer:
		pv.Reservation = pp.Reservation
		pv.ReferenceNo = pp.ReferenceNo
	}
	return pv
}

// ---------------------------
// step operations
// ---------------------------

func (s *OrderSessionService) ChooseBillingMode(id, method string) (*SessionView, error) {
	return s.with(id, func(sess *OrderSession) (State, error) {
		sess.Candidates = nil
		return ChooseBillingMode(sess.State, method)
	})
}

func (s *OrderSessionService) Next(id string) (*SessionView, error) {
	return s.with(id, func(sess *OrderSession) (State, error) {
		return Next(sess.State)
	})
}

func (s *OrderSessionService) Back(id string) (*SessionView, error) {
	return s.with(id, func(sess *OrderSession) (State, error) {
		return Back(sess.State)
	})
}

func (s *OrderSessionService) Cancel(id string) (*SessionView, error) {
	return s.with(id, func(sess *OrderSession) (State, error) {
		next, err := Cancel(sess.State)
		if err == nil {
			log.Printf("⚠️ order session %s cancelled; cart discarded", sess.ID)
		}
		return next, err
	})
}

// LookupCustomer resolves the Cash payer by identification number.
func (s *OrderSessionService) LookupCustomer(ctx context.Context, id, identification string) (*SessionView, error) {
	return s.with(id, func(sess *OrderSession) (State, error) {
		identification = strings.TrimSpace(identification)
		if identification == "" {
			return nil, apperrors.Validation("identification", "identification is required")
		}
		if _, ok := PayerOf(sess.State).(CashPayer); !ok {
			return nil, apperrors.State(sess.State.Step().String(), "customer lookup only applies to Cash billing")
		}
		pending, err := BeginLookup(sess.State, identification)
		if err != nil {
			return nil, err
		}
		customer, lookupErr := s.Customers.FindByIdentification(ctx, identification)
		resolved, err := ResolveCustomer(pending, customer, lookupErr)
		if err != nil {
			return nil, err
		}
		return resolved, lookupFailure(resolved)
	})
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{6,15}$`)
)

// ValidateRegistration checks the registration fields of a walk-in customer.
func ValidateRegistration(input models.CustomerInput) error {
	if strings.TrimSpace(input.FirstName) == "" {
		return apperrors.Validation("firstName", "first name is required")
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return apperrors.Validation("email", "email is required")
	}
	if !emailPattern.MatchString(email) {
		return apperrors.Validation("email", "email is not valid")
	}
	phone := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(input.Phone))
	if phone == "" {
		return apperrors.Validation("phone", "phone is required")
	}
	if !phonePattern.MatchString(phone) {
		return apperrors.Validation("phone", "phone is not valid")
	}
	return nil
}

// RegisterCustomer is the Cash registration sub-flow: create, then resolve.
func (s *OrderSessionService) RegisterCustomer(ctx context.Context, id string, input models.CustomerInput) (*SessionView, error) {
	return s.with(id, func(sess *OrderSession) (State, error) {
		if err := ValidateRegistration(input); err != nil {
			return nil, err
		}
		if _, ok := PayerOf(sess.State).(CashPayer); !ok {
			return nil, apperrors.State(sess.State.Step().String(), "customer registration only applies to Cash billing")
		}
		query := strings.TrimSpace(input.Identification)
		if query == "" {
			query = strings.TrimSpace(input.Email)
		}
		pending, err := BeginLookup(sess.State, query)
		if err != nil {
			return nil, err
		}
		customer, createErr := s.Customers.Create(ctx, input)
		if createErr == nil {
			log.Printf("✅ customer %d registered from order session %s", customer.ID, sess.ID)
		}
		resolved, err := ResolveCustomer(pending, customer, createErr)
		if err != nil {
			return nil, err
		}
		return resolved, lookupFailure(resolved)
	})
}

// SelectReservation resolves the Room / Reference No. payer by booking id.
func (s *OrderSessionService) SelectReservation(ctx context.Context, id string, reservationID uint) (*SessionView, error) {
	return s.with(id, func(sess *OrderSession) (State, error) {
		if reservationID == 0 {
			return nil, apperrors.Validation("reservationId", "reservation is required")
		}
		pending, err := BeginLookup(sess.State, fmt.Sprint(reservationID))
		if err != nil {
			return nil, err
		}
		res, lookupErr := s.Reservations.Get(ctx, reservationID)
		resolved, err := ResolveReservation(pending, res, lookupErr)
		if err != nil {
			return nil, err
		}
		sess.Candidates = nil
		return resolved, lookupFailure(resolved)
	})
}

// SearchReservation resolves by room number or booking reference. Several
// matches leave the lookup failed and list the candidates to pick from.
func (s *OrderSessionService) SearchReservation(ctx context.Context, id, query string) (*SessionView, error) {
	return s.with(id, func(sess *OrderSession) (State, error) {
		query = strings.TrimSpace(query)
		if query == "" {
			return nil, apperrors.Validation("query", "room number or reference is required")
		}
		pending, err := BeginLookup(sess.State, query)
		if err != nil {
			return nil, err
		}
		found, lookupErr := s.Reservations.FindByRoomOrReference(ctx, query)
		sess.Candidates = nil

		var match *models.Reservation
		switch {
		case lookupErr != nil:
		case len(found) == 1:
			match = &found[0]
		case len(found) > 1:
			sess.Candidates = found
			lookupErr = apperrors.Validation("query", "%d reservations match %q; pick one", len(found), query)
		}
		resolved, err := ResolveReservation(pending, match, lookupErr)
		if err != nil {
			return nil, err
		}
		return resolved, lookupFailure(resolved)
	})
}

func (s *OrderSessionService) SetReferenceNo(id, ref string) (*SessionView, error) {
	return s.with(id, func(sess *OrderSession) (State, error) {
		return SetReferenceNo(sess.State, ref)
	})
}

// lookupFailure surfaces a failed lookup as the step error.
func lookupFailure(st State) error {
	p := PayerOf(st)
	if p == nil {
		return nil
	}
	if l := p.LookupState(); l.Status == LookupFailed {
		return l.Err()
	}
	return nil
}

// ToggleService reads the live catalog price when a line is added. Removing
// a line needs no catalog read.
func (s *OrderSessionService) ToggleService(ctx context.Context, id string, input ToggleServiceInput) (*SessionView, error) {
	return s.with(id, func(sess *OrderSession) (State, error) {
		st, ok := sess.State.(ServiceSelection)
		if !ok {
			return nil, apperrors.State(sess.State.Step().String(), "services can only be selected on step 3")
		}
		if st.Cart.Contains(input.ServiceID) {
			return ToggleService(sess.State, CartLine{ServiceID: input.ServiceID})
		}
		if input.Quantity <= 0 {
			return nil, apperrors.Validation("quantity", "quantity must be greater than 0")
		}

		item, price, err := s.Catalog.LivePrice(ctx, input.ServiceID, st.Cart.Currency)
		if err != nil {
			return nil, err
		}
		return ToggleService(sess.State, CartLine{
			ServiceID:   item.ID,
			ServiceName: item.ServiceName,
			Quantity:    input.Quantity,
			UnitPrice:   price,
			Currency:    st.Cart.Currency,
			UnitType:    item.UnitType,
			ServiceDate: input.ServiceDate,
			ServiceTime: strings.TrimSpace(input.ServiceTime),
			Status:      input.Status,
			Notes:       strings.TrimSpace(input.Notes),
		})
	})
}

func (s *OrderSessionService) UpdateCartLine(id string, serviceID uint, patch CartLinePatch) (*SessionView, error) {
	return s.with(id, func(sess *OrderSession) (State, error) {
		return UpdateCartLine(sess.State, serviceID, patch)
	})
}

// Preview totals the cart at today's catalog prices. The committed price is
// still the cart snapshot.
func (s *OrderSessionService) Preview(ctx context.Context, id string) (*Preview, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	cart := CartOf(sess.State).clone()
	sess.mu.Unlock()

	out := &Preview{Currency: cart.Currency, Lines: make([]PreviewLine, 0, len(cart.Lines)), Total: decimal.Zero}
	for _, l := range cart.Lines {
		pl := PreviewLine{
			ServiceID:     l.ServiceID,
			ServiceName:   l.ServiceName,
			Quantity:      l.Quantity,
			CartUnitPrice: l.UnitPrice,
		}
		item, price, err := s.Catalog.LivePrice(ctx, l.ServiceID, cart.Currency)
		if err != nil {
			pl.Note = err.Error()
			out.Lines = append(out.Lines, pl)
			continue
		}
		pl.ServiceName = item.ServiceName
		pl.LiveUnitPrice = price
		pl.LineTotal = price.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
		pl.Available = true
		out.Total = out.Total.Add(pl.LineTotal)
		out.Lines = append(out.Lines, pl)
	}
	return out, nil
}

// ---------------------------
// submit
// ---------------------------

func (s *OrderSessionService) cashSaleRef() string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return fmt.Sprintf("%s-%s", s.CashSalePrefix, short)
}

func reservationPayerRef(res models.Reservation) string {
	if ref := strings.TrimSpace(res.ReferenceCode); ref != "" {
		return ref
	}
	return fmt.Sprintf("BK-%d", res.ID)
}

// payerFor builds the commit context of one line. Room / Reference No. read
// the reservation again so a booking removed mid-session fails that line.
func (s *OrderSessionService) payerFor(ctx context.Context, payer Payer, cashRef string) (PayerContext, error) {
	switch p := payer.(type) {
	case CashPayer:
		customerID := p.Customer.ID
		return PayerContext{
			BillingMethod: models.BillingMethodCash,
			PayerRef:      cashRef,
			CustomerID:    &customerID,
			GuestName:     p.Customer.DisplayName(),
		}, nil
	case RoomPayer, ReferencePayer:
		var selected *models.Reservation
		refNo := ""
		if rp, ok := p.(ReferencePayer); ok {
			selected = rp.Reservation
			refNo = rp.ReferenceNo
		} else {
			selected = p.(RoomPayer).Reservation
		}
		res, err := s.Reservations.Get(ctx, selected.ID)
		if err != nil {
			return PayerContext{}, err
		}
		if res == nil {
			return PayerContext{}, apperrors.NotFound("reservation", selected.ID)
		}
		resID := res.ID
		pc := PayerContext{
			BillingMethod: payer.BillingMethod(),
			PayerRef:      reservationPayerRef(*res),
			ReservationID: &resID,
			GuestName:     res.GuestName,
			RoomNo:        res.RoomNo,
			CheckIn:       res.CheckIn,
			CheckOut:      res.CheckOut,
			ReferenceNo:   refNo,
		}
		if res.CustomerID != 0 {
			cid := res.CustomerID
			pc.CustomerID = &cid
		}
		return pc, nil
	}
	return PayerContext{}, apperrors.State(StepConfirmation.String(), "payer is not resolved")
}

// Submit commits one addon per cart line. A failing line does not undo the
// lines already committed; every line reports its own outcome.
func (s *OrderSessionService) Submit(ctx context.Context, id string) (*SubmitResult, error) {
	result := &SubmitResult{}
	view, err := s.with(id, func(sess *OrderSession) (State, error) {
		conf, err := ReadyToSubmit(sess.State)
		if err != nil {
			return nil, err
		}

		cashRef := ""
		if conf.Payer.BillingMethod() == models.BillingMethodCash {
			cashRef = s.cashSaleRef()
		}

		results := make([]LineResult, 0, len(conf.Cart.Lines))
		for _, line := range conf.Cart.Lines {
			lr := LineResult{ServiceID: line.ServiceID}
			pc, err := s.payerFor(ctx, conf.Payer, cashRef)
			if err == nil {
				var addon *models.ReservationServiceAddon
				addon, err = s.Addons.Commit(ctx, line, pc, sess.Operator)
				if err == nil {
					lr.Committed = true
					lr.Addon = addon
					result.Committed++
				}
			}
			if err != nil {
				lr.ErrorKind = apperrors.Kind(err)
				lr.Error = err.Error()
				result.Failed++
				log.Printf("❌ order session %s: line service=%d failed: %v", sess.ID, line.ServiceID, err)
			}
			results = append(results, lr)
		}
		log.Printf("⬅️ order session %s submitted: %d committed, %d failed", sess.ID, result.Committed, result.Failed)
		return Complete(conf, results), nil
	})
	result.Session = view
	if err != nil {
		return result, err
	}
	return result, nil
}
