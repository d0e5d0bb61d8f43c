package invoice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-gstbill/internal/catalog"
	"github.com/noah-isme/backend-gstbill/internal/common"
	"github.com/noah-isme/backend-gstbill/internal/events"
	"github.com/noah-isme/backend-gstbill/internal/gst"
	"github.com/noah-isme/backend-gstbill/internal/obs"
	"github.com/noah-isme/backend-gstbill/internal/party"
	"github.com/noah-isme/backend-gstbill/internal/profile"
)

// Store abstracts invoice persistence for the service.
type Store interface {
	NextNumber(ctx context.Context, prefix string, year int) (string, error)
	Save(ctx context.Context, inv Invoice) (Invoice, error)
	Get(ctx context.Context, id uuid.UUID) (Invoice, error)
	List(ctx context.Context, status Status, limit, offset int32) ([]Invoice, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductSource loads catalog snapshots for the selected products.
type ProductSource interface {
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Product, error)
}

// CustomerSource loads the customer to snapshot onto the invoice.
type CustomerSource interface {
	Get(ctx context.Context, id uuid.UUID) (party.Customer, error)
}

// SellerSource provides the issuer profile for regime classification.
type SellerSource interface {
	Get(ctx context.Context) (profile.BusinessProfile, error)
}

// EventEmitter records domain events for saved invoices.
type EventEmitter interface {
	Emit(ctx context.Context, topic string, aggregateID uuid.UUID, payload any) (events.Event, error)
}

// Service assembles invoices from catalog selections and manages history.
type Service struct {
	store     Store
	products  ProductSource
	customers CustomerSource
	seller    SellerSource
	bus       EventEmitter
	prefix    string
	now       func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store     Store
	Products  ProductSource
	Customers CustomerSource
	Seller    SellerSource
	Bus       EventEmitter
	Prefix    string
	Now       func() time.Time
}

// NewService constructs the invoice service.
func NewService(cfg ServiceConfig) *Service {
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "INV"
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:     cfg.Store,
		products:  cfg.Products,
		customers: cfg.Customers,
		seller:    cfg.Seller,
		bus:       cfg.Bus,
		prefix:    prefix,
		now:       now,
	}
}

type pricedInput struct {
	customer  party.Customer
	regime    gst.TaxRegime
	lines     []gst.LineItem
	productID []uuid.UUID
	totals    gst.Totals
	issueDate time.Time
	dueDate   time.Time
}

// Save prices the selections, snapshots the customer, persists the invoice,
// and emits invoice.created.
func (s *Service) Save(ctx context.Context, in SaveInput) (Invoice, error) {
	priced, err := s.price(ctx, in)
	if err != nil {
		return Invoice{}, err
	}

	number := strings.TrimSpace(in.Number)
	if number == "" {
		number, err = s.store.NextNumber(ctx, s.prefix, priced.issueDate.Year())
		if err != nil {
			return Invoice{}, err
		}
	}

	status := in.Status
	if status == "" {
		status = StatusPending
	}

	inv := Invoice{
		Number:          number,
		Status:          status,
		IssueDate:       priced.issueDate,
		DueDate:         priced.dueDate,
		CustomerID:      priced.customer.ID,
		CustomerName:    priced.customer.Name,
		CustomerGSTIN:   priced.customer.GSTIN,
		CustomerAddress: priced.customer.Address,
		CustomerState:   priced.customer.State,
		Regime:          priced.regime,
		SubTotal:        priced.totals.SubTotal,
		TotalGST:        priced.totals.TotalGST,
		TotalDiscount:   priced.totals.TotalDiscount,
		GrandTotal:      priced.totals.GrandTotal,
	}
	for i, li := range priced.lines {
		inv.Lines = append(inv.Lines, Line{
			ProductID:      priced.productID[i],
			Name:           li.Name,
			HSNCode:        li.HSNCode,
			Price:          li.Price,
			RateBps:        li.RateBps,
			Unit:           li.Unit,
			Quantity:       li.Quantity,
			DiscountBps:    li.DiscountBps,
			DiscountAmount: li.DiscountAmount,
			TaxableAmount:  li.TaxableAmount,
			TaxAmount:      li.TaxAmount,
			Total:          li.Total,
		})
	}

	saved, err := s.store.Save(ctx, inv)
	if errors.Is(err, ErrNumberTaken) {
		return Invoice{}, common.NewAppError(
			"NUMBER_TAKEN", fmt.Sprintf("invoice number %q is already in use", number),
			http.StatusConflict, err)
	}
	if err != nil {
		return Invoice{}, err
	}

	if obs.InvoicesCreatedTotal != nil {
		obs.InvoicesCreatedTotal.WithLabelValues(string(saved.Regime)).Inc()
	}
	if obs.InvoiceGrandTotalPaise != nil {
		obs.InvoiceGrandTotalPaise.Observe(float64(saved.GrandTotal))
	}
	s.emit(ctx, events.TopicInvoiceCreated, saved)
	return saved, nil
}

// Preview runs the pricing pipeline without persisting anything.
func (s *Service) Preview(ctx context.Context, in SaveInput) (Preview, error) {
	priced, err := s.price(ctx, in)
	if err != nil {
		return Preview{}, err
	}
	return buildPreview(priced.regime, priced.lines, priced.totals), nil
}

// Quote prices loose lines that are not in the catalog.
func (s *Service) Quote(ctx context.Context, in QuoteInput) (Preview, error) {
	if err := common.Validator().Struct(in); err != nil {
		return Preview{}, common.NewAppError(
			"VALIDATION_ERROR", "invalid quote", http.StatusUnprocessableEntity, err,
		).WithDetails(common.ValidationDetails(err))
	}

	lines := make([]gst.LineItem, 0, len(in.Lines))
	for _, q := range in.Lines {
		rateBps := gst.PercentToBps(int(q.GSTRate))
		if !gst.ValidRate(rateBps) {
			return Preview{}, common.NewAppError(
				"INVALID_GST_RATE",
				fmt.Sprintf("gst rate must be one of %v", gst.AllowedRates),
				http.StatusUnprocessableEntity, nil)
		}
		li, err := gst.PriceItem(gst.Product{Name: q.Name, Price: q.Price, RateBps: rateBps}, q.Quantity, q.DiscountBps)
		if err != nil {
			return Preview{}, invalidItem(err)
		}
		lines = append(lines, li)
	}

	seller, err := s.seller.Get(ctx)
	if err != nil {
		return Preview{}, err
	}
	regime := gst.Classify(seller.State, in.BuyerState)
	return buildPreview(regime, lines, gst.Aggregate(lines)), nil
}

// Get returns one invoice with its lines.
func (s *Service) Get(ctx context.Context, id string) (Invoice, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return Invoice{}, notFound()
	}
	inv, err := s.store.Get(ctx, uid)
	if errors.Is(err, ErrNotFound) {
		return Invoice{}, notFound()
	}
	return inv, err
}

// List returns invoice headers, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string, page, perPage int) ([]Invoice, int64, error) {
	filter := Status(strings.ToUpper(strings.TrimSpace(status)))
	switch filter {
	case "", StatusDraft, StatusPending, StatusPaid:
	default:
		return nil, 0, common.NewAppError(
			"BAD_REQUEST", "status filter must be DRAFT, PENDING, or PAID",
			http.StatusBadRequest, nil)
	}
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	return s.store.List(ctx, filter, int32(perPage), int32((page-1)*perPage))
}

// MarkPaid moves a pending invoice to paid and emits invoice.paid.
func (s *Service) MarkPaid(ctx context.Context, id string) (Invoice, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return Invoice{}, notFound()
	}
	inv, err := s.store.UpdateStatus(ctx, uid, StatusPending, StatusPaid)
	if errors.Is(err, ErrNotFound) {
		return Invoice{}, notFound()
	}
	if errors.Is(err, ErrBadTransition) {
		return Invoice{}, common.NewAppError(
			"INVALID_TRANSITION", "only pending invoices can be marked paid",
			http.StatusUnprocessableEntity, err)
	}
	if err != nil {
		return Invoice{}, err
	}
	s.emit(ctx, events.TopicInvoicePaid, inv)
	return inv, nil
}

// Delete removes an invoice from history and emits invoice.deleted.
func (s *Service) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return notFound()
	}
	if err := s.store.Delete(ctx, uid); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound()
		}
		return err
	}
	s.emit(ctx, events.TopicInvoiceDeleted, Invoice{ID: uid})
	return nil
}

func (s *Service) price(ctx context.Context, in SaveInput) (pricedInput, error) {
	if err := common.Validator().Struct(in); err != nil {
		return pricedInput{}, common.NewAppError(
			"VALIDATION_ERROR", "invalid invoice", http.StatusUnprocessableEntity, err,
		).WithDetails(common.ValidationDetails(err))
	}
	if len(in.Items) == 0 {
		return pricedInput{}, common.NewAppError(
			"EMPTY_INVOICE", "invoice must contain at least one item",
			http.StatusUnprocessableEntity, nil)
	}

	customerID, err := uuid.Parse(in.CustomerID)
	if err != nil {
		return pricedInput{}, unknownCustomer()
	}
	customer, err := s.customers.Get(ctx, customerID)
	if errors.Is(err, party.ErrNotFound) {
		return pricedInput{}, unknownCustomer()
	}
	if err != nil {
		return pricedInput{}, err
	}

	ids := make([]uuid.UUID, 0, len(in.Items))
	for _, sel := range in.Items {
		pid, err := uuid.Parse(sel.ProductID)
		if err != nil {
			return pricedInput{}, unknownProduct(sel.ProductID)
		}
		ids = append(ids, pid)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return pricedInput{}, err
	}

	lines := make([]gst.LineItem, 0, len(in.Items))
	for i, sel := range in.Items {
		p, ok := products[ids[i]]
		if !ok {
			return pricedInput{}, unknownProduct(sel.ProductID)
		}
		li, err := gst.PriceItem(gst.Product{
			Name:    p.Name,
			HSNCode: p.HSNCode,
			Price:   p.Price,
			RateBps: gst.PercentToBps(int(p.GSTRate)),
			Unit:    p.Unit,
		}, sel.Quantity, sel.DiscountBps)
		if err != nil {
			return pricedInput{}, invalidItem(err)
		}
		lines = append(lines, li)
	}

	seller, err := s.seller.Get(ctx)
	if err != nil {
		return pricedInput{}, err
	}

	issueDate, err := time.Parse("2006-01-02", in.IssueDate)
	if err != nil {
		return pricedInput{}, common.NewAppError(
			"VALIDATION_ERROR", "issue_date must be YYYY-MM-DD",
			http.StatusUnprocessableEntity, err)
	}
	dueDate := issueDate
	if strings.TrimSpace(in.DueDate) != "" {
		dueDate, err = time.Parse("2006-01-02", in.DueDate)
		if err != nil {
			return pricedInput{}, common.NewAppError(
				"VALIDATION_ERROR", "due_date must be YYYY-MM-DD",
				http.StatusUnprocessableEntity, err)
		}
	}

	return pricedInput{
		customer:  customer,
		regime:    gst.Classify(seller.State, customer.State),
		lines:     lines,
		productID: ids,
		totals:    gst.Aggregate(lines),
		issueDate: issueDate,
		dueDate:   dueDate,
	}, nil
}

func (s *Service) emit(ctx context.Context, topic string, inv Invoice) {
	if s.bus == nil {
		return
	}
	payload := map[string]any{
		"invoice_id":  inv.ID,
		"number":      inv.Number,
		"status":      inv.Status,
		"regime":      inv.Regime,
		"grand_total": inv.GrandTotal,
	}
	if _, err := s.bus.Emit(ctx, topic, inv.ID, payload); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("topic", topic).Msg("emit invoice event")
	}
}

func buildPreview(regime gst.TaxRegime, lines []gst.LineItem, totals gst.Totals) Preview {
	p := Preview{
		Regime:        regime,
		Lines:         lines,
		SubTotal:      totals.SubTotal,
		TotalGST:      totals.TotalGST,
		TotalDiscount: totals.TotalDiscount,
		GrandTotal:    totals.GrandTotal,
	}
	if regime == gst.RegimeCGSTSGST {
		p.CGST, p.SGST = totals.Halves()
	} else {
		p.IGST = totals.TotalGST
	}
	return p
}

func notFound() error {
	return common.NewAppError("NOT_FOUND", "invoice not found", http.StatusNotFound, nil)
}

func unknownCustomer() error {
	return common.NewAppError("UNKNOWN_CUSTOMER", "customer does not exist", http.StatusUnprocessableEntity, nil)
}

func unknownProduct(id string) error {
	return common.NewAppError("UNKNOWN_PRODUCT",
		fmt.Sprintf("product %q does not exist", id), http.StatusUnprocessableEntity, nil)
}

func invalidItem(err error) error {
	return common.NewAppError("INVALID_ITEM", err.Error(), http.StatusUnprocessableEntity, err)
}
