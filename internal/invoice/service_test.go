package invoice

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-gstbill/internal/catalog"
	"github.com/noah-isme/backend-gstbill/internal/common"
	"github.com/noah-isme/backend-gstbill/internal/events"
	"github.com/noah-isme/backend-gstbill/internal/gst"
	"github.com/noah-isme/backend-gstbill/internal/party"
	"github.com/noah-isme/backend-gstbill/internal/profile"
)

type stubStore struct {
	saved    []Invoice
	invoices map[uuid.UUID]Invoice
	seq      int64
	saveErr  error
}

func newStubStore() *stubStore {
	return &stubStore{invoices: map[uuid.UUID]Invoice{}}
}

func (s *stubStore) NextNumber(_ context.Context, prefix string, year int) (string, error) {
	s.seq++
	return fmt.Sprintf("%s-%d-%04d", prefix, year, s.seq), nil
}

func (s *stubStore) Save(_ context.Context, inv Invoice) (Invoice, error) {
	if s.saveErr != nil {
		return Invoice{}, s.saveErr
	}
	inv.ID = uuid.New()
	for i := range inv.Lines {
		inv.Lines[i].ID = uuid.New()
		inv.Lines[i].InvoiceID = inv.ID
		inv.Lines[i].Position = int32(i)
	}
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt
	s.saved = append(s.saved, inv)
	s.invoices[inv.ID] = inv
	return inv, nil
}

func (s *stubStore) Get(_ context.Context, id uuid.UUID) (Invoice, error) {
	inv, ok := s.invoices[id]
	if !ok {
		return Invoice{}, ErrNotFound
	}
	return inv, nil
}

func (s *stubStore) List(_ context.Context, status Status, limit, offset int32) ([]Invoice, int64, error) {
	var out []Invoice
	for _, inv := range s.invoices {
		if status == "" || inv.Status == status {
			out = append(out, inv)
		}
	}
	return out, int64(len(out)), nil
}

func (s *stubStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status) (Invoice, error) {
	inv, ok := s.invoices[id]
	if !ok {
		return Invoice{}, ErrNotFound
	}
	if inv.Status != from {
		return Invoice{}, ErrBadTransition
	}
	inv.Status = to
	s.invoices[id] = inv
	return inv, nil
}

func (s *stubStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.invoices[id]; !ok {
		return ErrNotFound
	}
	delete(s.invoices, id)
	return nil
}

type stubProducts struct {
	products map[uuid.UUID]catalog.Product
}

func (s *stubProducts) GetMany(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Product, error) {
	out := make(map[uuid.UUID]catalog.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type stubCustomers struct {
	customers map[uuid.UUID]party.Customer
}

func (s *stubCustomers) Get(_ context.Context, id uuid.UUID) (party.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return party.Customer{}, party.ErrNotFound
	}
	return c, nil
}

type stubSeller struct {
	state string
}

func (s *stubSeller) Get(_ context.Context) (profile.BusinessProfile, error) {
	return profile.BusinessProfile{Name: "Acme Traders", State: s.state}, nil
}

type captureBus struct {
	topics []string
}

func (c *captureBus) Emit(_ context.Context, topic string, aggregateID uuid.UUID, payload any) (events.Event, error) {
	c.topics = append(c.topics, topic)
	return events.Event{ID: uuid.New(), Topic: topic, AggregateID: aggregateID}, nil
}

type fixture struct {
	store    *stubStore
	bus      *captureBus
	svc      *Service
	customer party.Customer
	productA catalog.Product
	productB catalog.Product
}

func newFixture(t *testing.T, sellerState, buyerState string) *fixture {
	t.Helper()
	customer := party.Customer{
		ID:      uuid.New(),
		Name:    "Sharma Traders",
		GSTIN:   "27AAPFU0939F1ZV",
		Address: "14 MG Road, Pune",
		State:   buyerState,
	}
	productA := catalog.Product{
		ID: uuid.New(), Name: "Steel Bottle 1L", HSNCode: "7310",
		Price: 100000, GSTRate: 18, Unit: "pcs",
	}
	productB := catalog.Product{
		ID: uuid.New(), Name: "Copper Jug", HSNCode: "7418",
		Price: 100000, GSTRate: 18, Unit: "pcs",
	}
	store := newStubStore()
	bus := &captureBus{}
	svc := NewService(ServiceConfig{
		Store:     store,
		Products:  &stubProducts{products: map[uuid.UUID]catalog.Product{productA.ID: productA, productB.ID: productB}},
		Customers: &stubCustomers{customers: map[uuid.UUID]party.Customer{customer.ID: customer}},
		Seller:    &stubSeller{state: sellerState},
		Bus:       bus,
		Prefix:    "INV",
		Now:       func() time.Time { return time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC) },
	})
	return &fixture{store: store, bus: bus, svc: svc, customer: customer, productA: productA, productB: productB}
}

func (f *fixture) saveInput(items ...ItemSelection) SaveInput {
	return SaveInput{
		IssueDate:  "2026-04-01",
		CustomerID: f.customer.ID.String(),
		Items:      items,
	}
}

func TestSaveComputesTotalsAndSnapshots(t *testing.T) {
	f := newFixture(t, "Maharashtra", "Maharashtra")

	in := f.saveInput(
		ItemSelection{ProductID: f.productA.ID.String(), Quantity: 2, DiscountBps: 1000},
		ItemSelection{ProductID: f.productB.ID.String(), Quantity: 2, DiscountBps: 1000},
	)
	saved, err := f.svc.Save(context.Background(), in)
	require.NoError(t, err)

	require.EqualValues(t, 360000, saved.SubTotal)
	require.EqualValues(t, 64800, saved.TotalGST)
	require.EqualValues(t, 40000, saved.TotalDiscount)
	require.EqualValues(t, 424800, saved.GrandTotal)
	require.Equal(t, gst.RegimeCGSTSGST, saved.Regime)

	require.Equal(t, "Sharma Traders", saved.CustomerName)
	require.Equal(t, "27AAPFU0939F1ZV", saved.CustomerGSTIN)
	require.Len(t, saved.Lines, 2)
	require.EqualValues(t, 180000, saved.Lines[0].TaxableAmount)
	require.EqualValues(t, 32400, saved.Lines[0].TaxAmount)
	require.EqualValues(t, 212400, saved.Lines[0].Total)

	require.Equal(t, []string{events.TopicInvoiceCreated}, f.bus.topics)
}

func TestSaveGeneratesNumberWhenBlank(t *testing.T) {
	f := newFixture(t, "Maharashtra", "Karnataka")

	saved, err := f.svc.Save(context.Background(),
		f.saveInput(ItemSelection{ProductID: f.productA.ID.String(), Quantity: 1}))
	require.NoError(t, err)
	require.Equal(t, "INV-2026-0001", saved.Number)
	require.Equal(t, gst.RegimeIGST, saved.Regime)
}

func TestSaveKeepsExplicitNumber(t *testing.T) {
	f := newFixture(t, "Maharashtra", "Maharashtra")

	in := f.saveInput(ItemSelection{ProductID: f.productA.ID.String(), Quantity: 1})
	in.Number = "CUSTOM-77"
	saved, err := f.svc.Save(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, "CUSTOM-77", saved.Number)
	require.Zero(t, f.store.seq)
}

func TestSaveRejectsEmptyInvoice(t *testing.T) {
	f := newFixture(t, "Maharashtra", "Maharashtra")

	_, err := f.svc.Save(context.Background(), f.saveInput())
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "EMPTY_INVOICE", appErr.Code)
	require.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	require.Empty(t, f.store.saved)
}

func TestSaveRejectsUnknownCustomer(t *testing.T) {
	f := newFixture(t, "Maharashtra", "Maharashtra")

	in := f.saveInput(ItemSelection{ProductID: f.productA.ID.String(), Quantity: 1})
	in.CustomerID = uuid.NewString()
	_, err := f.svc.Save(context.Background(), in)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "UNKNOWN_CUSTOMER", appErr.Code)
}

func TestSaveRejectsUnknownProduct(t *testing.T) {
	f := newFixture(t, "Maharashtra", "Maharashtra")

	_, err := f.svc.Save(context.Background(),
		f.saveInput(ItemSelection{ProductID: uuid.NewString(), Quantity: 1}))
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "UNKNOWN_PRODUCT", appErr.Code)
}

func TestSaveRejectsBadQuantityAndDiscount(t *testing.T) {
	f := newFixture(t, "Maharashtra", "Maharashtra")

	_, err := f.svc.Save(context.Background(),
		f.saveInput(ItemSelection{ProductID: f.productA.ID.String(), Quantity: 0}))
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VALIDATION_ERROR", appErr.Code)

	_, err = f.svc.Save(context.Background(),
		f.saveInput(ItemSelection{ProductID: f.productA.ID.String(), Quantity: 1, DiscountBps: 10001}))
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestSaveNumberConflict(t *testing.T) {
	f := newFixture(t, "Maharashtra", "Maharashtra")
	f.store.saveErr = ErrNumberTaken

	in := f.saveInput(ItemSelection{ProductID: f.productA.ID.String(), Quantity: 1})
	in.Number = "INV-2026-0001"
	_, err := f.svc.Save(context.Background(), in)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "NUMBER_TAKEN", appErr.Code)
	require.Equal(t, http.StatusConflict, appErr.HTTPStatus)
}

func TestPreviewDoesNotPersist(t *testing.T) {
	f := newFixture(t, "Maharashtra", "Maharashtra")

	preview, err := f.svc.Preview(context.Background(),
		f.saveInput(ItemSelection{ProductID: f.productA.ID.String(), Quantity: 2, DiscountBps: 1000}))
	require.NoError(t, err)
	require.EqualValues(t, 180000, preview.SubTotal)
	require.EqualValues(t, 32400, preview.TotalGST)
	require.EqualValues(t, 212400, preview.GrandTotal)
	require.EqualValues(t, 16200, preview.CGST)
	require.EqualValues(t, 16200, preview.SGST)
	require.Zero(t, preview.IGST)

	require.Empty(t, f.store.saved)
	require.Empty(t, f.bus.topics)
}

func TestPreviewInterStateReportsIGST(t *testing.T) {
	f := newFixture(t, "Maharashtra", "Karnataka")

	preview, err := f.svc.Preview(context.Background(),
		f.saveInput(ItemSelection{ProductID: f.productA.ID.String(), Quantity: 1}))
	require.NoError(t, err)
	require.Equal(t, gst.RegimeIGST, preview.Regime)
	require.EqualValues(t, 18000, preview.IGST)
	require.Zero(t, preview.CGST)
	require.Zero(t, preview.SGST)
}

func TestQuotePricesAdHocLines(t *testing.T) {
	f := newFixture(t, "Maharashtra", "Maharashtra")

	preview, err := f.svc.Quote(context.Background(), QuoteInput{
		BuyerState: "Karnataka",
		Lines: []QuoteLine{
			{Name: "Consulting", Price: 500000, GSTRate: 18, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Equal(t, gst.RegimeIGST, preview.Regime)
	require.EqualValues(t, 500000, preview.SubTotal)
	require.EqualValues(t, 90000, preview.TotalGST)
	require.EqualValues(t, 590000, preview.GrandTotal)
}

func TestQuoteRejectsDisallowedRate(t *testing.T) {
	f := newFixture(t, "Maharashtra", "Maharashtra")

	_, err := f.svc.Quote(context.Background(), QuoteInput{
		Lines: []QuoteLine{{Name: "Misc", Price: 1000, GSTRate: 7, Quantity: 1}},
	})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "INVALID_GST_RATE", appErr.Code)
}

func TestMarkPaidTransition(t *testing.T) {
	f := newFixture(t, "Maharashtra", "Maharashtra")

	saved, err := f.svc.Save(context.Background(),
		f.saveInput(ItemSelection{ProductID: f.productA.ID.String(), Quantity: 1}))
	require.NoError(t, err)
	require.Equal(t, StatusPending, saved.Status)

	paid, err := f.svc.MarkPaid(context.Background(), saved.ID.String())
	require.NoError(t, err)
	require.Equal(t, StatusPaid, paid.Status)
	require.Contains(t, f.bus.topics, events.TopicInvoicePaid)

	_, err = f.svc.MarkPaid(context.Background(), saved.ID.String())
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "INVALID_TRANSITION", appErr.Code)
}

func TestDeleteEmitsEvent(t *testing.T) {
	f := newFixture(t, "Maharashtra", "Maharashtra")

	saved, err := f.svc.Save(context.Background(),
		f.saveInput(ItemSelection{ProductID: f.productA.ID.String(), Quantity: 1}))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), saved.ID.String()))
	require.Contains(t, f.bus.topics, events.TopicInvoiceDeleted)

	err = f.svc.Delete(context.Background(), saved.ID.String())
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	f := newFixture(t, "Maharashtra", "Maharashtra")

	_, _, err := f.svc.List(context.Background(), "SHIPPED", 1, 20)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "BAD_REQUEST", appErr.Code)
}
