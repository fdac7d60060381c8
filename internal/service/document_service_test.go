package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"invoicehub/internal/dto"
	"invoicehub/internal/model"
	"invoicehub/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory DocumentRepository stub ────────────────────────────────────────

type stubDocumentRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*model.Document
}

func newStubDocumentRepo() *stubDocumentRepo {
	return &stubDocumentRepo{docs: make(map[uuid.UUID]*model.Document)}
}

func (r *stubDocumentRepo) DB() *gorm.DB { return nil }

func (r *stubDocumentRepo) Create(_ context.Context, _ *gorm.DB, d *model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	cloned := cloneDoc(d)
	r.docs[d.ID] = cloned
	return nil
}

func (r *stubDocumentRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok || d.CompanyID != companyID {
		return nil, errors.New("record not found")
	}
	return cloneDoc(d), nil
}

func (r *stubDocumentRepo) List(_ context.Context, companyID uuid.UUID, filter dto.DocumentFilter) ([]model.Document, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Document
	for _, d := range r.docs {
		if d.CompanyID != companyID {
			continue
		}
		if filter.Type != "" && string(d.Type) != filter.Type {
			continue
		}
		if filter.Status != "" && filter.Status != "all" && string(d.Status) != filter.Status {
			continue
		}
		out = append(out, *cloneDoc(d))
	}
	return out, int64(len(out)), nil
}

func (r *stubDocumentRepo) UpdateVersionedTx(_ context.Context, _ *gorm.DB, id uuid.UUID, expectedVersion int, updates map[string]interface{}) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok || d.Version != expectedVersion {
		return 0, nil
	}
	for k, v := range updates {
		switch k {
		case "status":
			d.Status = v.(model.DocumentStatus)
		case "currency":
			d.Currency = v.(string)
		case "notes":
			n := v.(string)
			d.Notes = &n
		case "terms":
			s := v.(string)
			d.Terms = &s
		case "subtotal":
			d.Subtotal = v.(decimal.Decimal)
		case "tax_total":
			d.TaxTotal = v.(decimal.Decimal)
		case "total":
			d.Total = v.(decimal.Decimal)
		case "snapshot_name":
			d.Snapshot.Name = v.(string)
		case "snapshot_address":
			d.Snapshot.Address, _ = v.(*string)
		case "snapshot_tax_id":
			d.Snapshot.TaxID, _ = v.(*string)
		}
	}
	d.Version++
	return 1, nil
}

func (r *stubDocumentRepo) ReplaceItemsTx(_ context.Context, _ *gorm.DB, documentID uuid.UUID, items []model.DocumentItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[documentID]
	if !ok {
		return errors.New("record not found")
	}
	d.Items = append([]model.DocumentItem(nil), items...)
	return nil
}

func (r *stubDocumentRepo) AppendAuditTx(_ context.Context, _ *gorm.DB, entry *model.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[entry.DocumentID]
	if !ok {
		return errors.New("record not found")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	d.AuditTrail = append(d.AuditTrail, *entry)
	return nil
}

func cloneDoc(d *model.Document) *model.Document {
	cloned := *d
	cloned.Items = append([]model.DocumentItem(nil), d.Items...)
	cloned.AuditTrail = append([]model.AuditEntry(nil), d.AuditTrail...)
	return &cloned
}

var _ repository.DocumentRepository = (*stubDocumentRepo)(nil)

// ── In-memory CompanyRepository stub ─────────────────────────────────────────

type stubCompanyRepo struct {
	mu        sync.Mutex
	companies map[uuid.UUID]*model.Company
}

func newStubCompanyRepo(c *model.Company) *stubCompanyRepo {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return &stubCompanyRepo{companies: map[uuid.UUID]*model.Company{c.ID: c}}
}

func (r *stubCompanyRepo) DB() *gorm.DB { return nil }

func (r *stubCompanyRepo) Create(_ context.Context, c *model.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.companies[c.ID] = c
	return nil
}

func (r *stubCompanyRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cloned := *c
	return &cloned, nil
}

func (r *stubCompanyRepo) Update(_ context.Context, c *model.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.companies[c.ID] = c
	return nil
}

func (r *stubCompanyRepo) NextDocumentNumber(_ context.Context, _ *gorm.DB, companyID uuid.UUID, docType model.DocumentType) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[companyID]
	if !ok {
		return 0, errors.New("record not found")
	}
	var n int64
	switch docType {
	case model.DocumentTypeQuotation:
		n = c.NextQuotationNumber
		c.NextQuotationNumber++
	case model.DocumentTypeCreditNote:
		n = c.NextCreditNoteNumber
		c.NextCreditNoteNumber++
	case model.DocumentTypeDebitNote:
		n = c.NextDebitNoteNumber
		c.NextDebitNoteNumber++
	default:
		n = c.NextInvoiceNumber
		c.NextInvoiceNumber++
	}
	return n, nil
}

var _ repository.CompanyRepository = (*stubCompanyRepo)(nil)

// ── In-memory Customer / Product stubs ───────────────────────────────────────

type stubCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func newStubCustomerRepo(customers ...*model.Customer) *stubCustomerRepo {
	r := &stubCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
	for _, c := range customers {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		r.customers[c.ID] = c
	}
	return r
}

func (r *stubCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.customers[c.ID] = c
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok || c.CompanyID != companyID {
		return nil, errors.New("record not found")
	}
	cloned := *c
	return &cloned, nil
}

func (r *stubCustomerRepo) List(_ context.Context, companyID uuid.UUID, _ bool) ([]model.Customer, error) {
	var out []model.Customer
	for _, c := range r.customers {
		if c.CompanyID == companyID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCustomerRepo) Update(_ context.Context, c *model.Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r *stubCustomerRepo) SoftDelete(_ context.Context, _, id uuid.UUID) error {
	if c, ok := r.customers[id]; ok {
		c.Active = false
	}
	return nil
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo(products ...*model.Product) *stubProductRepo {
	r := &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		r.products[p.ID] = p
	}
	return r
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok || p.CompanyID != companyID {
		return nil, errors.New("record not found")
	}
	cloned := *p
	return &cloned, nil
}

func (r *stubProductRepo) List(_ context.Context, companyID uuid.UUID, _ bool) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.CompanyID == companyID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, _, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── Fixtures ─────────────────────────────────────────────────────────────────

type fixture struct {
	svc       DocumentService
	docs      *stubDocumentRepo
	company   *model.Company
	customers *stubCustomerRepo
	products  *stubProductRepo
}

func newFixture(t *testing.T, customers ...*model.Customer) *fixture {
	t.Helper()
	company := &model.Company{
		ID:                   uuid.New(),
		Name:                 "Acme Corp",
		Currency:             "USD",
		InvoicePrefix:        "INV-",
		QuotationPrefix:      "QUO-",
		CreditNotePrefix:     "CRN-",
		DebitNotePrefix:      "DBN-",
		NextInvoiceNumber:    1,
		NextQuotationNumber:  1,
		NextCreditNoteNumber: 1,
		NextDebitNoteNumber:  1,
	}
	for _, c := range customers {
		c.CompanyID = company.ID
	}
	docs := newStubDocumentRepo()
	customerRepo := newStubCustomerRepo(customers...)
	productRepo := newStubProductRepo()
	svc := NewDocumentService(docs, newStubCompanyRepo(company), customerRepo, productRepo, nil)
	return &fixture{svc: svc, docs: docs, company: company, customers: customerRepo, products: productRepo}
}

func strp(s string) *string { return &s }

func lineReq(name, qty, price, tax string) dto.ItemRequest {
	up := decimal.RequireFromString(price)
	tr := decimal.RequireFromString(tax)
	return dto.ItemRequest{
		Name:      name,
		Quantity:  decimal.RequireFromString(qty),
		UnitPrice: &up,
		TaxRate:   &tr,
	}
}

// ── Create ───────────────────────────────────────────────────────────────────

func TestCreate_CustomerCurrencyAndSnapshot(t *testing.T) {
	customer := &model.Customer{
		Name:     "Euro Client GmbH",
		Address:  strp("Hauptstr. 1, Berlin"),
		TaxID:    strp("DE123456789"),
		Currency: strp("EUR"),
		Active:   true,
	}
	f := newFixture(t, customer)
	cid := customer.ID.String()

	resp, err := f.svc.Create(context.Background(), f.company.ID, dto.CreateDocumentRequest{
		Type:       "invoice",
		CustomerID: &cid,
		Items:      []dto.ItemRequest{lineReq("consulting", "2", "100", "10")},
	})
	require.NoError(t, err)

	assert.Equal(t, "EUR", resp.Currency, "customer preference beats company default")
	assert.Equal(t, "INV-1", resp.Number)
	assert.Equal(t, "draft", resp.Status)
	assert.Equal(t, "editable", resp.Display)
	assert.Equal(t, 1, resp.Version)

	// Snapshot is a copy of the customer at creation time.
	assert.Equal(t, "Euro Client GmbH", resp.Snapshot.Name)
	require.NotNil(t, resp.Snapshot.TaxID)
	assert.Equal(t, "DE123456789", *resp.Snapshot.TaxID)

	assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("200")))
	assert.True(t, resp.TaxTotal.Equal(decimal.RequireFromString("20")))
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("220")))
}

func TestCreate_ExplicitCurrencyWins(t *testing.T) {
	customer := &model.Customer{Name: "Client", Currency: strp("EUR"), Active: true}
	f := newFixture(t, customer)
	cid := customer.ID.String()

	resp, err := f.svc.Create(context.Background(), f.company.ID, dto.CreateDocumentRequest{
		Type:       "invoice",
		CustomerID: &cid,
		Currency:   "GBP",
		Items:      []dto.ItemRequest{lineReq("goods", "1", "10", "0")},
	})
	require.NoError(t, err)
	assert.Equal(t, "GBP", resp.Currency)
}

func TestCreate_FallsBackToCompanyDefault(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Create(context.Background(), f.company.ID, dto.CreateDocumentRequest{
		Type:  "credit_note",
		Items: []dto.ItemRequest{lineReq("refund", "1", "30", "0")},
	})
	require.NoError(t, err)
	assert.Equal(t, "USD", resp.Currency)
	assert.Equal(t, "CRN-1", resp.Number)
}

func TestCreate_PerTypeCounters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mk := func(docType string) string {
		resp, err := f.svc.Create(ctx, f.company.ID, dto.CreateDocumentRequest{
			Type:  docType,
			Items: []dto.ItemRequest{lineReq("x", "1", "1", "0")},
		})
		require.NoError(t, err)
		return resp.Number
	}

	assert.Equal(t, "INV-1", mk("invoice"))
	assert.Equal(t, "QUO-1", mk("quotation"))
	assert.Equal(t, "INV-2", mk("invoice"), "quotations must not consume invoice numbers")
	assert.Equal(t, "DBN-1", mk("debit_note"))
	assert.Equal(t, "QUO-2", mk("quotation"))
}

func TestCreate_ConcurrentNumbersAreUnique(t *testing.T) {
	f := newFixture(t)
	const n = 25

	var wg sync.WaitGroup
	numbers := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := f.svc.Create(context.Background(), f.company.ID, dto.CreateDocumentRequest{
				Type:  "invoice",
				Items: []dto.ItemRequest{lineReq("x", "1", "1", "0")},
			})
			if err != nil {
				numbers <- "err:" + err.Error()
				return
			}
			numbers <- resp.Number
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool, n)
	for num := range numbers {
		require.False(t, seen[num], "duplicate number %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
	assert.True(t, seen["INV-1"])
	assert.True(t, seen[fmt.Sprintf("INV-%d", n)])
}

func TestCreate_RejectsBadItems(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.company.ID, dto.CreateDocumentRequest{
		Type:  "invoice",
		Items: []dto.ItemRequest{lineReq("x", "0", "10", "0")},
	})
	var ive *ItemValidationError
	require.ErrorAs(t, err, &ive)
	assert.Equal(t, "quantity", ive.Field)

	// Nothing persisted, no number consumed.
	resp, err := f.svc.Create(context.Background(), f.company.ID, dto.CreateDocumentRequest{
		Type:  "invoice",
		Items: []dto.ItemRequest{lineReq("ok", "1", "10", "0")},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-1", resp.Number)
}

func TestCreate_ProductPrefillAndOverride(t *testing.T) {
	f := newFixture(t)
	product := &model.Product{
		CompanyID:   f.company.ID,
		Name:        "Standard License",
		UnitPrice:   decimal.RequireFromString("49.99"),
		TaxRate:     decimal.RequireFromString("21"),
		Active:      true,
		Description: strp("1-year license"),
	}
	require.NoError(t, f.products.Create(context.Background(), product))
	pid := product.ID.String()

	override := decimal.RequireFromString("39.99")
	resp, err := f.svc.Create(context.Background(), f.company.ID, dto.CreateDocumentRequest{
		Type: "invoice",
		Items: []dto.ItemRequest{
			{ProductID: &pid, Quantity: decimal.NewFromInt(1)},
			{ProductID: &pid, Quantity: decimal.NewFromInt(2), UnitPrice: &override},
		},
	})
	require.NoError(t, err)

	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Standard License", resp.Items[0].Name)
	assert.True(t, resp.Items[0].UnitPrice.Equal(decimal.RequireFromString("49.99")))
	assert.True(t, resp.Items[0].TaxRate.Equal(decimal.RequireFromString("21")))
	// Explicit request values override the prefill.
	assert.True(t, resp.Items[1].UnitPrice.Equal(decimal.RequireFromString("39.99")))
}

// ── Transition ───────────────────────────────────────────────────────────────

func mustCreateInvoice(t *testing.T, f *fixture, customerID *string) *dto.DocumentResponse {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), f.company.ID, dto.CreateDocumentRequest{
		Type:       "invoice",
		CustomerID: customerID,
		Items:      []dto.ItemRequest{lineReq("consulting", "2", "100", "10")},
	})
	require.NoError(t, err)
	return resp
}

func TestTransition_DraftToSentFreezes(t *testing.T) {
	customer := &model.Customer{Name: "Client", Active: true}
	f := newFixture(t, customer)
	cid := customer.ID.String()
	doc := mustCreateInvoice(t, f, &cid)
	id := uuid.MustParse(doc.ID)

	resp, err := f.svc.Transition(context.Background(), f.company.ID, id, dto.TransitionRequest{
		Status:          "sent",
		ExpectedVersion: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "sent", resp.Status)
	assert.Equal(t, "frozen", resp.Display)
	assert.Equal(t, 2, resp.Version)
}

func TestTransition_RequiresCompleteness(t *testing.T) {
	f := newFixture(t)

	// No customer → an invoice cannot leave draft.
	doc := mustCreateInvoice(t, f, nil)
	_, err := f.svc.Transition(context.Background(), f.company.ID, uuid.MustParse(doc.ID), dto.TransitionRequest{
		Status:          "sent",
		ExpectedVersion: 1,
	})
	var incomplete *IncompleteDocumentError
	require.ErrorAs(t, err, &incomplete)
	assert.Contains(t, incomplete.Missing, "customer")
}

func TestTransition_RejectsUnknownEdge(t *testing.T) {
	customer := &model.Customer{Name: "Client", Active: true}
	f := newFixture(t, customer)
	cid := customer.ID.String()
	doc := mustCreateInvoice(t, f, &cid)
	id := uuid.MustParse(doc.ID)

	_, err := f.svc.Transition(context.Background(), f.company.ID, id, dto.TransitionRequest{
		Status: "sent", ExpectedVersion: 1,
	})
	require.NoError(t, err)

	// sent → draft is not an edge; no un-freezing.
	_, err = f.svc.Transition(context.Background(), f.company.ID, id, dto.TransitionRequest{
		Status: "draft", ExpectedVersion: 2,
	})
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)

	// The failed request had no side effects.
	got, err := f.svc.Get(context.Background(), f.company.ID, id)
	require.NoError(t, err)
	assert.Equal(t, "sent", got.Status)
	assert.Equal(t, 2, got.Version)
}

func TestTransition_StaleVersion(t *testing.T) {
	customer := &model.Customer{Name: "Client", Active: true}
	f := newFixture(t, customer)
	cid := customer.ID.String()
	doc := mustCreateInvoice(t, f, &cid)
	id := uuid.MustParse(doc.ID)

	_, err := f.svc.Transition(context.Background(), f.company.ID, id, dto.TransitionRequest{
		Status: "sent", ExpectedVersion: 1,
	})
	require.NoError(t, err)

	// A second writer still holding version 1 must get a conflict.
	_, err = f.svc.Transition(context.Background(), f.company.ID, id, dto.TransitionRequest{
		Status: "paid", ExpectedVersion: 1,
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, conflict.ExpectedVersion)
	assert.Equal(t, 2, conflict.CurrentVersion)
}

// ── Update ───────────────────────────────────────────────────────────────────

func TestUpdate_DraftAcceptsEverything(t *testing.T) {
	customer := &model.Customer{Name: "Client", Active: true}
	f := newFixture(t, customer)
	cid := customer.ID.String()
	doc := mustCreateInvoice(t, f, &cid)
	id := uuid.MustParse(doc.ID)

	items := []dto.ItemRequest{lineReq("revised", "3", "50", "0")}
	resp, err := f.svc.Update(context.Background(), f.company.ID, id, dto.UpdateDocumentRequest{
		Items:           &items,
		Notes:           strp("net 30"),
		ExpectedVersion: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Version)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("150")))
	require.NotNil(t, resp.Notes)
	assert.Equal(t, "net 30", *resp.Notes)
}

func TestUpdate_FrozenRejectsFinancialEdits(t *testing.T) {
	customer := &model.Customer{Name: "Client", Active: true}
	f := newFixture(t, customer)
	cid := customer.ID.String()
	doc := mustCreateInvoice(t, f, &cid)
	id := uuid.MustParse(doc.ID)

	_, err := f.svc.Transition(context.Background(), f.company.ID, id, dto.TransitionRequest{
		Status: "sent", ExpectedVersion: 1,
	})
	require.NoError(t, err)

	items := []dto.ItemRequest{lineReq("sneaky", "1", "1", "0")}
	_, err = f.svc.Update(context.Background(), f.company.ID, id, dto.UpdateDocumentRequest{
		Items:           &items,
		ExpectedVersion: 2,
	})
	var frozen *DocumentFrozenError
	require.ErrorAs(t, err, &frozen)
	assert.Equal(t, model.StatusSent, frozen.Status)

	// Totals untouched.
	got, err := f.svc.Get(context.Background(), f.company.ID, id)
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("220")))
}

func TestUpdate_NotesStayMutableWhenFrozen(t *testing.T) {
	customer := &model.Customer{Name: "Client", Active: true}
	f := newFixture(t, customer)
	cid := customer.ID.String()
	doc := mustCreateInvoice(t, f, &cid)
	id := uuid.MustParse(doc.ID)

	_, err := f.svc.Transition(context.Background(), f.company.ID, id, dto.TransitionRequest{
		Status: "sent", ExpectedVersion: 1,
	})
	require.NoError(t, err)

	resp, err := f.svc.Update(context.Background(), f.company.ID, id, dto.UpdateDocumentRequest{
		Notes:           strp("customer called, paying friday"),
		DueDate:         strp("2026-10-01"),
		ExpectedVersion: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Version)
	require.NotNil(t, resp.Notes)
	assert.Equal(t, "customer called, paying friday", *resp.Notes)
	assert.Equal(t, "frozen", resp.Display, "note edits do not mark the document amended")
}

func TestUpdate_StaleVersion(t *testing.T) {
	customer := &model.Customer{Name: "Client", Active: true}
	f := newFixture(t, customer)
	cid := customer.ID.String()
	doc := mustCreateInvoice(t, f, &cid)
	id := uuid.MustParse(doc.ID)

	_, err := f.svc.Update(context.Background(), f.company.ID, id, dto.UpdateDocumentRequest{
		Notes: strp("first"), ExpectedVersion: 1,
	})
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), f.company.ID, id, dto.UpdateDocumentRequest{
		Notes: strp("second"), ExpectedVersion: 1,
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

// ── Amend ────────────────────────────────────────────────────────────────────

func TestAmend_AppendsSingleAuditEntry(t *testing.T) {
	customer := &model.Customer{Name: "Client", Active: true}
	f := newFixture(t, customer)
	cid := customer.ID.String()
	doc := mustCreateInvoice(t, f, &cid)
	id := uuid.MustParse(doc.ID)

	_, err := f.svc.Transition(context.Background(), f.company.ID, id, dto.TransitionRequest{
		Status: "sent", ExpectedVersion: 1,
	})
	require.NoError(t, err)

	items := []dto.ItemRequest{lineReq("corrected rate", "2", "90", "10")}
	resp, err := f.svc.Amend(context.Background(), f.company.ID, id, dto.AmendRequest{
		Items:           &items,
		Reason:          "wrong rate on the original invoice",
		ExpectedVersion: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Version)
	assert.Equal(t, "amended", resp.Display)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("198")))
	require.Len(t, resp.AuditTrail, 1)
	assert.Equal(t, "wrong rate on the original invoice", resp.AuditTrail[0].Reason)

	// Persisted state matches: one entry, diff recorded.
	got, err := f.svc.Get(context.Background(), f.company.ID, id)
	require.NoError(t, err)
	require.Len(t, got.AuditTrail, 1)
	assert.Equal(t, "amended", got.Display)

	diff, ok := got.AuditTrail[0].Diff.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, diff, "items")
	assert.Contains(t, diff, "total")
}

func TestAmend_CurrencyChangeInDiff(t *testing.T) {
	customer := &model.Customer{Name: "Client", Active: true}
	f := newFixture(t, customer)
	cid := customer.ID.String()
	doc := mustCreateInvoice(t, f, &cid)
	id := uuid.MustParse(doc.ID)

	_, err := f.svc.Transition(context.Background(), f.company.ID, id, dto.TransitionRequest{
		Status: "sent", ExpectedVersion: 1,
	})
	require.NoError(t, err)

	resp, err := f.svc.Amend(context.Background(), f.company.ID, id, dto.AmendRequest{
		Currency:        strp("EUR"),
		Reason:          "invoiced in the wrong currency",
		ExpectedVersion: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", resp.Currency)

	got, err := f.svc.Get(context.Background(), f.company.ID, id)
	require.NoError(t, err)
	require.Len(t, got.AuditTrail, 1)
	diff, ok := got.AuditTrail[0].Diff.(map[string]interface{})
	require.True(t, ok)
	require.Contains(t, diff, "currency")
	change := diff["currency"].(map[string]interface{})
	assert.Equal(t, "USD", change["from"])
	assert.Equal(t, "EUR", change["to"])
}

func TestAmend_Resnapshot(t *testing.T) {
	customer := &model.Customer{Name: "Old Name Ltd", Active: true}
	f := newFixture(t, customer)
	cid := customer.ID.String()
	doc := mustCreateInvoice(t, f, &cid)
	id := uuid.MustParse(doc.ID)

	_, err := f.svc.Transition(context.Background(), f.company.ID, id, dto.TransitionRequest{
		Status: "sent", ExpectedVersion: 1,
	})
	require.NoError(t, err)

	// Customer renames after the freeze — the snapshot must not move on its own.
	customer.Name = "New Name Ltd"
	require.NoError(t, f.customers.Update(context.Background(), customer))

	got, err := f.svc.Get(context.Background(), f.company.ID, id)
	require.NoError(t, err)
	assert.Equal(t, "Old Name Ltd", got.Snapshot.Name)

	resp, err := f.svc.Amend(context.Background(), f.company.ID, id, dto.AmendRequest{
		Resnapshot:      true,
		Reason:          "customer legal name changed",
		ExpectedVersion: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name Ltd", resp.Snapshot.Name)
	require.Len(t, resp.AuditTrail, 1)
}

func TestAmend_StaleVersion(t *testing.T) {
	customer := &model.Customer{Name: "Client", Active: true}
	f := newFixture(t, customer)
	cid := customer.ID.String()
	doc := mustCreateInvoice(t, f, &cid)
	id := uuid.MustParse(doc.ID)

	_, err := f.svc.Amend(context.Background(), f.company.ID, id, dto.AmendRequest{
		Currency: strp("EUR"), Reason: "stale writer", ExpectedVersion: 99,
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

// ── Tenancy ──────────────────────────────────────────────────────────────────

func TestGet_OtherCompanyIsNotFound(t *testing.T) {
	f := newFixture(t)
	doc := mustCreateInvoice(t, f, nil)
	id := uuid.MustParse(doc.ID)

	_, err := f.svc.Get(context.Background(), uuid.New(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_FiltersByTypeAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		mustCreateInvoice(t, f, nil)
	}
	_, err := f.svc.Create(ctx, f.company.ID, dto.CreateDocumentRequest{
		Type:  "quotation",
		Items: []dto.ItemRequest{lineReq("q", "1", "1", "0")},
	})
	require.NoError(t, err)

	resp, err := f.svc.List(ctx, f.company.ID, dto.DocumentFilter{Type: "invoice", Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 3, resp.Total)

	resp, err = f.svc.List(ctx, f.company.ID, dto.DocumentFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 4, resp.Total)

	// Another tenant sees nothing.
	resp, err = f.svc.List(ctx, uuid.New(), dto.DocumentFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 0, resp.Total)
}
