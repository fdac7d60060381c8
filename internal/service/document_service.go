package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"invoicehub/internal/dto"
	"invoicehub/internal/model"
	"invoicehub/internal/repository"
	"invoicehub/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentService interface {
	Create(ctx context.Context, companyID uuid.UUID, req dto.CreateDocumentRequest) (*dto.DocumentResponse, error)
	Get(ctx context.Context, companyID, id uuid.UUID) (*dto.DocumentResponse, error)
	List(ctx context.Context, companyID uuid.UUID, filter dto.DocumentFilter) (*dto.DocumentListResponse, error)
	Update(ctx context.Context, companyID, id uuid.UUID, req dto.UpdateDocumentRequest) (*dto.DocumentResponse, error)
	Transition(ctx context.Context, companyID, id uuid.UUID, req dto.TransitionRequest) (*dto.DocumentResponse, error)
	Amend(ctx context.Context, companyID, id uuid.UUID, req dto.AmendRequest) (*dto.DocumentResponse, error)
}

type documentService struct {
	repo         repository.DocumentRepository
	companyRepo  repository.CompanyRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	dispatcher   *worker.Dispatcher
}

func NewDocumentService(
	repo repository.DocumentRepository,
	companyRepo repository.CompanyRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	dispatcher *worker.Dispatcher,
) DocumentService {
	return &documentService{
		repo:         repo,
		companyRepo:  companyRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		dispatcher:   dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Create ────────────────────────────────────────────────────────────────────
// 1. Resolve customer (optional) and capture the snapshot source
// 2. Resolve currency (request → customer → company)
// 3. Resolve + validate items, compute totals
// 4. BEGIN TX: consume the per-type counter, persist document
// 5. COMMIT — a rollback leaves a counter gap, never a duplicate number

func (s *documentService) Create(ctx context.Context, companyID uuid.UUID, req dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	docType := model.DocumentType(req.Type)
	if !docType.Valid() {
		return nil, fmt.Errorf("unknown document type %q", req.Type)
	}

	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, ErrNotFound
	}

	var customer *model.Customer
	var customerID *uuid.UUID
	customerCurrency := ""
	if req.CustomerID != nil {
		cid, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("invalid customer_id: %w", err)
		}
		customer, err = s.customerRepo.FindByID(ctx, companyID, cid)
		if err != nil {
			return nil, ErrNotFound
		}
		customerID = &cid
		if customer.Currency != nil {
			customerCurrency = *customer.Currency
		}
	}

	currency, err := ResolveCurrency(req.Currency, customerCurrency, company.Currency)
	if err != nil {
		return nil, err
	}

	items, err := s.resolveItems(ctx, companyID, req.Items)
	if err != nil {
		return nil, err
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	issueDate := datatypes.Date(time.Now())
	if req.IssueDate != "" {
		issueDate, err = parseDate(req.IssueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid issue_date: %w", err)
		}
	}
	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("invalid due_date: %w", err)
	}
	validUntil, err := parseOptionalDate(req.ValidUntil)
	if err != nil {
		return nil, fmt.Errorf("invalid valid_until: %w", err)
	}

	doc := model.Document{
		CompanyID:  companyID,
		Type:       docType,
		CustomerID: customerID,
		Currency:   currency,
		Status:     model.StatusDraft,
		IssueDate:  issueDate,
		DueDate:    dueDate,
		ValidUntil: validUntil,
		Notes:      req.Notes,
		Terms:      req.Terms,
		Version:    1,
		Items:      items,
	}
	if customer != nil {
		doc.Snapshot = model.CustomerSnapshot{
			Name:    customer.Name,
			Address: customer.Address,
			TaxID:   customer.TaxID,
		}
	}
	computeTotals(&doc)

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		seq, err := s.companyRepo.NextDocumentNumber(ctx, tx, companyID, docType)
		if err != nil {
			return err
		}
		doc.Number = company.NumberPrefix(docType) + strconv.FormatInt(seq, 10)
		return s.repo.Create(ctx, tx, &doc)
	})
	if txErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, txErr)
	}

	return documentToResponse(&doc), nil
}

// ── Get / List ────────────────────────────────────────────────────────────────

func (s *documentService) Get(ctx context.Context, companyID, id uuid.UUID) (*dto.DocumentResponse, error) {
	doc, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return documentToResponse(doc), nil
}

func (s *documentService) List(ctx context.Context, companyID uuid.UUID, filter dto.DocumentFilter) (*dto.DocumentListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	docs, total, err := s.repo.List(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DocumentListItem, 0, len(docs))
	for i := range docs {
		items = append(items, *documentToListItem(&docs[i]))
	}
	return &dto.DocumentListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Update ────────────────────────────────────────────────────────────────────
// Drafts accept direct edits of everything. Outside draft, financial fields
// (items, currency, customer) are rejected with DocumentFrozen — only the
// amendment path may touch them. Notes, terms and the calendar dates stay
// directly editable in any status.

func (s *documentService) Update(ctx context.Context, companyID, id uuid.UUID, req dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	doc, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if doc.Version != req.ExpectedVersion {
		return nil, &ConflictError{ExpectedVersion: req.ExpectedVersion, CurrentVersion: doc.Version}
	}

	isDraft := doc.Status == model.StatusDraft
	touchesFinancial := req.Items != nil || req.Currency != nil || req.CustomerID != nil
	if !isDraft && touchesFinancial {
		return nil, &DocumentFrozenError{Status: doc.Status}
	}

	updates := map[string]interface{}{}
	var newItems []model.DocumentItem
	itemsChanged := false

	if isDraft {
		if req.CustomerID != nil {
			cid, err := uuid.Parse(*req.CustomerID)
			if err != nil {
				return nil, fmt.Errorf("invalid customer_id: %w", err)
			}
			customer, err := s.customerRepo.FindByID(ctx, companyID, cid)
			if err != nil {
				return nil, ErrNotFound
			}
			doc.CustomerID = &cid
			doc.Snapshot = model.CustomerSnapshot{
				Name:    customer.Name,
				Address: customer.Address,
				TaxID:   customer.TaxID,
			}
			updates["customer_id"] = cid
			updates["snapshot_name"] = customer.Name
			updates["snapshot_address"] = customer.Address
			updates["snapshot_tax_id"] = customer.TaxID
		}
		if req.Currency != nil {
			// Explicit user choice wins over any earlier resolution.
			currency, err := ResolveCurrency(*req.Currency, "", doc.Currency)
			if err != nil {
				return nil, err
			}
			doc.Currency = currency
			updates["currency"] = currency
		}
		if req.Items != nil {
			newItems, err = s.resolveItems(ctx, companyID, *req.Items)
			if err != nil {
				return nil, err
			}
			if err := validateItems(newItems); err != nil {
				return nil, err
			}
			doc.Items = newItems
			itemsChanged = true
		}
		if itemsChanged || req.Currency != nil {
			computeTotals(doc)
			updates["subtotal"] = doc.Subtotal
			updates["tax_total"] = doc.TaxTotal
			updates["total"] = doc.Total
		}
	}

	if req.DueDate != nil {
		d, err := parseDate(*req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid due_date: %w", err)
		}
		doc.DueDate = &d
		updates["due_date"] = d
	}
	if req.ValidUntil != nil {
		d, err := parseDate(*req.ValidUntil)
		if err != nil {
			return nil, fmt.Errorf("invalid valid_until: %w", err)
		}
		doc.ValidUntil = &d
		updates["valid_until"] = d
	}
	if req.Notes != nil {
		doc.Notes = req.Notes
		updates["notes"] = *req.Notes
	}
	if req.Terms != nil {
		doc.Terms = req.Terms
		updates["terms"] = *req.Terms
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rows, err := s.repo.UpdateVersionedTx(ctx, tx, doc.ID, req.ExpectedVersion, updates)
		if err != nil {
			return err
		}
		if rows == 0 {
			return &ConflictError{ExpectedVersion: req.ExpectedVersion, CurrentVersion: doc.Version}
		}
		if itemsChanged {
			return s.repo.ReplaceItemsTx(ctx, tx, doc.ID, doc.Items)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	doc.Version++
	return documentToResponse(doc), nil
}

// ── Transition ────────────────────────────────────────────────────────────────

func (s *documentService) Transition(ctx context.Context, companyID, id uuid.UUID, req dto.TransitionRequest) (*dto.DocumentResponse, error) {
	doc, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if doc.Version != req.ExpectedVersion {
		return nil, &ConflictError{ExpectedVersion: req.ExpectedVersion, CurrentVersion: doc.Version}
	}

	target := model.DocumentStatus(req.Status)
	if err := validateTransition(doc, target); err != nil {
		return nil, err
	}
	leavingDraft := doc.Status == model.StatusDraft

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rows, err := s.repo.UpdateVersionedTx(ctx, tx, doc.ID, req.ExpectedVersion,
			map[string]interface{}{"status": target})
		if err != nil {
			return err
		}
		if rows == 0 {
			return &ConflictError{ExpectedVersion: req.ExpectedVersion, CurrentVersion: doc.Version}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	doc.Status = target
	doc.Version++

	// Async delivery — fire & forget, never blocks the lifecycle.
	if leavingDraft && target == model.StatusSent && s.dispatcher != nil && doc.CustomerID != nil {
		if customer, err := s.customerRepo.FindByID(ctx, companyID, *doc.CustomerID); err == nil &&
			customer.Email != nil && *customer.Email != "" {
			_ = s.dispatcher.EnqueueDelivery(ctx, worker.DeliveryJobPayload{
				DocumentID: doc.ID.String(),
				CompanyID:  companyID.String(),
				ToEmail:    *customer.Email,
			})
		}
	}

	return documentToResponse(doc), nil
}

// ── Amend ─────────────────────────────────────────────────────────────────────
// The only sanctioned way to alter a non-draft document's financial data.
// Applies the change, appends exactly one audit entry with the field diff,
// and recomputes totals — all in one transaction.

func (s *documentService) Amend(ctx context.Context, companyID, id uuid.UUID, req dto.AmendRequest) (*dto.DocumentResponse, error) {
	doc, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if doc.Version != req.ExpectedVersion {
		return nil, &ConflictError{ExpectedVersion: req.ExpectedVersion, CurrentVersion: doc.Version}
	}

	amended := *doc
	amended.Items = append([]model.DocumentItem(nil), doc.Items...)
	itemsChanged := false

	if req.Currency != nil {
		currency, err := ResolveCurrency(*req.Currency, "", doc.Currency)
		if err != nil {
			return nil, err
		}
		amended.Currency = currency
	}
	if req.Items != nil {
		newItems, err := s.resolveItems(ctx, companyID, *req.Items)
		if err != nil {
			return nil, err
		}
		if err := validateItems(newItems); err != nil {
			return nil, err
		}
		amended.Items = newItems
		itemsChanged = true
	}
	if req.Resnapshot {
		if doc.CustomerID == nil {
			return nil, &IncompleteDocumentError{Missing: []string{"customer"}}
		}
		customer, err := s.customerRepo.FindByID(ctx, companyID, *doc.CustomerID)
		if err != nil {
			return nil, ErrNotFound
		}
		amended.Snapshot = model.CustomerSnapshot{
			Name:    customer.Name,
			Address: customer.Address,
			TaxID:   customer.TaxID,
		}
	}

	computeTotals(&amended)

	diff, err := diffDocuments(doc, &amended)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"currency":         amended.Currency,
		"snapshot_name":    amended.Snapshot.Name,
		"snapshot_address": amended.Snapshot.Address,
		"snapshot_tax_id":  amended.Snapshot.TaxID,
		"subtotal":         amended.Subtotal,
		"tax_total":        amended.TaxTotal,
		"total":            amended.Total,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rows, err := s.repo.UpdateVersionedTx(ctx, tx, doc.ID, req.ExpectedVersion, updates)
		if err != nil {
			return err
		}
		if rows == 0 {
			return &ConflictError{ExpectedVersion: req.ExpectedVersion, CurrentVersion: doc.Version}
		}
		if itemsChanged {
			if err := s.repo.ReplaceItemsTx(ctx, tx, doc.ID, amended.Items); err != nil {
				return err
			}
		}
		return s.repo.AppendAuditTx(ctx, tx, &model.AuditEntry{
			DocumentID: doc.ID,
			Reason:     req.Reason,
			Diff:       diff,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	amended.Version = doc.Version + 1
	amended.AuditTrail = append(amended.AuditTrail, model.AuditEntry{
		DocumentID: doc.ID,
		Reason:     req.Reason,
		Diff:       diff,
		CreatedAt:  time.Now(),
	})
	return documentToResponse(&amended), nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

// resolveItems turns submitted lines into document items. A product reference
// prefills name / unit price / tax rate; explicit request values override.
// The resulting item owns copies of everything — later product edits never
// reach existing documents.
func (s *documentService) resolveItems(ctx context.Context, companyID uuid.UUID, reqs []dto.ItemRequest) ([]model.DocumentItem, error) {
	items := make([]model.DocumentItem, 0, len(reqs))
	for i, req := range reqs {
		item := model.DocumentItem{
			Position:    i,
			Name:        req.Name,
			Description: req.Description,
			Quantity:    req.Quantity,
			TaxRate:     decimal.Zero,
		}
		if req.UnitPrice != nil {
			item.UnitPrice = *req.UnitPrice
		}
		if req.TaxRate != nil {
			item.TaxRate = *req.TaxRate
		}

		if req.ProductID != nil {
			pid, err := uuid.Parse(*req.ProductID)
			if err != nil {
				return nil, fmt.Errorf("item %d: invalid product_id: %w", i, err)
			}
			product, err := s.productRepo.FindByID(ctx, companyID, pid)
			if err != nil {
				return nil, fmt.Errorf("item %d: product %s not found", i, pid)
			}
			if !product.Active {
				return nil, fmt.Errorf("item %d: product %q is inactive", i, product.Name)
			}
			item.ProductID = &pid
			if item.Name == "" {
				item.Name = product.Name
			}
			if item.Description == nil {
				item.Description = product.Description
			}
			if req.UnitPrice == nil {
				item.UnitPrice = product.UnitPrice
			}
			if req.TaxRate == nil {
				item.TaxRate = product.TaxRate
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// diffDocuments builds the audit diff over the frozen financial fields.
// Shape: {"field": {"from": …, "to": …}} — only changed fields appear.
func diffDocuments(old, amended *model.Document) (datatypes.JSON, error) {
	diff := map[string]map[string]interface{}{}

	if old.Currency != amended.Currency {
		diff["currency"] = map[string]interface{}{"from": old.Currency, "to": amended.Currency}
	}
	if !snapshotEqual(old.Snapshot, amended.Snapshot) {
		diff["customer_snapshot"] = map[string]interface{}{"from": old.Snapshot, "to": amended.Snapshot}
	}
	if !itemsEqual(old.Items, amended.Items) {
		diff["items"] = map[string]interface{}{
			"from": summarizeItems(old.Items),
			"to":   summarizeItems(amended.Items),
		}
	}
	if !old.Total.Equal(amended.Total) {
		diff["total"] = map[string]interface{}{"from": old.Total, "to": amended.Total}
	}

	raw, err := json.Marshal(diff)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func snapshotEqual(a, b model.CustomerSnapshot) bool {
	return a.Name == b.Name && strPtrEqual(a.Address, b.Address) && strPtrEqual(a.TaxID, b.TaxID)
}

func itemsEqual(a, b []model.DocumentItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name ||
			!a[i].Quantity.Equal(b[i].Quantity) ||
			!a[i].UnitPrice.Equal(b[i].UnitPrice) ||
			!a[i].TaxRate.Equal(b[i].TaxRate) {
			return false
		}
	}
	return true
}

type itemSummary struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
}

func summarizeItems(items []model.DocumentItem) []itemSummary {
	out := make([]itemSummary, 0, len(items))
	for _, it := range items {
		out = append(out, itemSummary{
			Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice, TaxRate: it.TaxRate,
		})
	}
	return out
}

const dateLayout = "2006-01-02"

func parseDate(s string) (datatypes.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return datatypes.Date{}, err
	}
	return datatypes.Date(t), nil
}

func parseOptionalDate(s *string) (*datatypes.Date, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func formatDate(d datatypes.Date) string {
	return time.Time(d).Format(dateLayout)
}

func formatOptionalDate(d *datatypes.Date) *string {
	if d == nil {
		return nil
	}
	s := formatDate(*d)
	return &s
}

func documentToResponse(d *model.Document) *dto.DocumentResponse {
	items := make([]dto.ItemResponse, 0, len(d.Items))
	for _, it := range d.Items {
		var pid *string
		if it.ProductID != nil {
			s := it.ProductID.String()
			pid = &s
		}
		items = append(items, dto.ItemResponse{
			ID:          it.ID.String(),
			ProductID:   pid,
			Name:        it.Name,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
			Subtotal:    it.Subtotal,
			TaxAmount:   it.TaxAmount,
			Total:       it.Total,
		})
	}

	audit := make([]dto.AuditEntryResponse, 0, len(d.AuditTrail))
	for _, e := range d.AuditTrail {
		var diff interface{}
		_ = json.Unmarshal(e.Diff, &diff)
		audit = append(audit, dto.AuditEntryResponse{
			ID:        e.ID.String(),
			Reason:    e.Reason,
			Diff:      diff,
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	var customerID *string
	if d.CustomerID != nil {
		s := d.CustomerID.String()
		customerID = &s
	}

	return &dto.DocumentResponse{
		ID:         d.ID.String(),
		Type:       string(d.Type),
		Number:     d.Number,
		CustomerID: customerID,
		Snapshot: dto.SnapshotResponse{
			Name:    d.Snapshot.Name,
			Address: d.Snapshot.Address,
			TaxID:   d.Snapshot.TaxID,
		},
		Currency:   d.Currency,
		Status:     string(d.Status),
		Display:    string(d.Display()),
		Items:      items,
		Subtotal:   d.Subtotal,
		TaxTotal:   d.TaxTotal,
		Total:      d.Total,
		IssueDate:  formatDate(d.IssueDate),
		DueDate:    formatOptionalDate(d.DueDate),
		ValidUntil: formatOptionalDate(d.ValidUntil),
		Notes:      d.Notes,
		Terms:      d.Terms,
		AuditTrail: audit,
		Version:    d.Version,
		CreatedAt:  d.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  d.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func documentToListItem(d *model.Document) *dto.DocumentListItem {
	return &dto.DocumentListItem{
		ID:           d.ID.String(),
		Type:         string(d.Type),
		Number:       d.Number,
		CustomerName: d.Snapshot.Name,
		Currency:     d.Currency,
		Total:        d.Total,
		Status:       string(d.Status),
		Display:      string(d.Display()),
		IssueDate:    formatDate(d.IssueDate),
		Version:      d.Version,
		CreatedAt:    d.CreatedAt.UTC().Format(time.RFC3339),
	}
}
