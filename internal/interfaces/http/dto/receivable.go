package dto

import (
	"time"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// TargetRequest selects one debt document for a manual allocation
type TargetRequest struct {
	TargetType string          `json:"target_type" binding:"required,oneof=INVOICE ADVANCE"`
	TargetID   string          `json:"target_id" binding:"required,uuid"`
	Amount     decimal.Decimal `json:"amount" binding:"decimal_gte0"`
}

// OverrideRequest asks to write into a locked accounting period
type OverrideRequest struct {
	Reason string `json:"reason"`
}

// CreateReceiptRequest is the body of POST /receipts
type CreateReceiptRequest struct {
	SellerTaxCode   string          `json:"seller_tax_code" binding:"required,tax_code"`
	CustomerTaxCode string          `json:"customer_tax_code" binding:"required,tax_code"`
	ReceiptNumber   string          `json:"receipt_number" binding:"required,max=50"`
	ReceiptDate     string          `json:"receipt_date" binding:"required,datetime=2006-01-02"`
	Amount          decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Mode            string          `json:"allocation_mode" binding:"omitempty,oneof=MANUAL FIFO"`
	Priority        string          `json:"allocation_priority" binding:"omitempty,oneof=ISSUE_DATE DUE_DATE"`
	Targets         []TargetRequest `json:"targets" binding:"omitempty,dive"`
	Description     string          `json:"description" binding:"max=500"`
}

// ToInput converts the request into the service input
func (r CreateReceiptRequest) ToInput() (appreceivable.CreateReceiptInput, error) {
	date, err := parseDate(r.ReceiptDate)
	if err != nil {
		return appreceivable.CreateReceiptInput{}, err
	}
	targets, err := toSelections(r.Targets)
	if err != nil {
		return appreceivable.CreateReceiptInput{}, err
	}
	return appreceivable.CreateReceiptInput{
		SellerTaxCode:   r.SellerTaxCode,
		CustomerTaxCode: r.CustomerTaxCode,
		ReceiptNumber:   r.ReceiptNumber,
		ReceiptDate:     date,
		Amount:          r.Amount,
		Mode:            receivable.AllocationMode(r.Mode),
		Priority:        receivable.AllocationPriority(r.Priority),
		Targets:         targets,
		Description:     r.Description,
	}, nil
}

// PreviewRequest is the body of POST /receipts/preview. Either receipt_id or
// the party and amount must be given.
type PreviewRequest struct {
	ReceiptID       string          `json:"receipt_id" binding:"omitempty,uuid"`
	SellerTaxCode   string          `json:"seller_tax_code" binding:"required_without=ReceiptID,max=20"`
	CustomerTaxCode string          `json:"customer_tax_code" binding:"required_without=ReceiptID,max=20"`
	Amount          decimal.Decimal `json:"amount" binding:"decimal_gte0"`
	Priority        string          `json:"allocation_priority" binding:"omitempty,oneof=ISSUE_DATE DUE_DATE"`
	Targets         []TargetRequest `json:"targets" binding:"omitempty,dive"`
}

// ToInput converts the request into the service input
func (r PreviewRequest) ToInput() (appreceivable.PreviewInput, error) {
	targets, err := toSelections(r.Targets)
	if err != nil {
		return appreceivable.PreviewInput{}, err
	}
	input := appreceivable.PreviewInput{
		SellerTaxCode:   r.SellerTaxCode,
		CustomerTaxCode: r.CustomerTaxCode,
		Amount:          r.Amount,
		Priority:        receivable.AllocationPriority(r.Priority),
		Targets:         targets,
	}
	if r.ReceiptID != "" {
		id, err := parseID(r.ReceiptID)
		if err != nil {
			return appreceivable.PreviewInput{}, err
		}
		input.ReceiptID = &id
	}
	return input, nil
}

// ApproveReceiptRequest is the body of POST /receipts/:id/approve
type ApproveReceiptRequest struct {
	Version  int              `json:"version" binding:"required,min=1"`
	Targets  []TargetRequest  `json:"targets" binding:"omitempty,dive"`
	Override *OverrideRequest `json:"override"`
}

// ToInput converts the request into the service input
func (r ApproveReceiptRequest) ToInput(id uuid.UUID) (appreceivable.ApproveReceiptInput, error) {
	targets, err := toSelections(r.Targets)
	if err != nil {
		return appreceivable.ApproveReceiptInput{}, err
	}
	return appreceivable.ApproveReceiptInput{
		ReceiptID: id,
		Version:   r.Version,
		Targets:   targets,
		Override:  r.Override.toDomain(),
	}, nil
}

// VoidRequest is the body of POST /receipts/:id/void and POST /:type/:id/void
type VoidRequest struct {
	Version  int              `json:"version" binding:"required,min=1"`
	Reason   string           `json:"reason" binding:"max=500"`
	Override *OverrideRequest `json:"override"`
}

// UnvoidRequest is the body of POST /receipts/:id/unvoid and POST /:type/:id/unvoid
type UnvoidRequest struct {
	Version  int              `json:"version" binding:"required,min=1"`
	Override *OverrideRequest `json:"override"`
}

// ToReceiptInput converts the request into the receipt void input
func (r VoidRequest) ToReceiptInput(id uuid.UUID) appreceivable.VoidReceiptInput {
	return appreceivable.VoidReceiptInput{
		ReceiptID: id,
		Version:   r.Version,
		Reason:    r.Reason,
		Override:  r.Override.toDomain(),
	}
}

// ToDocumentInput converts the request into the debt document void input
func (r VoidRequest) ToDocumentInput(docType receivable.DocumentType, id uuid.UUID) appreceivable.VoidDebtDocumentInput {
	return appreceivable.VoidDebtDocumentInput{
		Type:       docType,
		DocumentID: id,
		Version:    r.Version,
		Reason:     r.Reason,
		Override:   r.Override.toDomain(),
	}
}

// ToReceiptInput converts the request into the receipt unvoid input
func (r UnvoidRequest) ToReceiptInput(id uuid.UUID) appreceivable.UnvoidReceiptInput {
	return appreceivable.UnvoidReceiptInput{
		ReceiptID: id,
		Version:   r.Version,
		Override:  r.Override.toDomain(),
	}
}

// ToDocumentInput converts the request into the debt document unvoid input
func (r UnvoidRequest) ToDocumentInput(docType receivable.DocumentType, id uuid.UUID) appreceivable.UnvoidDebtDocumentInput {
	return appreceivable.UnvoidDebtDocumentInput{
		Type:       docType,
		DocumentID: id,
		Version:    r.Version,
		Override:   r.Override.toDomain(),
	}
}

// BulkApproveItem is one receipt of a bulk approval
type BulkApproveItem struct {
	ReceiptID string           `json:"receipt_id" binding:"required,uuid"`
	Version   int              `json:"version" binding:"required,min=1"`
	Override  *OverrideRequest `json:"override"`
}

// BulkApproveRequest is the body of POST /receipts/approve-bulk
type BulkApproveRequest struct {
	Items           []BulkApproveItem `json:"items" binding:"required,min=1,max=200,dive"`
	ContinueOnError bool              `json:"continue_on_error"`
}

// ToInput converts the request into the service input
func (r BulkApproveRequest) ToInput() (appreceivable.BulkApproveInput, error) {
	items := make([]appreceivable.ApproveReceiptInput, 0, len(r.Items))
	for _, item := range r.Items {
		id, err := parseID(item.ReceiptID)
		if err != nil {
			return appreceivable.BulkApproveInput{}, err
		}
		items = append(items, appreceivable.ApproveReceiptInput{
			ReceiptID: id,
			Version:   item.Version,
			Override:  item.Override.toDomain(),
		})
	}
	return appreceivable.BulkApproveInput{Items: items, ContinueOnError: r.ContinueOnError}, nil
}

// ListReceiptsQuery holds the query parameters of GET /receipts
type ListReceiptsQuery struct {
	ListRequest
	SellerTaxCode    string `form:"seller_tax_code" binding:"omitempty,tax_code"`
	CustomerTaxCode  string `form:"customer_tax_code" binding:"omitempty,tax_code"`
	Status           string `form:"status" binding:"omitempty,oneof=DRAFT APPROVED VOID"`
	AllocationStatus string `form:"allocation_status" binding:"omitempty,oneof=UNALLOCATED SELECTED SUGGESTED PARTIAL ALLOCATED VOID"`
	FromDate         string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate           string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
}

// ToFilter converts the query into a repository filter
func (q ListReceiptsQuery) ToFilter() (receivable.ReceiptFilter, error) {
	filter := receivable.ReceiptFilter{
		Filter:          q.ListRequest.Filter(),
		SellerTaxCode:   receivable.NormalizeCode(q.SellerTaxCode),
		CustomerTaxCode: receivable.NormalizeCode(q.CustomerTaxCode),
	}
	if q.Status != "" {
		status := receivable.ReceiptStatus(q.Status)
		filter.Status = &status
	}
	if q.AllocationStatus != "" {
		status := receivable.AllocationStatus(q.AllocationStatus)
		filter.AllocationStatus = &status
	}
	if q.FromDate != "" {
		from, err := parseDate(q.FromDate)
		if err != nil {
			return receivable.ReceiptFilter{}, err
		}
		filter.FromDate = &from
	}
	if q.ToDate != "" {
		to, err := parseDate(q.ToDate)
		if err != nil {
			return receivable.ReceiptFilter{}, err
		}
		filter.ToDate = &to
	}
	return filter, nil
}

// OpenItemsQuery holds the query parameters of GET /open-items
type OpenItemsQuery struct {
	SellerTaxCode   string `form:"seller_tax_code" binding:"required,tax_code"`
	CustomerTaxCode string `form:"customer_tax_code" binding:"required,tax_code"`
	Priority        string `form:"priority" binding:"omitempty,oneof=ISSUE_DATE DUE_DATE"`
}

// CreateDebtDocumentRequest is the body of POST /invoices and POST /advances,
// and one item of POST /debt-documents/import
type CreateDebtDocumentRequest struct {
	Type            string           `json:"type" binding:"omitempty,oneof=INVOICE ADVANCE"`
	SellerTaxCode   string           `json:"seller_tax_code" binding:"required,tax_code"`
	CustomerTaxCode string           `json:"customer_tax_code" binding:"required,tax_code"`
	DocumentNumber  string           `json:"document_number" binding:"required,max=50"`
	TotalAmount     decimal.Decimal  `json:"total_amount" binding:"decimal_gt0"`
	IssueDate       string           `json:"issue_date" binding:"required,datetime=2006-01-02"`
	Description     string           `json:"description" binding:"max=500"`
	Override        *OverrideRequest `json:"override"`
}

// ToInput converts the request into the service input. docType wins over
// the body's type when set.
func (r CreateDebtDocumentRequest) ToInput(docType receivable.DocumentType) (appreceivable.CreateDebtDocumentInput, error) {
	if docType == "" {
		docType = receivable.DocumentType(r.Type)
	}
	if !docType.IsValid() {
		return appreceivable.CreateDebtDocumentInput{}, shared.NewDomainError(shared.CodeInvalidInput, "type must be INVOICE or ADVANCE")
	}
	date, err := parseDate(r.IssueDate)
	if err != nil {
		return appreceivable.CreateDebtDocumentInput{}, err
	}
	return appreceivable.CreateDebtDocumentInput{
		Type:            docType,
		SellerTaxCode:   r.SellerTaxCode,
		CustomerTaxCode: r.CustomerTaxCode,
		DocumentNumber:  r.DocumentNumber,
		TotalAmount:     r.TotalAmount,
		IssueDate:       date,
		Description:     r.Description,
		Override:        r.Override.toDomain(),
	}, nil
}

// ImportDebtDocumentsRequest is the body of POST /debt-documents/import
type ImportDebtDocumentsRequest struct {
	Documents []CreateDebtDocumentRequest `json:"documents" binding:"required,min=1,max=1000,dive"`
}

// ToInputs converts every document of the batch
func (r ImportDebtDocumentsRequest) ToInputs() ([]appreceivable.CreateDebtDocumentInput, error) {
	inputs := make([]appreceivable.CreateDebtDocumentInput, 0, len(r.Documents))
	for _, doc := range r.Documents {
		input, err := doc.ToInput("")
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}

// LockPeriodRequest is the body of POST /period-locks. An empty seller locks
// the period for every seller.
type LockPeriodRequest struct {
	SellerTaxCode string `json:"seller_tax_code" binding:"omitempty,tax_code"`
	PeriodKey     string `json:"period_key" binding:"required,datetime=2006-01"`
	Reason        string `json:"reason" binding:"max=500"`
}

// ScanRequest is the optional body of POST /suggestions/scan
type ScanRequest struct {
	SellerTaxCodes []string `json:"seller_tax_codes" binding:"omitempty,max=100,dive,tax_code"`
	Limit          int      `json:"limit" binding:"omitempty,min=1,max=5000"`
}

// ToOptions converts the request into scan options
func (r ScanRequest) ToOptions() appreceivable.ScanOptions {
	return appreceivable.ScanOptions{SellerTaxCodes: r.SellerTaxCodes, Limit: r.Limit}
}

func (o *OverrideRequest) toDomain() *receivable.LockOverride {
	if o == nil {
		return nil
	}
	return &receivable.LockOverride{Reason: o.Reason}
}

func toSelections(targets []TargetRequest) (receivable.TargetSelections, error) {
	if len(targets) == 0 {
		return nil, nil
	}
	out := make(receivable.TargetSelections, 0, len(targets))
	for _, target := range targets {
		id, err := parseID(target.TargetID)
		if err != nil {
			return nil, err
		}
		out = append(out, receivable.TargetSelection{
			TargetType: receivable.DocumentType(target.TargetType),
			TargetID:   id,
			Amount:     target.Amount,
		})
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, shared.NewDomainError(shared.CodeInvalidInput, "dates must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, shared.NewDomainError(shared.CodeInvalidInput, "invalid id format")
	}
	return id, nil
}
