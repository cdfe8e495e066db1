/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Responses
  carry both machine values (decimal strings, ISO dates) and display
  values (pt-BR currency, DD/MM/YYYY dates) so clients never re-implement
  formatting.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DATE AND MONEY FORMATS:
  Requests use the display formats the application has always used:
  dates as DD/MM/YYYY, amounts as "1234.56" or "1.234,56" (an optional
  R$ prefix is tolerated). Responses echo ISO dates alongside display
  dates.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/money.go: ParseMoney, FormatBRL
*/
package api

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/rodrigogonn/debtors/ledger"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// SummaryDTO is the aggregate view across every debtor.
type SummaryDTO struct {
	Total        string `json:"total"`
	TotalDisplay string `json:"totalDisplay"`
	DebtorCount  int    `json:"debtorCount"`
}

// DebtorSummaryDTO represents a debtor in list responses.
type DebtorSummaryDTO struct {
	Name         string `json:"name"`
	Total        string `json:"total"`
	TotalDisplay string `json:"totalDisplay"`
	DebtCount    int    `json:"debtCount"`
	ActiveDebts  int    `json:"activeDebts"`
}

// DebtorDetailDTO is a debtor with its debts, largest balance first.
type DebtorDetailDTO struct {
	Name         string           `json:"name"`
	Total        string           `json:"total"`
	TotalDisplay string           `json:"totalDisplay"`
	Debts        []DebtSummaryDTO `json:"debts"`
}

// DebtSummaryDTO represents a debt in list responses.
type DebtSummaryDTO struct {
	ID             int    `json:"id"`
	Description    string `json:"description"`
	CreationDate   string `json:"creationDate"`
	Balance        string `json:"balance"`
	BalanceDisplay string `json:"balanceDisplay"`
	Installment    bool   `json:"installment"`
	PaidOff        bool   `json:"paidOff"`
}

// DebtDetailDTO is the full computed view of one debt: the replayed
// ledger with synthetic interest, the derived balance, and, where they
// apply, the installment status and the next interest charge.
type DebtDetailDTO struct {
	ID             int        `json:"id"`
	Description    string     `json:"description"`
	Notes          string     `json:"notes,omitempty"`
	CreationDate   string     `json:"creationDate"`
	Balance        string     `json:"balance"`
	BalanceDisplay string     `json:"balanceDisplay"`
	PaidOff        bool       `json:"paidOff"`
	MonthlyRate    string     `json:"monthlyRate"`
	InterestCutoff string     `json:"interestCutoff,omitempty"`
	Ledger         []EventDTO `json:"ledger"`

	Installments *InstallmentStatusDTO `json:"installments,omitempty"`
	NextInterest *InterestPreviewDTO   `json:"nextInterest,omitempty"`
}

// EventDTO is one ledger entry, manual or synthesized.
type EventDTO struct {
	Date          string `json:"date"`
	DateDisplay   string `json:"dateDisplay"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	AmountDisplay string `json:"amountDisplay"`
	Kind          string `json:"kind"`
}

// InstallmentStatusDTO is the derived installment view.
type InstallmentStatusDTO struct {
	Current           int    `json:"current"`
	Total             int    `json:"total"`
	Amount            string `json:"amount"`
	AmountDisplay     string `json:"amountDisplay"`
	TotalPaid         string `json:"totalPaid"`
	PaidTowardCurrent string `json:"paidTowardCurrent"`
	DueDate           string `json:"dueDate"`
	DueDateDisplay    string `json:"dueDateDisplay"`
	Status            string `json:"status"`
}

// InterestPreviewDTO announces the next monthly interest charge.
type InterestPreviewDTO struct {
	Date          string `json:"date"`
	DateDisplay   string `json:"dateDisplay"`
	Amount        string `json:"amount"`
	AmountDisplay string `json:"amountDisplay"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateDebtorRequest creates a debtor.
type CreateDebtorRequest struct {
	Name string `json:"name"`
}

// CreateDebtRequest creates either kind of debt. When Installments is
// set the debt follows a fixed plan and Amount/MonthlyRate are ignored;
// otherwise Amount becomes the initial ledger entry and MonthlyRate the
// first schedule entry.
type CreateDebtRequest struct {
	Description string `json:"description"`
	Notes       string `json:"notes,omitempty"`
	Date        string `json:"date,omitempty"` // DD/MM/YYYY, default today
	Amount      string `json:"amount,omitempty"`
	MonthlyRate string `json:"monthlyRate,omitempty"`

	Installments *InstallmentPlanRequest `json:"installments,omitempty"`
}

// InstallmentPlanRequest declares a fixed plan.
type InstallmentPlanRequest struct {
	Amount       string `json:"amount"`
	Total        int    `json:"total"`
	DueDay       int    `json:"dueDay"`
	FirstDueDate string `json:"firstDueDate"` // DD/MM/YYYY
}

// PaymentRequest records a payment against a debt.
type PaymentRequest struct {
	Amount string `json:"amount"`
	Date   string `json:"date,omitempty"` // DD/MM/YYYY, default today
}

// EventRequest adds or replaces a manual ledger entry. Amount keeps its
// sign: positive charges, negative payments.
type EventRequest struct {
	Date        string `json:"date"` // DD/MM/YYYY
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

// EditDebtRequest is one field edit, dispatched on Op:
//
//	description, notes            value: text
//	monthlyRate                   value: percent, effectiveDate: DD/MM/YYYY
//	interestCutoff                value: DD/MM/YYYY or null to resume
//	installmentAmount             value: money
//	dueDay, totalInstallments     value: number
//	firstDueDate                  value: DD/MM/YYYY
type EditDebtRequest struct {
	Op            string          `json:"op"`
	Value         json.RawMessage `json:"value"`
	EffectiveDate string          `json:"effectiveDate,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEventDTO(e ledger.Event) EventDTO {
	kind := e.Kind
	if kind == "" {
		kind = ledger.EventManual
	}
	return EventDTO{
		Date:          e.Date.ISO(),
		DateDisplay:   e.Date.Display(),
		Description:   e.Description,
		Amount:        e.Amount.StringFixed(2),
		AmountDisplay: ledger.FormatBRL(e.Amount),
		Kind:          string(kind),
	}
}

func toEventDTOs(events []ledger.Event) []EventDTO {
	dtos := make([]EventDTO, len(events))
	for i, e := range events {
		dtos[i] = toEventDTO(e)
	}
	return dtos
}

func toInstallmentStatusDTO(s ledger.InstallmentStatus) *InstallmentStatusDTO {
	return &InstallmentStatusDTO{
		Current:           s.Current,
		Total:             s.Total,
		Amount:            s.Amount.StringFixed(2),
		AmountDisplay:     ledger.FormatBRL(s.Amount),
		TotalPaid:         s.TotalPaid.StringFixed(2),
		PaidTowardCurrent: s.PaidTowardCurrent.StringFixed(2),
		DueDate:           s.DueDate.ISO(),
		DueDateDisplay:    s.DueDate.Display(),
		Status:            string(s.Code),
	}
}

func toDebtSummaryDTO(d *ledger.Debt, ref ledger.Date) DebtSummaryDTO {
	balance := d.Balance(ref)
	return DebtSummaryDTO{
		ID:             d.ID,
		Description:    d.Description,
		CreationDate:   d.CreationDate.Display(),
		Balance:        balance.StringFixed(2),
		BalanceDisplay: ledger.FormatBRL(balance),
		Installment:    d.IsInstallment(),
		PaidOff:        d.PaidOff,
	}
}

func toDebtorSummaryDTO(dr *ledger.Debtor, ref ledger.Date) DebtorSummaryDTO {
	total := dr.Total(ref)
	return DebtorSummaryDTO{
		Name:         dr.Name,
		Total:        total.StringFixed(2),
		TotalDisplay: ledger.FormatBRL(total),
		DebtCount:    len(dr.Debts),
		ActiveDebts:  len(dr.ActiveDebts(ref)),
	}
}

func toDebtDetailDTO(d *ledger.Debt, ref ledger.Date) (DebtDetailDTO, error) {
	dto := DebtDetailDTO{
		ID:           d.ID,
		Description:  d.Description,
		Notes:        d.Notes,
		CreationDate: d.CreationDate.Display(),
		MonthlyRate:  d.RateHistory.RateAt(ref).String(),
	}
	if d.InterestCutoff != nil {
		dto.InterestCutoff = d.InterestCutoff.Display()
	}

	if d.IsInstallment() {
		status, err := ledger.ComputeStatus(d.Installments, d.Ledger, ref)
		if err != nil {
			return DebtDetailDTO{}, err
		}
		balance := d.Balance(ref)
		dto.Balance = balance.StringFixed(2)
		dto.BalanceDisplay = ledger.FormatBRL(balance)
		dto.PaidOff = d.PaidOff
		dto.Ledger = toEventDTOs(d.Ledger)
		dto.Installments = toInstallmentStatusDTO(status)
		return dto, nil
	}

	events, balance := ledger.ComputeLedger(d, ref)
	dto.Balance = balance.StringFixed(2)
	dto.BalanceDisplay = ledger.FormatBRL(balance)
	dto.PaidOff = d.PaidOff
	dto.Ledger = toEventDTOs(events)

	if preview, ok := ledger.NextInterestCharge(d, ref); ok {
		dto.NextInterest = &InterestPreviewDTO{
			Date:          preview.Date.ISO(),
			DateDisplay:   preview.Date.Display(),
			Amount:        preview.Amount.StringFixed(2),
			AmountDisplay: ledger.FormatBRL(preview.Amount),
		}
	}
	return dto, nil
}

// decodeEditOp converts an EditDebtRequest into the corresponding engine
// operation, validating dates and amounts at the boundary.
func decodeEditOp(req EditDebtRequest) (ledger.EditOp, error) {
	switch req.Op {
	case "description":
		var v string
		if err := json.Unmarshal(req.Value, &v); err != nil {
			return nil, &ledger.InvalidPlanError{Field: "description", Reason: "must be a string"}
		}
		return ledger.EditDescription{Value: v}, nil

	case "notes":
		var v string
		if err := json.Unmarshal(req.Value, &v); err != nil {
			return nil, &ledger.InvalidPlanError{Field: "notes", Reason: "must be a string"}
		}
		return ledger.EditNotes{Value: v}, nil

	case "monthlyRate":
		rate, err := decodeDecimal(req.Value, "monthlyRate")
		if err != nil {
			return nil, err
		}
		effective, err := ledger.ParseDisplay(req.EffectiveDate)
		if err != nil {
			return nil, err
		}
		return ledger.EditMonthlyRate{Rate: rate, EffectiveDate: effective}, nil

	case "interestCutoff":
		if string(req.Value) == "null" || len(req.Value) == 0 {
			return ledger.EditInterestCutoff{Value: nil}, nil
		}
		var v string
		if err := json.Unmarshal(req.Value, &v); err != nil {
			return nil, &ledger.InvalidDateError{Input: string(req.Value)}
		}
		date, err := ledger.ParseDisplay(v)
		if err != nil {
			return nil, err
		}
		return ledger.EditInterestCutoff{Value: &date}, nil

	case "installmentAmount":
		amount, err := decodeDecimal(req.Value, "amount")
		if err != nil {
			return nil, err
		}
		return ledger.EditInstallmentAmount{Value: amount}, nil

	case "dueDay":
		var v int
		if err := json.Unmarshal(req.Value, &v); err != nil {
			return nil, &ledger.InvalidPlanError{Field: "dueDay", Reason: "must be a number"}
		}
		return ledger.EditDueDay{Value: v}, nil

	case "totalInstallments":
		var v int
		if err := json.Unmarshal(req.Value, &v); err != nil {
			return nil, &ledger.InvalidPlanError{Field: "total", Reason: "must be a number"}
		}
		return ledger.EditTotalInstallments{Value: v}, nil

	case "firstDueDate":
		var v string
		if err := json.Unmarshal(req.Value, &v); err != nil {
			return nil, &ledger.InvalidDateError{Input: string(req.Value)}
		}
		date, err := ledger.ParseDisplay(v)
		if err != nil {
			return nil, err
		}
		return ledger.EditFirstDueDate{Value: date}, nil
	}

	return nil, &ledger.InvalidPlanError{Field: "op", Reason: "unknown operation " + req.Op}
}

// decodeDecimal accepts either a JSON number or a money string.
func decodeDecimal(raw json.RawMessage, field string) (decimal.Decimal, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ledger.ParseMoney(s)
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		return decimal.Zero, &ledger.InvalidAmountError{Input: string(raw)}
	}
	return d, nil
}
