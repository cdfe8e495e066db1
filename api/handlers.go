/*
handlers.go - HTTP API handlers for the debt tracker

PURPOSE:
  Exposes the debt engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Summary:
    GET    /api/summary                       Grand total and debtor count

  Debtors:
    GET    /api/debtors                       List debtors, largest total first
    POST   /api/debtors                       Create debtor
    GET    /api/debtors/{name}                Debtor with debts, largest first

  Debts:
    POST   /api/debtors/{name}/debts          Create debt (normal or installment)
    GET    /api/debtors/{name}/debts/{id}     Computed ledger, balance, status
    PATCH  /api/debtors/{name}/debts/{id}     Field edit (EditDebtRequest)

  Payments and events:
    POST   /api/debtors/{name}/debts/{id}/payments      Validated payment
    POST   /api/debtors/{name}/debts/{id}/events        Add manual entry
    PUT    /api/debtors/{name}/debts/{id}/events/{idx}  Replace manual entry
    DELETE /api/debtors/{name}/debts/{id}/events/{idx}  Remove manual entry

REQUEST FLOW:
  Every mutation follows the same cycle under one mutex: load the whole
  document, mutate it in memory, save it back wholesale. The store never
  sees partial updates.

ERROR HANDLING:
  Domain errors map to HTTP status by errors.Is/errors.As:
  - 400: Malformed input (dates, amounts, unknown edit ops)
  - 404: Debtor, debt, or event not found
  - 409: Duplicate debtor name
  - 422: Payment rejected (non-positive or above the outstanding balance)
  - 500: Store failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/rodrigogonn/debtors/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store ledger.Store
	Log   *logrus.Logger

	// Now supplies the reference date for balance computations.
	// Overridable in tests.
	Now func() ledger.Date

	// mu serializes the load-mutate-save cycle across requests.
	mu sync.Mutex
}

// NewHandler creates a new handler with the given store.
func NewHandler(store ledger.Store, log *logrus.Logger) *Handler {
	return &Handler{
		Store: store,
		Log:   log,
		Now:   ledger.Today,
	}
}

// =============================================================================
// SUMMARY HANDLERS
// =============================================================================

// GetSummary returns the grand total owed across every debtor.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	st, err := h.Store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	ref := h.Now()
	total := st.Total(ref)

	writeJSON(w, http.StatusOK, SummaryDTO{
		Total:        total.StringFixed(2),
		TotalDisplay: ledger.FormatBRL(total),
		DebtorCount:  len(st.Debtors),
	})
}

// =============================================================================
// DEBTOR HANDLERS
// =============================================================================

// ListDebtors returns all debtors ordered by total owed, largest first.
func (h *Handler) ListDebtors(w http.ResponseWriter, r *http.Request) {
	st, err := h.Store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	ref := h.Now()
	ledger.SortDebtorsByTotal(st.Debtors, ref)

	dtos := make([]DebtorSummaryDTO, len(st.Debtors))
	for i, dr := range st.Debtors {
		dtos[i] = toDebtorSummaryDTO(dr, ref)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateDebtor creates a new debtor.
func (h *Handler) CreateDebtor(w http.ResponseWriter, r *http.Request) {
	var req CreateDebtorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	st, err := h.Store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	dr, err := st.AddDebtor(name)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.Store.Save(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save state", err)
		return
	}

	writeJSON(w, http.StatusCreated, toDebtorSummaryDTO(dr, h.Now()))
}

// GetDebtor returns one debtor with its debts, largest balance first.
func (h *Handler) GetDebtor(w http.ResponseWriter, r *http.Request) {
	st, err := h.Store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	dr, err := st.FindDebtor(chi.URLParam(r, "name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	ref := h.Now()
	debts := make([]*ledger.Debt, len(dr.Debts))
	copy(debts, dr.Debts)
	ledger.SortDebtsByBalance(debts, ref)

	dtos := make([]DebtSummaryDTO, len(debts))
	for i, d := range debts {
		dtos[i] = toDebtSummaryDTO(d, ref)
	}

	total := dr.Total(ref)
	writeJSON(w, http.StatusOK, DebtorDetailDTO{
		Name:         dr.Name,
		Total:        total.StringFixed(2),
		TotalDisplay: ledger.FormatBRL(total),
		Debts:        dtos,
	})
}

// =============================================================================
// DEBT HANDLERS
// =============================================================================

// CreateDebt creates a debt for a debtor. With an installment plan the
// debt is plan-based; otherwise the amount becomes the opening ledger
// entry and the monthly rate the first schedule entry.
func (h *Handler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	var req CreateDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "Description is required", nil)
		return
	}

	creation := h.Now()
	if req.Date != "" {
		parsed, err := ledger.ParseDisplay(req.Date)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		creation = parsed
	}

	debt := &ledger.Debt{
		Description:  req.Description,
		Notes:        req.Notes,
		CreationDate: creation,
	}

	if req.Installments != nil {
		firstDue, err := ledger.ParseDisplay(req.Installments.FirstDueDate)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		amount, err := ledger.ParseMoney(req.Installments.Amount)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		plan := &ledger.InstallmentPlan{
			Amount:       amount,
			Total:        req.Installments.Total,
			DueDay:       req.Installments.DueDay,
			FirstDueDate: firstDue,
		}
		if err := plan.Validate(); err != nil {
			writeDomainError(w, err)
			return
		}
		debt.Installments = plan
	} else {
		amount, err := ledger.ParseMoney(req.Amount)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if !amount.IsPositive() {
			writeError(w, http.StatusBadRequest, "Amount must be positive", nil)
			return
		}
		rate, err := ledger.ParseMoney(req.MonthlyRate)
		if err != nil || rate.IsNegative() {
			writeError(w, http.StatusBadRequest, "Invalid monthly rate", err)
			return
		}
		debt.RateHistory = ledger.Schedule{{EffectiveDate: creation, MonthlyRate: rate}}
		debt.Ledger = []ledger.Event{{
			Date:        creation,
			Description: req.Description,
			Amount:      amount,
			Kind:        ledger.EventManual,
		}}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	st, err := h.Store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	dr, err := st.FindDebtor(chi.URLParam(r, "name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	debt.ID = dr.NextDebtID()
	dr.Debts = append(dr.Debts, debt)

	if err := h.Store.Save(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save state", err)
		return
	}

	dto, err := toDebtDetailDTO(debt, h.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// GetDebt returns the fully computed view of one debt.
func (h *Handler) GetDebt(w http.ResponseWriter, r *http.Request) {
	st, err := h.Store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	debt, err := findDebt(st, r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dto, err := toDebtDetailDTO(debt, h.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// EditDebt applies one field edit to a debt.
func (h *Handler) EditDebt(w http.ResponseWriter, r *http.Request) {
	var req EditDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	op, err := decodeEditOp(req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	st, err := h.Store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	debt, err := findDebt(st, r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := debt.ApplyEdit(op); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.Store.Save(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save state", err)
		return
	}

	dto, err := toDebtDetailDTO(debt, h.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// PAYMENT AND EVENT HANDLERS
// =============================================================================

// AddPayment records a payment, rejecting amounts above the outstanding
// balance.
func (h *Handler) AddPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := ledger.ParseMoney(req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	date := h.Now()
	if req.Date != "" {
		parsed, err := ledger.ParseDisplay(req.Date)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		date = parsed
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	st, err := h.Store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	debt, err := findDebt(st, r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := debt.AddPayment(amount, date, h.Now()); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.Store.Save(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save state", err)
		return
	}

	dto, err := toDebtDetailDTO(debt, h.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// AddEvent appends a manual ledger entry.
func (h *Handler) AddEvent(w http.ResponseWriter, r *http.Request) {
	event, ok := h.decodeEvent(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	st, err := h.Store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	debt, err := findDebt(st, r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	debt.AddEvent(event)

	if err := h.Store.Save(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save state", err)
		return
	}

	dto, err := toDebtDetailDTO(debt, h.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// UpdateEvent replaces the manual entry at a position.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event index", err)
		return
	}

	event, ok := h.decodeEvent(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	st, err := h.Store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	debt, err := findDebt(st, r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := debt.UpdateEvent(index, event); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.Store.Save(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save state", err)
		return
	}

	dto, err := toDebtDetailDTO(debt, h.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// DeleteEvent removes the manual entry at a position.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event index", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	st, err := h.Store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	debt, err := findDebt(st, r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := debt.RemoveEvent(index); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.Store.Save(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save state", err)
		return
	}

	dto, err := toDebtDetailDTO(debt, h.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// HELPERS
// =============================================================================

// findDebt resolves the {name}/{id} pair of a request against the state.
func findDebt(st *ledger.State, r *http.Request) (*ledger.Debt, error) {
	dr, err := st.FindDebtor(chi.URLParam(r, "name"))
	if err != nil {
		return nil, err
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return nil, ledger.ErrDebtNotFound
	}
	return dr.FindDebt(id)
}

// decodeEvent parses an EventRequest body. The signed amount is kept as
// sent: positive charges, negative payments.
func (h *Handler) decodeEvent(w http.ResponseWriter, r *http.Request) (ledger.Event, bool) {
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return ledger.Event{}, false
	}

	date, err := ledger.ParseDisplay(req.Date)
	if err != nil {
		writeDomainError(w, err)
		return ledger.Event{}, false
	}
	amount, err := ledger.ParseMoney(req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return ledger.Event{}, false
	}
	if amount.IsZero() {
		writeError(w, http.StatusBadRequest, "Amount must not be zero", nil)
		return ledger.Event{}, false
	}

	return ledger.Event{
		Date:        date,
		Description: req.Description,
		Amount:      amount,
		Kind:        ledger.EventManual,
	}, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), err.Error(), nil)
}

func statusForError(err error) int {
	var tooLarge *ledger.PaymentTooLargeError
	switch {
	case errors.Is(err, ledger.ErrDebtorNotFound),
		errors.Is(err, ledger.ErrDebtNotFound),
		errors.Is(err, ledger.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDebtorExists):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrPaymentNotPositive),
		errors.As(err, &tooLarge):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
