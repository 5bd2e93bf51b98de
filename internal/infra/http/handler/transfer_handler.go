package handler

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/usecase"
	"github.com/shopspring/decimal"
)

type TransferExecutor interface {
	Execute(ctx context.Context, input usecase.TransferMoneyInput) (*usecase.TransferMoneyOutput, error)
}

type TransferLister interface {
	Execute(ctx context.Context, input usecase.ListTransfersInput) ([]*domain.Transfer, error)
}

// TransferHandler expõe as operações de transferência via HTTP
type TransferHandler struct {
	transferUseCase TransferExecutor
	listUseCase     TransferLister
}

// NewTransferHandler cria uma nova instância
func NewTransferHandler(uc TransferExecutor, lister TransferLister) *TransferHandler {
	return &TransferHandler{
		transferUseCase: uc,
		listUseCase:     lister,
	}
}

// DTOs (Data Transfer Objects) para Request/Response
// amount chega em reais ("30.50" ou 30.5) e vira centavos aqui na borda
type CreateTransferRequest struct {
	Sender   string          `json:"sender"`
	Receiver string          `json:"receiver"`
	Amount   decimal.Decimal `json:"amount"`
}

// TransferItem é o mesmo formato da resposta de criação
type TransferItem = CreateTransferResponse

type CreateTransferResponse struct {
	TransferID  int64     `json:"transfer_id"`
	Sender      string    `json:"sender"`
	Receiver    string    `json:"receiver"`
	Amount      string    `json:"amount"`
	AmountCents int64     `json:"amount_cents"`
	CreatedAt   time.Time `json:"created_at"`
}

// Create processa a requisição de transferência
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Payload inválido")
		return
	}

	cents, ok := toCents(req.Amount)
	if !ok {
		respondError(w, http.StatusBadRequest, "Valor inválido: no máximo duas casas decimais e dentro do limite")
		return
	}

	output, err := h.transferUseCase.Execute(r.Context(), usecase.TransferMoneyInput{
		SenderName:   req.Sender,
		ReceiverName: req.Receiver,
		Amount:       cents,
	})
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CreateTransferResponse{
		TransferID:  output.TransferID,
		Sender:      output.SenderName,
		Receiver:    output.ReceiverName,
		Amount:      fromCents(output.Amount),
		AmountCents: output.Amount,
		CreatedAt:   output.CreatedAt,
	})
}

// List devolve o histórico (GET /transfers?limit=N)
func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, 0)
}

// ListByAccount devolve o histórico de uma conta (GET /accounts/{id}/transfers)
func (h *TransferHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	h.list(w, r, id)
}

func (h *TransferHandler) list(w http.ResponseWriter, r *http.Request, accountID int64) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "limit inválido")
			return
		}
		limit = n
	}

	transfers, err := h.listUseCase.Execute(r.Context(), usecase.ListTransfersInput{AccountID: accountID, Limit: limit})
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	items := make([]TransferItem, 0, len(transfers))
	for _, t := range transfers {
		items = append(items, TransferItem{
			TransferID:  t.ID,
			Sender:      t.SenderName,
			Receiver:    t.ReceiverName,
			Amount:      fromCents(t.Amount),
			AmountCents: t.Amount,
			CreatedAt:   t.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, items)
}

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// toCents recusa frações de centavo e valores fora do int64. Sinal e zero ficam com o motor.
func toCents(amount decimal.Decimal) (int64, bool) {
	cents := amount.Shift(2)
	if !cents.IsInteger() {
		return 0, false
	}
	if cents.Cmp(maxCents) > 0 || cents.Cmp(minCents) < 0 {
		return 0, false
	}
	return cents.IntPart(), true
}

func fromCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
