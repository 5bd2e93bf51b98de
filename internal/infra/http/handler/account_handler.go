package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type AccountDeleter interface {
	Execute(ctx context.Context, accountID int64) (*usecase.DeleteAccountOutput, error)
}

type DeletionChecker interface {
	CanDelete(ctx context.Context, accountID int64) (bool, error)
}

// AccountHandler só expõe remoção; cadastro e listagem não passam por aqui
type AccountHandler struct {
	deleteUC AccountDeleter
	guard    DeletionChecker
}

func NewAccountHandler(deleteUC AccountDeleter, guard DeletionChecker) *AccountHandler {
	return &AccountHandler{deleteUC: deleteUC, guard: guard}
}

type DeleteAccountResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Balance string `json:"balance"`
}

type DeletableResponse struct {
	AccountID int64 `json:"account_id"`
	Deletable bool  `json:"deletable"`
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	output, err := h.deleteUC.Execute(r.Context(), id)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, DeleteAccountResponse{
		ID:      output.ID,
		Name:    output.Name,
		Balance: fromCents(output.Balance),
	})
}

func (h *AccountHandler) Deletable(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	deletable, err := h.guard.CanDelete(r.Context(), id)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, DeletableResponse{AccountID: id, Deletable: deletable})
}

func accountID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		respondError(w, http.StatusBadRequest, "ID de conta inválido")
		return 0, false
	}
	return id, true
}
