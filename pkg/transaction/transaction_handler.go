package transaction

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type TransactionDTO struct {
	Id         int    `json:"id"`
	Uid        string `json:"uid,omitempty"`
	Date       string `json:"date"`
	Amount     string `json:"amount"`
	Label      string `json:"label"`
	CategoryId *int   `json:"categoryId,omitempty"`
}

type Handler struct {
	service Service
}

func NewTransactionHandler(service Service) *Handler {
	return &Handler{service}
}

// ListTransactions godoc
// @Summary List ledger transactions within a date window
// @Tags Transaction
// @Produce json
// @Param from query string true "Window start (YYYY-MM-DD)"
// @Param to query string true "Window end (YYYY-MM-DD)"
// @Success 200 {array} TransactionDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 403 {string} string "User not found"
// @Router /api/transaction [get]
// @Security XUserId
func (handler *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "invalid from date", http.StatusBadRequest)
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "invalid to date", http.StatusBadRequest)
		return
	}
	transactions, err := handler.service.ListInWindow(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]TransactionDTO, 0, len(transactions))
	for _, tx := range transactions {
		dtos = append(dtos, ToDTO(tx))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// RecordTransaction godoc
// @Summary Record a ledger transaction
// @Tags Transaction
// @Accept json
// @Produce json
// @Param transaction body TransactionDTO true "Transaction"
// @Success 201 {object} TransactionDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 403 {string} string "User not found"
// @Router /api/transaction [post]
// @Security XUserId
func (handler *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	log.Debug("Recording new transaction")
	w.Header().Set("Content-Type", "application/json")
	var dto TransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	tx, err := dtoToTransaction(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	recorded, err := handler.service.Record(r.Context(), tx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(ToDTO(recorded)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// DeleteTransaction godoc
// @Summary Delete a ledger transaction
// @Tags Transaction
// @Param transactionId path int true "Transaction ID"
// @Success 204 "No Content"
// @Failure 404 {string} string "Transaction Not Found"
// @Router /api/transaction/{transactionId} [delete]
// @Security XUserId
func (handler *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	transactionId, err := strconv.Atoi(vars["transactionId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	deleted, err := handler.service.Delete(r.Context(), transactionId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "transaction not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func ToDTO(tx Transaction) TransactionDTO {
	return TransactionDTO{
		Id:         tx.Id,
		Uid:        tx.Uid,
		Date:       tx.Date.Format("2006-01-02"),
		Amount:     tx.Amount.String(),
		Label:      tx.Label,
		CategoryId: tx.CategoryId,
	}
}

func dtoToTransaction(dto TransactionDTO) (Transaction, error) {
	date, err := time.Parse("2006-01-02", dto.Date)
	if err != nil {
		return Transaction{}, errors.New("invalid transaction date, expected YYYY-MM-DD")
	}
	amount, err := decimal.NewFromString(dto.Amount)
	if err != nil {
		return Transaction{}, errors.New("invalid transaction amount")
	}
	return Transaction{
		Id:         dto.Id,
		Uid:        dto.Uid,
		Date:       date,
		Amount:     amount,
		Label:      dto.Label,
		CategoryId: dto.CategoryId,
	}, nil
}
