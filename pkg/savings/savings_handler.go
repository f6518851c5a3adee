package savings

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/sonaeru/sonaeru/internal/utils"
)

type BalanceDTO struct {
	DefinitionId int    `json:"definitionId"`
	Saved        string `json:"saved"`
	Paid         string `json:"paid"`
	Balance      string `json:"balance"`
	Shortfall    bool   `json:"shortfall"`
}

type Handler struct {
	service Service
	clock   utils.Clock
}

func NewSavingsHandler(service Service, clock utils.Clock) *Handler {
	return &Handler{service: service, clock: clock}
}

// ListBalances godoc
// @Summary List savings balances for all definitions
// @Tags Savings
// @Produce json
// @Success 200 {array} BalanceDTO
// @Failure 403 {string} string "User not found"
// @Router /api/savings [get]
// @Security XUserId
func (handler *Handler) ListBalances(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	balances, err := handler.service.ListBalances(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]BalanceDTO, 0, len(balances))
	for _, balance := range balances {
		dtos = append(dtos, balanceToDTO(balance))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetBalance godoc
// @Summary Get the savings balance of one definition
// @Tags Savings
// @Produce json
// @Param definitionId path int true "Definition ID"
// @Success 200 {object} BalanceDTO
// @Failure 403 {string} string "User not found"
// @Router /api/savings/{definitionId} [get]
// @Security XUserId
func (handler *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	definitionId, err := strconv.Atoi(mux.Vars(r)["definitionId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	balance, err := handler.service.GetBalance(r.Context(), definitionId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(balanceToDTO(balance)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// TriggerMonthlyTick godoc
// @Summary Apply the monthly savings contribution for the current month
// @Description The tick normally runs on a schedule; this endpoint applies it
// @Description on demand. Definitions already ticked this month are skipped.
// @Tags Savings
// @Success 204 "No Content"
// @Failure 403 {string} string "User not found"
// @Router /api/savings/tick [post]
// @Security XUserId
func (handler *Handler) TriggerMonthlyTick(w http.ResponseWriter, r *http.Request) {
	now := handler.clock.Now()
	log.Debugf("applying monthly savings tick for %d-%02d on demand", now.Year(), now.Month())
	if err := handler.service.ApplyMonthlyTick(r.Context(), now.Year(), now.Month()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func balanceToDTO(balance Balance) BalanceDTO {
	return BalanceDTO{
		DefinitionId: balance.DefinitionId,
		Saved:        balance.Saved.String(),
		Paid:         balance.Paid.String(),
		Balance:      balance.Amount().String(),
		Shortfall:    balance.Shortfall(),
	}
}
