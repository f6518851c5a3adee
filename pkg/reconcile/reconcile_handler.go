package reconcile

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sonaeru/sonaeru/pkg/obligation"
	"github.com/sonaeru/sonaeru/pkg/transaction"
)

type CandidateDTO struct {
	Transaction transaction.TransactionDTO `json:"transaction"`
	Score       float64                    `json:"score"`
}

type Handler struct {
	service Service
}

func NewReconcileHandler(service Service) *Handler {
	return &Handler{service}
}

// ListCandidates godoc
// @Summary List ranked ledger candidates for a pending occurrence
// @Tags Reconcile
// @Produce json
// @Param occurrenceId path int true "Occurrence ID"
// @Success 200 {array} CandidateDTO
// @Failure 404 {string} string "Occurrence Not Found"
// @Router /api/occurrence/{occurrenceId}/candidates [get]
// @Security XUserId
func (handler *Handler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	occurrenceId, err := strconv.Atoi(mux.Vars(r)["occurrenceId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	candidates, err := handler.service.Candidates(r.Context(), occurrenceId)
	if err != nil {
		if errors.Is(err, obligation.ErrOccurrenceNotFound) {
			http.Error(w, "occurrence not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]CandidateDTO, 0, len(candidates))
	for _, candidate := range candidates {
		dtos = append(dtos, CandidateDTO{
			Transaction: transaction.ToDTO(candidate.Transaction),
			Score:       candidate.Score,
		})
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
