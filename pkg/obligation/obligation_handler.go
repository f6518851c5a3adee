package obligation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sonaeru/sonaeru/internal/rest"
	"github.com/sonaeru/sonaeru/pkg/schedule"
)

type DefinitionDTO struct {
	Id                  int    `json:"id"`
	Name                string `json:"name"`
	Amount              string `json:"amount"`
	IntervalMonths      int    `json:"intervalMonths"`
	FirstDueDate        string `json:"firstDueDate"`
	LeadTimeMonths      int    `json:"leadTimeMonths"`
	Pattern             string `json:"pattern,omitempty"`
	Adjustment          string `json:"adjustment,omitempty"`
	SavingStrategy      string `json:"savingStrategy"`
	CustomMonthlyAmount string `json:"customMonthlyAmount,omitempty"`
	CategoryId          *int   `json:"categoryId,omitempty"`
}

type OccurrenceDTO struct {
	Id             int    `json:"id"`
	DefinitionId   int    `json:"definitionId"`
	ScheduledDate  string `json:"scheduledDate"`
	ExpectedAmount string `json:"expectedAmount"`
	Status         string `json:"status"`
	ActualDate     string `json:"actualDate,omitempty"`
	ActualAmount   string `json:"actualAmount,omitempty"`
	TransactionId  *int   `json:"transactionId,omitempty"`
}

type CompleteOccurrenceDTO struct {
	ActualDate    string `json:"actualDate"`
	ActualAmount  string `json:"actualAmount"`
	TransactionId *int   `json:"transactionId,omitempty"`
}

type UpdateOccurrenceDTO struct {
	Status        string `json:"status"`
	ActualDate    string `json:"actualDate,omitempty"`
	ActualAmount  string `json:"actualAmount,omitempty"`
	TransactionId *int   `json:"transactionId,omitempty"`
}

type Handler struct {
	service Service
}

func NewObligationHandler(service Service) *Handler {
	return &Handler{service}
}

// ListDefinitions godoc
// @Summary List all obligation definitions
// @Tags Obligation
// @Produce json
// @Success 200 {array} DefinitionDTO
// @Failure 403 {string} string "User not found"
// @Router /api/obligation [get]
// @Security XUserId
func (handler *Handler) ListDefinitions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	definitions, err := handler.service.ListDefinitions(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]DefinitionDTO, 0, len(definitions))
	for _, def := range definitions {
		dtos = append(dtos, definitionToDTO(def))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetDefinition godoc
// @Summary Get one obligation definition
// @Tags Obligation
// @Produce json
// @Param definitionId path int true "Definition ID"
// @Success 200 {object} DefinitionDTO
// @Failure 404 {string} string "Definition Not Found"
// @Router /api/obligation/{definitionId} [get]
// @Security XUserId
func (handler *Handler) GetDefinition(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	definitionId, err := strconv.Atoi(mux.Vars(r)["definitionId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	def, err := handler.service.GetDefinition(r.Context(), definitionId)
	if err != nil {
		if errors.Is(err, ErrDefinitionNotFound) {
			http.Error(w, "definition not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(definitionToDTO(def)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CreateDefinition godoc
// @Summary Create an obligation definition and project its occurrences
// @Tags Obligation
// @Accept json
// @Produce json
// @Param definition body DefinitionDTO true "Definition"
// @Success 201 {object} DefinitionDTO
// @Failure 400 {object} rest.ErrorResponse "Validation failed"
// @Failure 403 {string} string "User not found"
// @Failure 422 {string} string "Category not found"
// @Router /api/obligation [post]
// @Security XUserId
func (handler *Handler) CreateDefinition(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new obligation definition")
	w.Header().Set("Content-Type", "application/json")
	var dto DefinitionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	def, err := dtoToDefinition(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	created, err := handler.service.CreateDefinition(r.Context(), def)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(definitionToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// UpdateDefinition godoc
// @Summary Update an obligation definition and re-synchronize its occurrences
// @Tags Obligation
// @Accept json
// @Produce json
// @Param definitionId path int true "Definition ID"
// @Param definition body DefinitionDTO true "Definition"
// @Success 200 {object} SyncSummary
// @Failure 400 {object} rest.ErrorResponse "Validation failed"
// @Failure 404 {string} string "Definition Not Found"
// @Router /api/obligation/{definitionId} [put]
// @Security XUserId
func (handler *Handler) UpdateDefinition(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	definitionId, err := strconv.Atoi(mux.Vars(r)["definitionId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto DefinitionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Id == 0 || dto.Id != definitionId {
		http.Error(w, "Invalid definition id in request body", http.StatusBadRequest)
		return
	}
	def, err := dtoToDefinition(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	summary, err := handler.service.UpdateDefinition(r.Context(), def)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// DeleteDefinition godoc
// @Summary Delete an obligation definition with all its occurrences
// @Tags Obligation
// @Param definitionId path int true "Definition ID"
// @Success 204 "No Content"
// @Failure 404 {string} string "Definition Not Found"
// @Router /api/obligation/{definitionId} [delete]
// @Security XUserId
func (handler *Handler) DeleteDefinition(w http.ResponseWriter, r *http.Request) {
	definitionId, err := strconv.Atoi(mux.Vars(r)["definitionId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := handler.service.DeleteDefinition(r.Context(), definitionId); err != nil {
		if errors.Is(err, ErrDefinitionNotFound) {
			http.Error(w, "definition not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListOccurrences godoc
// @Summary List a definition's occurrences ordered by scheduled date
// @Tags Obligation
// @Produce json
// @Param definitionId path int true "Definition ID"
// @Success 200 {array} OccurrenceDTO
// @Failure 403 {string} string "User not found"
// @Router /api/obligation/{definitionId}/occurrence [get]
// @Security XUserId
func (handler *Handler) ListOccurrences(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	definitionId, err := strconv.Atoi(mux.Vars(r)["definitionId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	occurrences, err := handler.service.ListOccurrences(r.Context(), definitionId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]OccurrenceDTO, 0, len(occurrences))
	for _, occ := range occurrences {
		dtos = append(dtos, occurrenceToDTO(occ))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SynchronizeOccurrences godoc
// @Summary Re-project a definition's occurrences and persist the diff
// @Tags Obligation
// @Produce json
// @Param definitionId path int true "Definition ID"
// @Param horizon query int false "Horizon in months (defaults to configuration)"
// @Success 200 {object} SyncSummary
// @Failure 404 {string} string "Definition Not Found"
// @Router /api/obligation/{definitionId}/sync [post]
// @Security XUserId
func (handler *Handler) SynchronizeOccurrences(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	definitionId, err := strconv.Atoi(mux.Vars(r)["definitionId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	horizon := 0
	if raw := r.URL.Query().Get("horizon"); raw != "" {
		horizon, err = strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid horizon", http.StatusBadRequest)
			return
		}
	}
	summary, err := handler.service.SynchronizeOccurrences(r.Context(), definitionId, horizon)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CompleteOccurrence godoc
// @Summary Mark an occurrence completed with its actual date and amount
// @Tags Obligation
// @Accept json
// @Produce json
// @Param occurrenceId path int true "Occurrence ID"
// @Param completion body CompleteOccurrenceDTO true "Actuals"
// @Success 200 {object} SyncSummary
// @Failure 400 {object} rest.ErrorResponse "Validation failed"
// @Failure 404 {string} string "Occurrence Not Found"
// @Router /api/occurrence/{occurrenceId}/complete [post]
// @Security XUserId
func (handler *Handler) CompleteOccurrence(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	occurrenceId, err := strconv.Atoi(mux.Vars(r)["occurrenceId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto CompleteOccurrenceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	actualDate, err := time.Parse("2006-01-02", dto.ActualDate)
	if err != nil {
		http.Error(w, "invalid actual date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	actualAmount, err := decimal.NewFromString(dto.ActualAmount)
	if err != nil {
		http.Error(w, "invalid actual amount", http.StatusBadRequest)
		return
	}
	summary, err := handler.service.MarkOccurrenceCompleted(r.Context(), occurrenceId, actualDate, actualAmount, dto.TransactionId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// UpdateOccurrence godoc
// @Summary Update an occurrence's status, reverting or completing it
// @Tags Obligation
// @Accept json
// @Produce json
// @Param occurrenceId path int true "Occurrence ID"
// @Param occurrence body UpdateOccurrenceDTO true "Status change"
// @Success 200 {object} SyncSummary "Completion state toggled"
// @Success 204 "Status changed without re-synchronization"
// @Failure 400 {object} rest.ErrorResponse "Validation failed"
// @Failure 404 {string} string "Occurrence Not Found"
// @Router /api/occurrence/{occurrenceId} [put]
// @Security XUserId
func (handler *Handler) UpdateOccurrence(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	occurrenceId, err := strconv.Atoi(mux.Vars(r)["occurrenceId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto UpdateOccurrenceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var actualDate *time.Time
	if dto.ActualDate != "" {
		date, err := time.Parse("2006-01-02", dto.ActualDate)
		if err != nil {
			http.Error(w, "invalid actual date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		actualDate = &date
	}
	var actualAmount *decimal.Decimal
	if dto.ActualAmount != "" {
		amount, err := decimal.NewFromString(dto.ActualAmount)
		if err != nil {
			http.Error(w, "invalid actual amount", http.StatusBadRequest)
			return
		}
		actualAmount = &amount
	}
	summary, err := handler.service.UpdateOccurrence(r.Context(), occurrenceId, Status(dto.Status), actualDate, actualAmount, dto.TransactionId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if summary == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeServiceError maps domain errors onto HTTP responses. Field violations
// are returned together as a structured payload; referential failures get
// their own status so the client can render them differently.
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		violations := make([]rest.Violation, 0, len(validationErr.Violations))
		for _, v := range validationErr.Violations {
			violations = append(violations, rest.Violation{Field: v.Field, Message: v.Message})
		}
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "validation failed", Violations: violations})
	case errors.Is(err, ErrCategoryNotFound):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrDefinitionNotFound), errors.Is(err, ErrOccurrenceNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func definitionToDTO(def Definition) DefinitionDTO {
	dto := DefinitionDTO{
		Id:             def.Id,
		Name:           def.Name,
		Amount:         def.Amount.String(),
		IntervalMonths: def.IntervalMonths,
		FirstDueDate:   def.FirstDueDate.Format("2006-01-02"),
		LeadTimeMonths: def.LeadTimeMonths,
		Pattern:        schedule.FormatPattern(def.Pattern),
		Adjustment:     string(def.Adjustment),
		SavingStrategy: string(def.Strategy),
		CategoryId:     def.CategoryId,
	}
	if def.Strategy == StrategyFixed {
		dto.CustomMonthlyAmount = def.CustomMonthlyAmount.String()
	}
	return dto
}

func dtoToDefinition(dto DefinitionDTO) (Definition, error) {
	firstDueDate, err := time.Parse("2006-01-02", dto.FirstDueDate)
	if err != nil {
		return Definition{}, errors.New("invalid first due date, expected YYYY-MM-DD")
	}
	pattern, err := schedule.ParsePattern(dto.Pattern)
	if err != nil {
		return Definition{}, err
	}
	adjustment, err := schedule.ParseAdjustmentPolicy(dto.Adjustment)
	if err != nil {
		return Definition{}, err
	}
	amount, err := decimal.NewFromString(dto.Amount)
	if err != nil {
		return Definition{}, errors.New("invalid amount")
	}
	customAmount := decimal.Zero
	if dto.CustomMonthlyAmount != "" {
		customAmount, err = decimal.NewFromString(dto.CustomMonthlyAmount)
		if err != nil {
			return Definition{}, errors.New("invalid custom monthly amount")
		}
	}
	return Definition{
		Id:                  dto.Id,
		Name:                dto.Name,
		Amount:              amount,
		IntervalMonths:      dto.IntervalMonths,
		FirstDueDate:        firstDueDate,
		LeadTimeMonths:      dto.LeadTimeMonths,
		Pattern:             pattern,
		Adjustment:          adjustment,
		Strategy:            SavingStrategy(dto.SavingStrategy),
		CustomMonthlyAmount: customAmount,
		CategoryId:          dto.CategoryId,
	}, nil
}

func occurrenceToDTO(occ Occurrence) OccurrenceDTO {
	dto := OccurrenceDTO{
		Id:             occ.Id,
		DefinitionId:   occ.DefinitionId,
		ScheduledDate:  occ.ScheduledDate.Format("2006-01-02"),
		ExpectedAmount: occ.ExpectedAmount.String(),
		Status:         string(occ.Status),
		TransactionId:  occ.TransactionId,
	}
	if occ.ActualDate != nil {
		dto.ActualDate = occ.ActualDate.Format("2006-01-02")
	}
	if occ.ActualAmount != nil {
		dto.ActualAmount = occ.ActualAmount.String()
	}
	return dto
}
