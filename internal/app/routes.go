package app

import (
	"github.com/gorilla/mux"
	"github.com/sonaeru/sonaeru/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Obligation definitions
	r.HandleFunc("/api/obligation", deps.ObligationHandler.ListDefinitions).Methods("GET")
	r.HandleFunc("/api/obligation", deps.ObligationHandler.CreateDefinition).Methods("POST")
	r.HandleFunc("/api/obligation/{definitionId}", deps.ObligationHandler.GetDefinition).Methods("GET")
	r.HandleFunc("/api/obligation/{definitionId}", deps.ObligationHandler.UpdateDefinition).Methods("PUT")
	r.HandleFunc("/api/obligation/{definitionId}", deps.ObligationHandler.DeleteDefinition).Methods("DELETE")
	r.HandleFunc("/api/obligation/{definitionId}/occurrence", deps.ObligationHandler.ListOccurrences).Methods("GET")
	r.HandleFunc("/api/obligation/{definitionId}/sync", deps.ObligationHandler.SynchronizeOccurrences).Methods("POST")

	// Occurrences
	r.HandleFunc("/api/occurrence/{occurrenceId}", deps.ObligationHandler.UpdateOccurrence).Methods("PUT")
	r.HandleFunc("/api/occurrence/{occurrenceId}/complete", deps.ObligationHandler.CompleteOccurrence).Methods("POST")
	r.HandleFunc("/api/occurrence/{occurrenceId}/candidates", deps.ReconcileHandler.ListCandidates).Methods("GET")

	// Savings balances
	r.HandleFunc("/api/savings", deps.SavingsHandler.ListBalances).Methods("GET")
	r.HandleFunc("/api/savings/tick", deps.SavingsHandler.TriggerMonthlyTick).Methods("POST")
	r.HandleFunc("/api/savings/{definitionId}", deps.SavingsHandler.GetBalance).Methods("GET")

	// Ledger transactions
	r.HandleFunc("/api/transaction", deps.TransactionHandler.ListTransactions).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/transaction", deps.TransactionHandler.RecordTransaction).Methods("POST")
	r.HandleFunc("/api/transaction/{transactionId}", deps.TransactionHandler.DeleteTransaction).Methods("DELETE")

	// Categories
	r.HandleFunc("/api/category", deps.CategoryHandler.ListCategories).Methods("GET")
	r.HandleFunc("/api/category", deps.CategoryHandler.CreateCategory).Methods("POST")
	r.HandleFunc("/api/category/{categoryId}", deps.CategoryHandler.UpdateCategory).Methods("PUT")
	r.HandleFunc("/api/category/{categoryId}", deps.CategoryHandler.DeleteCategory).Methods("DELETE")

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user", deps.UserHandler.GetAvailableUsers).Methods("GET")
	r.HandleFunc("/api/user/name-availability", deps.UserHandler.IsUsernameAvailable).Methods("GET").Queries("username", "{username}")
	r.HandleFunc("/api/user/{userId}", deps.UserHandler.DeleteUser).Methods("DELETE")
}
