package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/antoniovieira1/api-solicitacao-servico/handlers"
	"github.com/antoniovieira1/api-solicitacao-servico/middleware"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Session
	// =====================================================
	r.HandleFunc("/api/login", handlers.Login).Methods("POST")
	r.HandleFunc("/api/logout", handlers.Logout).Methods("POST")
	r.Handle("/api/me", middleware.Session(http.HandlerFunc(handlers.Me))).Methods("GET")

	// =====================================================
	// Service orders
	// =====================================================
	// Only the list view carries a session; the stage endpoints identify
	// the actor by the emails in their payloads, matching the legacy
	// frontend contract.
	r.Handle("/api/service-orders", middleware.Session(http.HandlerFunc(handlers.ListServiceOrders))).Methods("GET")
	r.HandleFunc("/api/service-orders", handlers.CreateServiceOrder).Methods("POST")
	r.HandleFunc("/api/service-orders/{id}", handlers.GetServiceOrder).Methods("GET")
	r.HandleFunc("/api/service-orders/{id}/status", handlers.ExecuteWorkflowAction).Methods("POST")
	r.HandleFunc("/api/service-orders/{id}/pcm-analysis-data", handlers.SavePcmAnalysis).Methods("PUT")
	r.HandleFunc("/api/service-orders/{id}/cipa-analysis", handlers.SaveCipaAnalysis).Methods("POST")

	// =====================================================
	// Administration
	// =====================================================
	r.HandleFunc("/api/roles", handlers.ListRoles).Methods("GET")
	r.HandleFunc("/api/roles", handlers.AssignRole).Methods("POST")
	r.HandleFunc("/api/roles/{id}", handlers.DeleteRole).Methods("DELETE")
	r.HandleFunc("/api/equipments", handlers.ListEquipments).Methods("GET")
	r.HandleFunc("/api/equipments", handlers.CreateEquipment).Methods("POST")
	r.HandleFunc("/api/equipments/{id}", handlers.UpdateEquipment).Methods("PUT")
	r.HandleFunc("/api/equipments/{id}", handlers.DeleteEquipment).Methods("DELETE")

	return r
}
