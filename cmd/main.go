package main

import (
	"net/http"
	"os"

	"github.com/SuryaEnergia/api-ppa/internal/auth"
	"github.com/SuryaEnergia/api-ppa/internal/customer"
	"github.com/SuryaEnergia/api-ppa/internal/discom"
	"github.com/SuryaEnergia/api-ppa/internal/invoice"
	"github.com/SuryaEnergia/api-ppa/internal/ppa"
	"github.com/SuryaEnergia/api-ppa/internal/usage"
	"github.com/SuryaEnergia/api-ppa/internal/utils/db"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	database, err := db.GetDB()
	if err != nil {
		logger.Fatal("could not connect to database", zap.Error(err))
	}

	if err := database.AutoMigrate(
		&customer.Customer{},
		&ppa.PPA{},
		&usage.Reading{},
		&invoice.Invoice{},
	); err != nil {
		logger.Fatal("automigrate failed", zap.Error(err))
	}
	if err := discom.Migrate(database); err != nil {
		logger.Fatal("automigrate failed", zap.Error(err))
	}

	// Handlers
	customerHandler := customer.NewHandler(database)
	ppaHandler := ppa.NewHandler(database)
	usageHandler := usage.NewHandler(database)
	invoiceHandler := invoice.NewHandler(database)
	tariffResolver := discom.NewResolver(discom.NewStore(database), discom.NewClient(), logger)
	discomHandler := discom.NewHandler(database, tariffResolver)

	// Router
	r := mux.NewRouter()

	// Open routes
	r.HandleFunc("/login", customerHandler.Login).Methods("POST")
	r.HandleFunc("/customers", customerHandler.Create).Methods("POST")

	// Authenticated routes
	api := r.PathPrefix("/").Subrouter()
	api.Use(auth.Middleware)

	// Customer routes
	api.HandleFunc("/customers", customerHandler.List).Methods("GET")
	api.HandleFunc("/customers/{id}", customerHandler.Get).Methods("GET")
	api.HandleFunc("/customers/{id}", customerHandler.Update).Methods("PUT")
	api.HandleFunc("/customers/{id}", customerHandler.Delete).Methods("DELETE")

	// PPA routes
	api.HandleFunc("/ppas", ppaHandler.Create).Methods("POST")
	api.HandleFunc("/ppas/{id}", ppaHandler.Get).Methods("GET")
	api.HandleFunc("/customers/{id}/ppas", ppaHandler.ListByCustomer).Methods("GET")
	api.HandleFunc("/ppas/{id}/sign", ppaHandler.Sign).Methods("POST")
	api.HandleFunc("/ppas/{id}/terminate", ppaHandler.Terminate).Methods("POST")
	api.HandleFunc("/ppas/{id}/energy", ppaHandler.RecordEnergy).Methods("POST")
	api.HandleFunc("/ppas/{id}/billing", ppaHandler.RecordBilling).Methods("POST")
	api.HandleFunc("/ppas/{id}/payments", ppaHandler.RecordPayment).Methods("POST")
	api.HandleFunc("/ppas/{id}/opex-payments", ppaHandler.RecordOpexPayment).Methods("POST")
	api.HandleFunc("/ppas/{id}/tariff", ppaHandler.CurrentTariff).Methods("GET")
	api.HandleFunc("/ppas/{id}/payment-schedule", ppaHandler.PaymentSchedule).Methods("GET")

	// Energy-usage routes
	api.HandleFunc("/energy-usage", usageHandler.Create).Methods("POST")
	api.HandleFunc("/customers/{id}/energy-usage", usageHandler.ListByCustomer).Methods("GET")

	// Invoice routes
	api.HandleFunc("/invoices/generate", invoiceHandler.Generate).Methods("POST")
	api.HandleFunc("/invoices", invoiceHandler.List).Methods("GET")
	api.HandleFunc("/invoices/{id}", invoiceHandler.Get).Methods("GET")
	api.HandleFunc("/invoices/{id}/pay", invoiceHandler.MarkPaid).Methods("POST")

	// DISCOM / dynamic tariff routes
	api.HandleFunc("/tariffs/dynamic", discomHandler.GetDynamicTariff).Methods("GET")
	api.HandleFunc("/discoms", discomHandler.CreateDiscom).Methods("POST")
	api.HandleFunc("/discoms/{code}/tariffs", discomHandler.UpdateTariffs).Methods("POST")

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("server listening", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
