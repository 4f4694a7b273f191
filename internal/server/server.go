package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/munsif3/family-expense-tracker-sub001/internal/attachment"
	"github.com/munsif3/family-expense-tracker-sub001/internal/config"
	"github.com/munsif3/family-expense-tracker-sub001/internal/handler"
	"github.com/munsif3/family-expense-tracker-sub001/internal/middleware"
	"github.com/munsif3/family-expense-tracker-sub001/internal/recurring"
	"github.com/munsif3/family-expense-tracker-sub001/internal/report"
	"github.com/munsif3/family-expense-tracker-sub001/internal/store"
	ws "github.com/munsif3/family-expense-tracker-sub001/internal/websocket"
)

type Server struct {
	db  *sql.DB
	hub *ws.Hub

	authH          *handler.AuthHandler
	householdH     *handler.HouseholdHandler
	transactionH   *handler.TransactionHandler
	attachmentH    *handler.AttachmentHandler
	categoryH      *handler.CategoryHandler
	paymentMethodH *handler.PaymentMethodHandler
	budgetH        *handler.BudgetHandler
	goalH          *handler.GoalHandler
	assetH         *handler.AssetHandler
	tripH          *handler.TripHandler
	recurringH     *handler.RecurringHandler
	reportH        *handler.ReportHandler

	sessionStore   *store.SessionStore
	inviteStore    *store.InviteStore
	householdStore *store.HouseholdStore
	rateLimiter    *middleware.RateLimiter
	scheduler      *recurring.Scheduler
	logger         *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	householdStore := store.NewHouseholdStore(db)
	sessionStore := store.NewSessionStore(db)
	inviteStore := store.NewInviteStore(db)
	txnStore := store.NewTransactionStore(db)
	categoryStore := store.NewCategoryStore(db)
	paymentMethodStore := store.NewPaymentMethodStore(db)
	budgetStore := store.NewBudgetStore(db)
	goalStore := store.NewGoalStore(db)
	assetStore := store.NewAssetStore(db)
	tripStore := store.NewTripStore(db)
	recurringStore := store.NewRecurringStore(db)
	attachmentStore := store.NewAttachmentStore(db)

	var storage *attachment.Storage
	s3Cfg := attachment.Config{
		Endpoint:  cfg.S3Endpoint,
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	}
	if s3Cfg.Enabled() {
		storage = attachment.NewStorage(s3Cfg)
	}

	processor := recurring.NewProcessor(recurringStore, householdStore, logger.With("component", "recurring"))
	scheduler := recurring.NewScheduler(processor, householdStore, cfg.RecurringInterval, logger.With("component", "recurring_scheduler"))
	reportSvc := report.NewService(txnStore, budgetStore, categoryStore)

	return &Server{
		db:  db,
		hub: hub,

		authH:          handler.NewAuthHandler(userStore, householdStore, sessionStore, inviteStore, logger.With("component", "auth")),
		householdH:     handler.NewHouseholdHandler(householdStore, userStore, inviteStore, hub, logger.With("component", "household")),
		transactionH:   handler.NewTransactionHandler(txnStore, categoryStore, paymentMethodStore, tripStore, householdStore, hub, logger.With("component", "transaction")),
		attachmentH:    handler.NewAttachmentHandler(attachmentStore, txnStore, storage, logger.With("component", "attachment")),
		categoryH:      handler.NewCategoryHandler(categoryStore, hub, logger.With("component", "category")),
		paymentMethodH: handler.NewPaymentMethodHandler(paymentMethodStore, hub, logger.With("component", "payment_method")),
		budgetH:        handler.NewBudgetHandler(budgetStore, categoryStore, hub, logger.With("component", "budget")),
		goalH:          handler.NewGoalHandler(goalStore, hub, logger.With("component", "goal")),
		assetH:         handler.NewAssetHandler(assetStore, hub, logger.With("component", "asset")),
		tripH:          handler.NewTripHandler(tripStore, txnStore, householdStore, hub, logger.With("component", "trip")),
		recurringH:     handler.NewRecurringHandler(recurringStore, categoryStore, processor, hub, logger.With("component", "recurring_api")),
		reportH:        handler.NewReportHandler(reportSvc, logger.With("component", "report")),

		sessionStore:   sessionStore,
		inviteStore:    inviteStore,
		householdStore: householdStore,
		rateLimiter:    middleware.NewRateLimiter(),
		scheduler:      scheduler,
		logger:         logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// InviteStore returns the invite store for cleanup tasks.
func (s *Server) InviteStore() *store.InviteStore {
	return s.inviteStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Scheduler returns the recurring transaction scheduler.
func (s *Server) Scheduler() *recurring.Scheduler {
	return s.scheduler
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	loginLimit := middleware.RateLimit(s.rateLimiter, 10, time.Minute)
	outerMux.Handle("POST /register", loginLimit(http.HandlerFunc(s.authH.Register)))
	outerMux.Handle("POST /login", loginLimit(http.HandlerFunc(s.authH.Login)))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Everything else requires a session
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.householdStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /logout", s.authH.Logout)

	// Household
	mux.HandleFunc("GET /api/household", s.householdH.Get)
	mux.Handle("PUT /api/household", middleware.RequireAdmin(http.HandlerFunc(s.householdH.Update)))
	mux.HandleFunc("GET /api/household/members", s.householdH.ListMembers)
	mux.Handle("PUT /api/household/members/{id}/role", middleware.RequireAdmin(http.HandlerFunc(s.householdH.UpdateMemberRole)))
	mux.Handle("DELETE /api/household/members/{id}", middleware.RequireAdmin(http.HandlerFunc(s.householdH.RemoveMember)))
	mux.Handle("POST /api/household/invites", middleware.RequireAdmin(http.HandlerFunc(s.householdH.CreateInvite)))

	// Transactions
	mux.HandleFunc("POST /api/transactions", s.transactionH.Create)
	mux.HandleFunc("GET /api/transactions", s.transactionH.List)
	mux.HandleFunc("GET /api/transactions/{id}", s.transactionH.Get)
	mux.HandleFunc("PUT /api/transactions/{id}", s.transactionH.Update)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.transactionH.Delete)

	// Receipt attachments
	mux.HandleFunc("POST /api/transactions/{id}/attachments", s.attachmentH.Upload)
	mux.HandleFunc("GET /api/transactions/{id}/attachments", s.attachmentH.List)
	mux.HandleFunc("GET /api/transactions/{id}/attachments/{attachment_id}", s.attachmentH.Download)
	mux.HandleFunc("DELETE /api/transactions/{id}/attachments/{attachment_id}", s.attachmentH.Delete)

	// Categories
	mux.HandleFunc("POST /api/categories", s.categoryH.Create)
	mux.HandleFunc("GET /api/categories", s.categoryH.List)
	mux.HandleFunc("PUT /api/categories/{id}", s.categoryH.Update)
	mux.HandleFunc("DELETE /api/categories/{id}", s.categoryH.Delete)

	// Payment methods
	mux.HandleFunc("POST /api/payment-methods", s.paymentMethodH.Create)
	mux.HandleFunc("GET /api/payment-methods", s.paymentMethodH.List)
	mux.HandleFunc("PUT /api/payment-methods/{id}", s.paymentMethodH.Update)
	mux.HandleFunc("DELETE /api/payment-methods/{id}", s.paymentMethodH.Delete)

	// Budgets
	mux.HandleFunc("POST /api/budgets", s.budgetH.Create)
	mux.HandleFunc("GET /api/budgets", s.budgetH.List)
	mux.HandleFunc("PUT /api/budgets/{id}", s.budgetH.Update)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.budgetH.Delete)

	// Savings goals
	mux.HandleFunc("POST /api/goals", s.goalH.Create)
	mux.HandleFunc("GET /api/goals", s.goalH.List)
	mux.HandleFunc("PUT /api/goals/{id}", s.goalH.Update)
	mux.HandleFunc("POST /api/goals/{id}/contribute", s.goalH.Contribute)
	mux.HandleFunc("DELETE /api/goals/{id}", s.goalH.Delete)

	// Assets
	mux.HandleFunc("POST /api/assets", s.assetH.Create)
	mux.HandleFunc("GET /api/assets", s.assetH.List)
	mux.HandleFunc("PUT /api/assets/{id}", s.assetH.Update)
	mux.HandleFunc("DELETE /api/assets/{id}", s.assetH.Delete)

	// Trips
	mux.HandleFunc("POST /api/trips", s.tripH.Create)
	mux.HandleFunc("GET /api/trips", s.tripH.List)
	mux.HandleFunc("GET /api/trips/{id}", s.tripH.Get)
	mux.HandleFunc("PUT /api/trips/{id}", s.tripH.Update)
	mux.HandleFunc("DELETE /api/trips/{id}", s.tripH.Delete)
	mux.HandleFunc("GET /api/trips/{id}/settlement", s.tripH.Settlement)

	// Recurring templates
	mux.HandleFunc("POST /api/recurring", s.recurringH.Create)
	mux.HandleFunc("GET /api/recurring", s.recurringH.List)
	mux.HandleFunc("GET /api/recurring/{id}", s.recurringH.Get)
	mux.HandleFunc("PUT /api/recurring/{id}", s.recurringH.Update)
	mux.HandleFunc("DELETE /api/recurring/{id}", s.recurringH.Delete)
	mux.HandleFunc("POST /api/recurring/process", s.recurringH.Process)

	// Reports
	mux.HandleFunc("GET /api/reports/summary", s.reportH.Summary)
	mux.HandleFunc("GET /api/reports/categories", s.reportH.Categories)
	mux.HandleFunc("GET /api/reports/budgets", s.reportH.Budgets)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}
