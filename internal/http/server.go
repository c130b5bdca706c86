// Package http exposes the ledger as a JSON API: auth, invitations, the
// category taxonomy, records, projects, budgets and statistics.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/core"
	applog "bilancio/internal/log"
	"bilancio/internal/services"
)

// Session lookups hit the database once per request otherwise; a short TTL
// keeps revocation latency bounded while absorbing request bursts.
const (
	sessionCacheSize = 1024
	sessionCacheTTL  = 30 * time.Second
)

type Server struct {
	http.Server

	auth        *services.AuthService
	invitations *services.InvitationService
	categories  *services.CategoryService
	records     *services.RecordService
	projects    *services.ProjectService
	budgets     *services.BudgetService
	statistics  *services.StatisticsService

	rateLimiter *rateLimiter
	sessions    *cache.LRU[*core.User]
	logger      *slog.Logger
}

type Services struct {
	Auth        *services.AuthService
	Invitations *services.InvitationService
	Categories  *services.CategoryService
	Records     *services.RecordService
	Projects    *services.ProjectService
	Budgets     *services.BudgetService
	Statistics  *services.StatisticsService
}

func NewServer(addr string, svcs Services, logger *slog.Logger) *Server {
	s := &Server{
		auth:        svcs.Auth,
		invitations: svcs.Invitations,
		categories:  svcs.Categories,
		records:     svcs.Records,
		projects:    svcs.Projects,
		budgets:     svcs.Budgets,
		statistics:  svcs.Statistics,
		rateLimiter: newRateLimiter(),
		sessions:    cache.NewLRU[*core.User](sessionCacheSize, sessionCacheTTL),
		logger:      logger.With(slog.String("component", "http")),
	}

	s.Server = http.Server{
		Addr:           addr,
		Handler:        applog.Middleware(logger)(s.routes()),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	// Login and registration are rate limited per client IP.
	mux.Handle("POST /api/auth/register", s.limit(http.HandlerFunc(s.handleRegister)))
	mux.Handle("POST /api/auth/login", s.limit(http.HandlerFunc(s.handleLogin)))
	mux.Handle("POST /api/auth/logout", s.requireAuth(s.handleLogout))

	mux.Handle("GET /api/profile", s.requireAuth(s.handleGetProfile))
	mux.Handle("PATCH /api/profile", s.requireAuth(s.handleUpdateProfile))

	mux.Handle("POST /api/invitations", s.requireAuth(s.handleIssueInvitation))
	mux.Handle("GET /api/invitations", s.requireAuth(s.handleListInvitations))
	mux.Handle("DELETE /api/invitations/{code}", s.requireAuth(s.handleDeactivateInvitation))

	mux.Handle("GET /api/categories/presets", s.requireAuth(s.handleListPresets))
	mux.Handle("GET /api/categories/primary", s.requireAuth(s.handleListPrimary))
	mux.Handle("POST /api/categories/primary", s.requireAuth(s.handleCreatePrimary))
	mux.Handle("GET /api/categories/secondary", s.requireAuth(s.handleListSecondary))
	mux.Handle("POST /api/categories/secondary", s.requireAuth(s.handleCreateSecondary))
	mux.Handle("GET /api/categories/{id}", s.requireAuth(s.handleGetCategory))
	mux.Handle("PATCH /api/categories/{id}", s.requireAuth(s.handleUpdateCategory))
	mux.Handle("DELETE /api/categories/{id}", s.requireAuth(s.handleDeactivateCategory))

	mux.Handle("GET /api/records", s.requireAuth(s.handleListRecords))
	mux.Handle("POST /api/records", s.requireAuth(s.handleCreateRecord))
	mux.Handle("GET /api/records/{id}", s.requireAuth(s.handleGetRecord))
	mux.Handle("PATCH /api/records/{id}", s.requireAuth(s.handleUpdateRecord))
	mux.Handle("DELETE /api/records/{id}", s.requireAuth(s.handleDeleteRecord))
	mux.Handle("POST /api/records/{id}/project/{projectID}", s.requireAuth(s.handleLinkRecord))
	mux.Handle("DELETE /api/records/{id}/project/{projectID}", s.requireAuth(s.handleUnlinkRecord))

	mux.Handle("GET /api/projects", s.requireAuth(s.handleListProjects))
	mux.Handle("POST /api/projects", s.requireAuth(s.handleCreateProject))
	mux.Handle("GET /api/projects/{id}", s.requireAuth(s.handleGetProject))
	mux.Handle("PATCH /api/projects/{id}", s.requireAuth(s.handleUpdateProject))
	mux.Handle("DELETE /api/projects/{id}", s.requireAuth(s.handleDeleteProject))
	mux.Handle("GET /api/projects/{id}/stats", s.requireAuth(s.handleProjectStats))

	mux.Handle("GET /api/budgets", s.requireAuth(s.handleListBudgets))
	mux.Handle("POST /api/budgets", s.requireAuth(s.handleCreateBudget))
	mux.Handle("GET /api/budgets/alerts", s.requireAuth(s.handleBudgetAlerts))
	mux.Handle("GET /api/budgets/{id}", s.requireAuth(s.handleGetBudget))
	mux.Handle("PATCH /api/budgets/{id}", s.requireAuth(s.handleUpdateBudget))
	mux.Handle("DELETE /api/budgets/{id}", s.requireAuth(s.handleDeleteBudget))

	mux.Handle("GET /api/statistics/monthly", s.requireAuth(s.handleStatsMonthly))
	mux.Handle("GET /api/statistics/range", s.requireAuth(s.handleStatsRange))
	mux.Handle("GET /api/statistics/by-category", s.requireAuth(s.handleStatsByCategory))
	mux.Handle("GET /api/statistics/by-project", s.requireAuth(s.handleStatsByProject))
	mux.Handle("GET /api/statistics/overview", s.requireAuth(s.handleStatsOverview))

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Close releases server-owned background resources.
func (s *Server) CloseResources() {
	s.rateLimiter.stop()
}
