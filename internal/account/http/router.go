package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/mindful/internal/account/service"
	"github.com/aussiebroadwan/mindful/internal/account/store"
	"github.com/aussiebroadwan/mindful/pkg/accountsdk"
	"github.com/aussiebroadwan/mindful/pkg/httpx"
	"github.com/aussiebroadwan/mindful/pkg/slogx"

	_ "github.com/aussiebroadwan/mindful/api/account" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store           store.Store
	AccountService  *service.AccountService
	SecurityService *service.SecurityQuestionService
	RecoveryService *service.RecoveryService

	// Pinger is checked by /readyz when set (the Redis session store).
	Pinger Pinger
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger, allowedOrigins []string) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Recover sits inside the logger so panics are logged as 500s.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
		httpx.CORS(allowedOrigins, accountsdk.UsernameHeader),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerSecurityQuestions()
	r.registerRecovery()
	r.registerProfile()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Mindful Account Service API
//	@version		0.1.0
//	@description	Signup, login, security questions and the forgot-username / forgot-password recovery flow.
//	@description
//	@description				Protected routes identify the caller by the Username header. No secret is checked.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/mindful
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	UsernameAuth
//	@in							header
//	@name						Username
//	@description				Asserted username. Resolved against the user store, never verified.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAccounts() {
	h := &AccountHandler{AccountService: r.AccountService}

	// POST /signup - strict rate limit by IP (account creation)
	r.Mux.Handle("POST /v1/signup",
		httpx.Chain(http.HandlerFunc(h.HandleSignup),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /login - strict rate limit by IP + username to slow password guessing
	r.Mux.Handle("POST /v1/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndField(httpx.StrictLimit, "username"),
		),
	)
}

func (r *Router) registerSecurityQuestions() {
	h := &SecurityQuestionsHandler{SecurityService: r.SecurityService}

	// GET /security-questions - public catalog
	r.Mux.Handle("GET /v1/security-questions",
		httpx.Chain(http.HandlerFunc(h.HandleCatalog),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	// POST /security-answers - strict rate limit by IP + target user
	r.Mux.Handle("POST /v1/security-answers",
		httpx.Chain(http.HandlerFunc(h.HandleSetAnswers),
			httpx.RateLimitByIPAndField(httpx.StrictLimit, "userId"),
		),
	)
}

func (r *Router) registerRecovery() {
	h := &RecoveryHandler{RecoveryService: r.RecoveryService}

	// Lookups disclose whether an account exists, so they share the
	// moderate limit per IP + identifier.
	r.Mux.Handle("POST /v1/recovery/find-username",
		httpx.Chain(http.HandlerFunc(h.HandleFindUsername),
			httpx.RateLimitByIPAndField(httpx.ModerateLimit, "email"),
		),
	)
	r.Mux.Handle("POST /v1/recovery/security-questions",
		httpx.Chain(http.HandlerFunc(h.HandleSecurityQuestions),
			httpx.RateLimitByIPAndField(httpx.ModerateLimit, "username"),
		),
	)

	// POST /verify-answers - strict, this is the brute-force target
	r.Mux.Handle("POST /v1/recovery/verify-answers",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyAnswers),
			httpx.RateLimitByIPAndField(httpx.StrictLimit, "username"),
		),
	)

	// PATCH /reset-password - strict rate limit by IP (token guessing)
	r.Mux.Handle("PATCH /v1/recovery/reset-password",
		httpx.Chain(http.HandlerFunc(h.HandleResetPassword),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{
		AccountService:  r.AccountService,
		SecurityService: r.SecurityService,
	}

	identity := IdentityMiddleware(r.AccountService)
	secured := func(fn http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(fn,
			identity,
			httpx.RateLimitByUser(limit),
		)
	}

	r.Mux.Handle("GET /v1/profile", secured(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PUT /v1/profile", secured(h.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/profile", secured(h.HandleDelete, httpx.ModerateLimit))

	// Checks the current password, so it gets the login limit.
	r.Mux.Handle("POST /v1/profile/change-password", secured(h.HandleChangePassword, httpx.StrictLimit))

	r.Mux.Handle("GET /v1/profile/security-questions", secured(h.HandleSecurityQuestions, httpx.LenientLimit))
	r.Mux.Handle("PUT /v1/profile/security-questions", secured(h.HandleUpdateSecurityAnswers, httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.Pinger),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
