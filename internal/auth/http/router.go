package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/chirp/internal/auth/service"
	"github.com/aussiebroadwan/chirp/internal/auth/store"
	"github.com/aussiebroadwan/chirp/pkg/httpx"
	"github.com/aussiebroadwan/chirp/pkg/jwtx"
	"github.com/aussiebroadwan/chirp/pkg/slogx"

	_ "github.com/aussiebroadwan/chirp/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec        *jwtx.Codec
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	SessionService *service.SessionService
	TweetService   *service.TweetService

	// Cookies controls the Secure flag and lifetimes of the token cookies.
	Cookies httpx.CookieJar
}

// NewRouter builds a router whose global chain logs each request, recovers
// panics and runs AuthGate over protectedPrefixes.
func NewRouter(
	codec *jwtx.Codec,
	buildVersion string,
	st store.Store,
	protectedPrefixes []string,
	logger *slog.Logger,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		codec:        codec,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		Cookies: httpx.CookieJar{
			AccessTTL:  codec.TTL(jwtx.RoleAccess),
			RefreshTTL: codec.TTL(jwtx.RoleRefresh),
		},
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
		httpx.AuthGate(httpx.GateOptions{
			Verifier:          codec,
			ProtectedPrefixes: protectedPrefixes,
		}),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTweets()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Chirp API
//	@version		0.1.0
//	@description	Account, session and tweet endpoints for chirp.
//	@description
//	@description				Access tokens are HS256 JWTs valid for 15 minutes, sent as a bearer token or the access_token cookie.
//	@description				Refresh tokens live only in the HttpOnly refresh_token cookie and rotate on every use.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/chirp
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Sessions: r.SessionService,
		Cookies:  r.Cookies,
	}

	// POST /login - strict rate limit by IP + email to slow credential stuffing
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	// POST /register - strict rate limit by IP
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /refresh - moderate rate limit by IP (no identity until the token is checked)
	r.Mux.Handle("POST /api/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /logout - moderate rate limit by user
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// GET /me - lenient rate limit by user
	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerTweets() {
	h := &TweetHandler{Tweets: r.TweetService}

	r.Mux.Handle("POST /api/tweets",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /api/tweets",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	h := &HealthHandler{
		StartTime: r.startTime,
		Version:   r.buildVersion,
		Store:     r.store,
		Codec:     r.codec,
	}

	// Health check endpoints - public limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(http.HandlerFunc(h.HandleLivez),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(http.HandlerFunc(h.HandleReadyz),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
