package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/chirp/internal/auth/store"
	"github.com/aussiebroadwan/chirp/pkg/authsdk"
	"github.com/aussiebroadwan/chirp/pkg/httpx"
	"github.com/aussiebroadwan/chirp/pkg/jwtx"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	StartTime time.Time
	Version   string
	Store     store.Store
	Codec     *jwtx.Codec
}

func (h *HealthHandler) response(status string, checks *authsdk.HealthChecks) authsdk.HealthResponse {
	return authsdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(h.StartTime).Round(time.Second).String(),
		Version: h.Version,
		Checks:  checks,
	}
}

// HandleLivez godoc
//
//	@Summary		Liveness probe
//	@Description	Returns 200 whenever the process is serving requests.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func (h *HealthHandler) HandleLivez(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.response("ok", nil))
}

// HandleReadyz godoc
//
//	@Summary		Readiness probe
//	@Description	Pings the database and round-trips a probe access token through the codec.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status degraded, failing check in checks"
//	@Router			/readyz [get].
func (h *HealthHandler) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := &authsdk.HealthChecks{
		Database: h.checkDatabase(r),
		Tokens:   h.checkTokens(),
	}

	if checks.Database != "ok" || checks.Tokens != "ok" {
		httpx.WriteJSON(w, http.StatusServiceUnavailable, h.response("degraded", checks))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.response("ok", checks))
}

func (h *HealthHandler) checkDatabase(r *http.Request) string {
	if h.Store == nil {
		return "error: store not configured"
	}
	if err := h.Store.Ping(r.Context()); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

// checkTokens signs and verifies a throwaway access token, which catches a
// codec built without secrets or with a broken clock.
func (h *HealthHandler) checkTokens() string {
	if h.Codec == nil {
		return "error: token codec not configured"
	}

	token, _, err := h.Codec.IssueAccess(jwtx.AccessClaim{UserID: "readyz"})
	if err != nil {
		return "error: " + err.Error()
	}
	if _, err := h.Codec.Verify(token, jwtx.RoleAccess); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
