package authsdk

import (
	"context"
	"net/url"
	"slices"
	"strings"
	"time"
)

// DefaultInitTimeout bounds how long Check waits for the session store to
// finish initialising before treating the user as logged out.
const DefaultInitTimeout = 5 * time.Second

// Decision is the outcome of a navigation check. Redirect is empty when
// Allow is true.
type Decision struct {
	Allow    bool
	Redirect string
}

func allow() Decision { return Decision{Allow: true} }
func redirectTo(route string) Decision { return Decision{Redirect: route} }

// RouteGuard decides whether a client-side navigation may proceed.
//
// Route tables accept exact paths, nested paths under a listed route and
// "[param]" segments, so "/user/[username]" matches "/user/ada/likes".
type RouteGuard struct {
	Session         *SessionStore
	PublicRoutes    []string
	ProtectedRoutes []string
	EntryRoute      string
	LandingRoute    string
	InitTimeout     time.Duration
}

// NewRouteGuard returns a guard with the application's route tables.
func NewRouteGuard(session *SessionStore) *RouteGuard {
	return &RouteGuard{
		Session: session,
		PublicRoutes: []string{
			"/auth",
			"/auth/login",
			"/auth/register",
			"/auth/forgot-password",
			"/auth/reset-password",
		},
		ProtectedRoutes: []string{
			"/",
			"/profile",
			"/settings",
			"/compose",
			"/messages",
			"/notifications",
			"/bookmarks",
			"/lists",
			"/explore",
			"/search",
			"/user",
			"/user/[username]",
		},
		EntryRoute:   EntryRoute,
		LandingRoute: LandingRoute,
		InitTimeout:  DefaultInitTimeout,
	}
}

// Check decides on a navigation to destination, a path with optional query.
// It starts session initialisation if nobody has yet and waits for it, but
// never longer than InitTimeout.
func (g *RouteGuard) Check(ctx context.Context, destination string) Decision {
	path := destination
	if u, err := url.Parse(destination); err == nil && u.Path != "" {
		path = u.Path
	}

	authenticated := g.waitForSession(ctx)

	isPublic := MatchRoute(path, g.PublicRoutes)
	isProtected := MatchRoute(path, g.ProtectedRoutes)

	if authenticated && isPublic && strings.HasPrefix(path, g.EntryRoute) {
		return redirectTo(g.LandingRoute)
	}

	if !authenticated && (isProtected || path == "/") {
		if destination == "/" {
			return redirectTo(g.EntryRoute)
		}
		return redirectTo(g.EntryRoute + "?redirect=" + url.QueryEscape(destination))
	}

	if authenticated && isProtected {
		if _, err := g.Session.EnsureValidToken(ctx); err != nil {
			g.Session.logger.Info("token validation failed on navigation", "path", path, "err", err)
			return redirectTo(g.EntryRoute)
		}
	}

	return allow()
}

// waitForSession reports whether the user is authenticated once the store
// has initialised. A timeout or cancelled context counts as logged out for
// this navigation only; initialisation keeps running, bounded by the client
// timeout.
func (g *RouteGuard) waitForSession(ctx context.Context) bool {
	select {
	case <-g.Session.Initialized():
		return g.Session.State().IsAuthenticated()
	default:
	}

	timeout := g.InitTimeout
	if timeout <= 0 {
		timeout = DefaultInitTimeout
	}
	initCtx := context.WithoutCancel(ctx)
	go func() { _ = g.Session.Initialize(initCtx) }()

	wait, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case <-g.Session.Initialized():
		return g.Session.State().IsAuthenticated()
	case <-wait.Done():
		g.Session.logger.Warn("session initialisation timed out, treating as logged out")
		return false
	}
}

// MatchRoute reports whether path falls under any of routes.
func MatchRoute(path string, routes []string) bool {
	return slices.ContainsFunc(routes, func(route string) bool {
		if path == route || strings.HasPrefix(path, route+"/") {
			return true
		}
		if strings.Contains(route, "[") {
			return matchPattern(path, route)
		}
		return false
	})
}

// matchPattern matches "[param]" segments against any single non-empty
// segment; extra trailing segments are allowed.
func matchPattern(path, route string) bool {
	want := strings.Split(route, "/")
	got := strings.Split(path, "/")
	if len(got) < len(want) {
		return false
	}
	for i, seg := range want {
		if strings.HasPrefix(seg, "[") && strings.HasSuffix(seg, "]") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if got[i] != seg {
			return false
		}
	}
	return true
}
