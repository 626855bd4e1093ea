/*
Package authsdk provides a client SDK for the chirp auth service.

# Overview

The package has two layers:

  - Client: one method per endpoint, no state beyond its cookie jar
  - SessionStore: the logged-in session, kept fresh in the background

Create a Client for public endpoints:

	client := authsdk.NewClient("https://chirp.example.com")

	// Check service health
	health, err := client.GetLiveness(ctx)

Wrap it in a SessionStore to hold a session:

	store := authsdk.NewSessionStore(client, authsdk.SessionOptions{
		Storage:   authsdk.FileStorage{Dir: stateDir},
		Navigator: authsdk.NavigatorFunc(router.Push),
	})
	defer store.Close()

	// Restore a session persisted by a previous run
	_ = store.Initialize(ctx)

	user, err := store.Login(ctx, "ada@example.com", "Analytical1")

# Tokens

The access token is returned in the response body and kept in memory and in
TokenStorage under AccessTokenStorageKey. The refresh token is only ever an
HttpOnly cookie; it lives in the client's cookie jar and is never exposed to
callers.

SessionStore arms a timer that refreshes RefreshLead (five minutes) before
the access token expires. If that refresh fails the session is logged out.
Concurrent refreshes share a single request.

# Requests

SessionStore.HTTPClient returns an *http.Client whose transport is an
Interceptor. It adds the bearer token to each request. When the server
answers 401 it refreshes once and returns ErrTokenRefreshed so the caller can
retry; if the refresh fails it logs out and returns ErrSessionExpired.

	hc := store.HTTPClient()
	resp, err := hc.Get(baseURL + "/api/tweets")
	if errors.Is(err, authsdk.ErrTokenRefreshed) {
		resp, err = hc.Get(baseURL + "/api/tweets")
	}

# Navigation

RouteGuard decides whether a navigation may proceed:

	guard := authsdk.NewRouteGuard(store)
	if d := guard.Check(ctx, "/compose"); !d.Allow {
		router.Push(d.Redirect) // "/auth?redirect=%2Fcompose"
	}

Check waits for Initialize to finish, at most InitTimeout, and treats a
timeout as logged out.

# Error Handling

Every server error is an *APIError. Compare with errors.Is against the
predefined values, which match by code:

	_, err := client.Login(ctx, req)
	if errors.Is(err, authsdk.ErrInvalidCredentials) {
		// wrong email or password
	}

	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == authsdk.ErrorCodeValidation {
		for field, msg := range apiErr.Fields {
			fmt.Printf("%s: %s\n", field, msg)
		}
	}

# Thread Safety

Client, SessionStore and Interceptor are safe for concurrent use.
Subscribers registered with SessionStore.Subscribe are called outside the
store's lock and may call back into it.
*/
package authsdk
