// Package auth provides authentication and authorization for the service.
//
// Callers sign in with email and password or with a Google access token.
// A successful login stores the user ID in a server-side scs session keyed
// by a cookie. On every request Middleware.Handler resolves that session to
// an active user; RequireAuth and RequireRole reject callers that do not
// qualify.
//
// # Configuration
//
//	AUTH_SESSION_COOKIE_NAME=wordtrack_session
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_SECURE_COOKIES=true    # HTTPS-only cookies
//	AUTH_BCRYPT_COST=12
//	AUTH_CSRF_ENABLED=false     # Require X-CSRF-Token on unsafe methods
//	AUTH_SESSION_SECRET=<hex>   # CSRF key, generated when empty
//	AUTH_MAX_LOGIN_ATTEMPTS=5
//	AUTH_RATE_LIMIT_WINDOW=15m
//	GOOGLE_CLIENT_ID=           # Enables Google sign-in; tokens must be issued to it
//	GOOGLE_TOKENINFO_URL=https://oauth2.googleapis.com/tokeninfo
//
// # Usage
//
//	sessions, _ := auth.NewSessionManager(sqlDB, cfg.Auth)
//	service := auth.NewService(db, cfg.Auth, auth.NewGoogleUserInfoClient(userInfoURL, tokenInfoURL, clientID, nil))
//	router.Use(sessions.SessionLoadSave(), auth.NewMiddleware(service, sessions, logger).Handler())
//	protected := router.Group("/", auth.RequireAuth())
//
// Extract the caller in handlers:
//
//	userID := auth.GetUserID(c)
package auth
