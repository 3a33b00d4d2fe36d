// Package auth provides authentication for the application.
//
// It supports two modes:
//   - "none": no authentication (default), all requests act as a single
//     default user
//   - "local": local user database with session cookies for the web UI
//     and Bearer tokens for API clients
//
// Set AUTH_MODE to select the mode. For local mode:
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_TOKEN_EXPIRY=720h
//	AUTH_BCRYPT_COST=12
//	AUTH_SECURE_COOKIES=true
//
// Shared-shelf pages (/s/<token>) and the import preview endpoints stay
// public in both modes; committing an import always requires a user.
package auth
