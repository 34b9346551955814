// Package auth owns the OAuth2 session: the in-memory access credential and the refresh token behind it.
//
// [Manager] performs the two grants the client needs against the token endpoint:
//   - authorization_code, from the redirect URL the browser lands on after consent ([Manager.Exchange])
//   - refresh_token, from the refresh token kept in a [credentials.Store] ([Manager.Refresh])
//
// Refresh tokens are persisted before the credential is published, and persistence failures are logged
// rather than returned: the credential is still good for the current session.
//
// Concurrent refreshes share one request through a [singleflight.Group]. A refresh whose context is
// cancelled leaves the current credential untouched.
package auth
