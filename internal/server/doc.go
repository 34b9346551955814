// Package server receives the OAuth consent redirect on a loopback address.
//
// [BasicRouter] wraps [http.ServeMux] method patterns with a [Middleware] stack. The first middleware
// added is the outermost, so [RecoverMiddleware] sees panics from everything below it.
//
// [OAuthHandler] checks the state parameter, hands the full redirect URL to an [Exchanger] and
// publishes the outcome on a channel. Only the first callback is processed; later ones get 400.
//
// [Receiver] binds its listener before the browser is opened, so a bind failure is reported before the
// user is sent anywhere. The caller waits on it with a deadline and shuts it down afterwards.
package server
