// Package services implements the authenticated YouTube Data API client.
//
// # Lazy Authentication
//
// [YouTubeService] never signs in on its own. It asks its [TokenProvider] for the live credential
// and, when there is none, refreshes once before the first request. A 401 on a request that went
// out with a cached credential triggers one refresh and one retry. A second 401 is returned to the
// caller as a [shared.ProviderError].
//
// # Paging
//
// Subscriptions come back in alphabetical order, pageSize items at a time. The opaque cursor from
// one [models.SubscriptionPage] requests the next; an empty cursor marks the last page.
//
// # Error Handling
//
//   - [shared.ErrMissingRefreshToken]: nobody has signed in
//   - [shared.ErrTransport]: the request never produced a response
//   - [shared.ErrDecode]: the response body was not the expected JSON
//   - [shared.ErrProvider]: non-2xx status, with the googleapi error attached
//   - [shared.ErrChannelNotFound]: a channel lookup returned no items
package services
