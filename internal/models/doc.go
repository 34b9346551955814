// Package models defines the domain types shared by the mysubs client.
//
// The package contains two categories of types:
//
// 1. Session state, owned by the token manager:
//   - [Credential] : access token plus the metadata returned by the token endpoint
//
// 2. Normalized YouTube resources, decoded per response and never cached:
//   - [SubscriptionItem] : a subscription or channel with thumbnails, statistics and content details
//   - [SubscriptionPage] : an ordered page of items plus the cursor of the next page
//   - [Account] : name and picture of the signed-in user's own channel
//
// Decoding from wire formats happens elsewhere (auth for the token endpoint, services for the
// resource endpoints); these types carry no JSON casing rules of their own beyond export tags.
package models
