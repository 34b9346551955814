// Package tasks runs long library operations against a [services.SubscriptionsClient] with
// real-time progress reporting.
//
// # Operations
//
//  1. [Crawler.FetchAll] : walk every subscriptions page by cursor
//     - Pages are requested one after another, the next cursor comes from the previous page
//     - Items are appended in provider order
//     - A repeated cursor stops the walk with an error
//
//  2. [Crawler.Enrich] : fetch channel statistics for each item
//     - A fixed pool of workers calls [services.SubscriptionsClient.Channel]
//     - Every request waits on a shared rate limiter
//     - Per item failures are collected, authentication failures abort the run
//
// # Progress Reporting
//
// The [ProgressUpdate] struct carries the phase, step counters, a message and optional data.
// Sends use select with default so a slow reader never blocks the crawl.
package tasks
