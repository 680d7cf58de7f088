// Package httputil fetches remote calendar feeds.
//
// # Overview
//
//   - [Client]: GET with default headers, retries, and a response cache
//   - [Retry]: Automatic retry with exponential backoff
//
// # Fetching
//
// [Client.Fetch] returns the body of a URL. Successful bodies are stored in
// a [cache.Cache] under [cache.Keyer.HTTPKey], so a subscribed ICS feed is
// downloaded at most once per TTL:
//
//	c := httputil.NewClient(fileCache, nil, nil)
//	body, err := c.Fetch(ctx, "https://example.com/practice.ics", false)
//
// A cache failure is ignored and the feed is fetched again.
//
// # Retry
//
// [Retry] re-runs an operation that failed with a [RetryableError]:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Other errors return immediately. The delay doubles after each attempt.
//
// [cache.Cache]: github.com/matzehuels/timegrid/pkg/cache.Cache
// [cache.Keyer.HTTPKey]: github.com/matzehuels/timegrid/pkg/cache.Keyer
package httputil
