// Package httpclient is the outbound HTTP client shared by every
// collaborator adapter: the inference endpoint, the video metadata and
// caption APIs, the audio-link API, webhooks and Slack.
//
// It adds base URLs, auth, optional proxying, error classification and the
// resilience primitives (retry, circuit breaker, rate limiter) on top of
// net/http. Get and Post decode JSON bodies into typed values.
package httpclient
