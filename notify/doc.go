// Package notify delivers job progress events and operator alerts.
//
// Progress events go to a webhook signed with HMAC-SHA256 and optionally
// to Kafka. Alerts go to Slack and an append-only error log, at most once
// per error chain.
package notify
