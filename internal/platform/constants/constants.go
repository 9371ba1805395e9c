// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Redis Keys: Prefixes of every key the service writes.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "wanderly-auth"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 100

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Email Delivery

const (
	// MailQueueBuffer is the capacity of the in-process email queue.
	MailQueueBuffer = 256

	// MailSendTimeout bounds a single SMTP delivery attempt.
	MailSendTimeout = 15 * time.Second

	// AMQPDialTimeout bounds the TCP connect and AMQP handshake to the broker.
	AMQPDialTimeout = 2 * time.Second

	// AMQPReconnectMin and AMQPReconnectMax bound the reconnect backoff.
	AMQPReconnectMin = 1 * time.Second
	AMQPReconnectMax = 30 * time.Second
)

// # JSON Field Identifiers

const (
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixRevokedJTI keys hold revoked token ids until the token would expire.
	RedisPrefixRevokedJTI = "auth:revoked_jti:"

	// RedisPrefixRateLimit keys hold fixed-window counters for credential endpoints.
	RedisPrefixRateLimit = "auth:ratelimit:"
)
