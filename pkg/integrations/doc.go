// Package integrations provides HTTP clients for the remote services
// postframe collaborates with.
//
// # Overview
//
// This package contains low-level API clients for the two collaborator
// services. Each collaborator has its own subpackage:
//
//   - [caption]: caption-rewrite service (text in, polished text out)
//   - [imagegen]: background-generation service (prompt in, image out)
//
// # Client Pattern
//
// Both collaborator clients follow a consistent pattern:
//
//	client := caption.NewClient(backend, nil, endpoint, time.Hour)
//	text, err := client.Rewrite(ctx, "my draft", false)  // false = use cache
//
// Clients handle:
//   - Response caching (any [cache.Cache] backend, configurable TTL)
//   - The shared error contract (upstream {"error": ...} bodies surface verbatim)
//   - Configuration checks before any network attempt
//
// Requests are made exactly once. No client retries; failures surface
// to the caller, who either reports them or degrades.
//
// # Shared Infrastructure
//
// The [Client] type provides shared HTTP functionality used by both
// collaborator clients, including JSON POST plumbing and response
// caching via [cache.Cache].
//
// [caption]: github.com/postframe/postframe/pkg/integrations/caption
// [imagegen]: github.com/postframe/postframe/pkg/integrations/imagegen
// [cache.Cache]: github.com/postframe/postframe/pkg/cache.Cache
package integrations
