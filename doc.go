// Package session provides the client-facing session layer of a
// farm-management admin dashboard: a token store, an upstream API client,
// an auth state machine, role-aware route guarding, and a background token
// refresh monitor. The upstream REST API stays the single authority on
// credentials; this package only holds, mirrors, and reacts to the session
// it hands out.
//
// Session lifecycle:
//   - Manager owns the {loading, authenticated, unauthenticated} state and
//     the cached user snapshot. It starts in loading, resolves through Boot
//     (stored-token profile check), and moves along a fixed transition table.
//     Invalid transitions are rejected, not applied.
//   - Stores are dumb: MemoryStore, BunStore, and RedisStore persist the
//     token pair plus user snapshot and perform no validation. Access and
//     refresh tokens are always written and cleared together.
//   - CookieMirror publishes session presence to the edge layer as a cookie.
//     Mirroring happens only at the transition points the Manager defines,
//     never as a side effect of unrelated calls.
//
// Route protection runs in two layers. The middleware/routegate package
// gates navigations at the edge using only structural token checks and the
// unverified expiry claim (UX gating, not a security boundary). Guard
// re-validates auth and role inside the application with the full state
// machine output, redirecting wrong-role users to the unauthorized page.
//
// Activity sinks:
//   - ActivitySink receives best-effort audit events for login, logout,
//     refresh, invalidation, and state changes. Sink errors are logged and
//     never block a session operation.
package session
