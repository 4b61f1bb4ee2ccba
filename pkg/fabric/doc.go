// Package fabric defines the closed family of messages exchanged between
// nodes to serve remote CRUD requests, drive anti-entropy synchronization
// between vnode replicas, and gossip DHT state.
//
// Every non-DHT message carries a VNodeId and a Cookie that identifies a
// request/response conversation at the receiver; the cookie is opaque to
// the protocol and must be echoed verbatim on replies and continuations.
// The wire encoding is a JSON envelope (Type, VNode, Cookie, Payload), the
// same shape as the corpus's own cluster.BroadcastRequest{Path, Payload}
// pattern — the byte-exact framing beyond that is the transport's concern,
// not this package's.
package fabric
