// Package dht drives the gossip loop that keeps each node's view of ring
// membership and ownership eventually consistent: periodic DHTAE probes
// carrying a node's version vector, answered with a DHTSync delta whenever
// the peer knows more. The loop shape mirrors pkg/syncer's Driver, which in
// turn mirrors the corpus's own cluster health monitor.
package dht
