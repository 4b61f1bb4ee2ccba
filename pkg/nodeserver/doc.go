// Package nodeserver wires the storage engine to the fabric message family:
// it answers CRUD messages directly against a Namespace and routes Sync and
// DHT messages to their respective responders, the same "one handler per
// category, dispatched by message type" shape the corpus's own request
// routers use.
package nodeserver
