// Package service contains the use cases of both services.
//
// RequestService backs RHS: it accepts market changes from clients, tracks
// their status, dispatches commands to MOS and applies the results MOS
// publishes back.
//
// MarketService backs MOS: it applies commands to the event store inside a
// single transaction together with a processed-request record, so a
// redelivered command is answered from that record instead of being applied
// again.
//
// Services receive their dependencies through constructor injection and
// depend only on the store and events interfaces, never on a concrete
// database or broker.
package service
