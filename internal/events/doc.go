// Package events defines the messages RHS and MOS exchange over the broker
// and the publisher interfaces services depend on.
//
// The primary components are:
// - MarketChangeCommand: a client's market change, sent from RHS to MOS
// - MarketChangeResult: the outcome of a command, sent from MOS back to RHS
// - CommandPublisher / ResultPublisher: transport-agnostic publishing contracts
//
// Commands are validated against an embedded JSON schema when decoded, so a
// malformed message is rejected before it reaches the domain.
package events
