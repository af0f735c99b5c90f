// Package domain defines the core business entities of the market system:
// sporting events, their betting markets and selections, the market change
// operations clients submit, and the lifecycle of a submitted request.
//
// Entities validate themselves and expose only the state transitions the
// business allows. They have no knowledge of storage or transport.
package domain
