// Package rhs assembles the request handling service: the HTTP API clients
// submit market changes to, the command producer, and the consumer that
// records results published by the market operations service.
package rhs
