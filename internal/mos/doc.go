// Package mos assembles the market operations service: the command consumer
// that applies market changes to PostgreSQL and the HTTP API serving the
// resulting event listing.
package mos
