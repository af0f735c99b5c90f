// Package e2e drives RHS and MOS together against real Kafka and PostgreSQL
// containers. The tests only build with the e2e tag.
package e2e
