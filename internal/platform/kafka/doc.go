// Package kafka adapts github.com/segmentio/kafka-go to the publisher
// interfaces of the events package and provides a consumer loop with
// bounded retries.
//
// The Producer writes commands keyed by market ID and results keyed by
// request ID, so all changes to one market land on one partition in order.
// The Consumer fetches a message, hands it to a Handler, and commits the
// offset only once the handler succeeded or its failure was reported to a
// FailureHandler. Delivery is therefore at least once; handlers must be
// idempotent.
package kafka
