// Package testdb provides utilities for tests that need a real PostgreSQL
// database.
//
// Tests using this package are gated by the "integration" build tag and
// skip themselves when DATABASE_URL is not set:
//
//	func TestSomething(t *testing.T) {
//		db := testdb.GetTestDBWithT(t)
//		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//			// changes made through tx are rolled back afterwards
//		})
//	}
//
// GetTestDBWithT applies the embedded goose migrations before returning,
// so every test sees the current schema.
package testdb
