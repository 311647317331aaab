// Package testdb provides utilities for tests that need a real PostgreSQL
// database.
//
// Tests using it are built with the integration tag and skip themselves when
// TWIT_DATABASE_URL is unset:
//
//	db := testdb.GetTestDBWithT(t)
//	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//		userStore := postgres.NewPostgresUserStore(tx, bcrypt.MinCost, nil)
//		// ...
//	})
//
// Every test body runs in a transaction that is rolled back afterwards, so
// tests can run in parallel against one schema.
package testdb
