// Package testdb connects integration tests to a real Postgres database.
//
// Tests call Open to get a migrated, empty database, or WithTx to run
// against a transaction that is rolled back afterwards:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.Open(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        store := postgres.NewPostgresRequestStore(tx, nil)
//	        ...
//	    })
//	}
//
// The database URL comes from DATABASE_URL or SERVICEHUB_TEST_DB_URL. Without
// one, tests are skipped locally and fail in CI. Every package shares the
// database and Open truncates it, so run integration tests with -p 1:
//
//	go test -tags integration -p 1 ./...
package testdb
