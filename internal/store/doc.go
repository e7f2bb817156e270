// Package store defines the record store contract shared by every
// persistence backend. The interface abstracts the underlying storage
// medium from the application's core logic, so the query engine and the
// services work unchanged over memory, a CSV file or a SQL database.
package store
