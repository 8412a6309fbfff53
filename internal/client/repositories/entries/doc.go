// Package entries provides the persistence layer for preference entries.
//
// # Overview
//
// A preference entry is one typed value addressed by (namespace, kind, key).
// The value column holds the encoded text form produced by the kvstore
// package; this layer does not interpret it. Keys of different kinds never
// collide, so the same key may hold a bool and a string side by side.
//
// # Concurrency
//
// The SQLite implementation is safe for concurrent use when backed by a
// *sql.DB. When using *sql.Tx (DBTX), follow normal transaction scoping rules.
//
// Typical Usage
//
//	repo := entries.NewSQLiteRepository(db)
//	_ = repo.Upsert(ctx, entries.Entry{Namespace: "standard_preferences", Kind: "string", Key: "theme", Value: "dark"})
//	v, ok, _ := repo.Get(ctx, "standard_preferences", "string", "theme")
//	_ = repo.Clear(ctx, "standard_preferences")
package entries
