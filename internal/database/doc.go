// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

/*
Package database opens the embedded DuckDB database shared by the catalog
and feedback stores.

The package owns the connection only. Each store creates its own tables
through its CreateTable or CreateTables method, so the schema lives next to
the code that queries it.

Usage:

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	store := feedback.NewDuckDBStore(db.Conn())
	if err := store.CreateTables(ctx); err != nil {
		return err
	}

A path of ":memory:" opens a throwaway in-process database, which the
integration tests use.
*/
package database
