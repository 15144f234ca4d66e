// Package cli provides the interactive musclemap shell.
//
// It wires configuration, the snapshot store, the optional photo archive and
// metrics endpoint into a session, starts a background tick watcher and runs
// a read-eval-print loop over the session's operations.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// input ends. Call App.Close afterwards to flush the last snapshot and
// release resources. See StartTickWatcher and runREPL for details.
package cli
