// Package monitor republishes acquisition image planes under canonical names.
//
// The monitor watches one input directory and copies every ingest-named image
// plane to the output directory, renamed with the canonical grammar from
// package naming.
//
// # Architecture
//
// Two independent triggers feed a single Processor:
//
//   - FileWatcher: fsnotify creation events for the input directory. Each
//     new file waits a settle delay (default 1s) so the writer can finish,
//     then it is dispatched.
//   - Reconciler: a periodic scan (default every 3s, first scan at startup)
//     that lists the input directory, skips paths already in the
//     ProcessedSet and dispatches the rest oldest first.
//
// The ProcessedSet is the only state the triggers share. It is guarded by a
// mutex and offers an atomic Claim so a reconcile scan never dispatches a
// path twice.
//
// # Usage
//
//	config := monitor.DefaultConfig()
//	config.InputDir = "/acquisition"
//	config.OutputDir = "/stacks"
//
//	m, err := monitor.New(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//
//	if err := m.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Delivery Guarantees
//
// Every regular file present in the input directory is processed at least
// once while the monitor runs. A file may be copied twice when a creation
// event and a reconcile scan race; copies overwrite the destination
// atomically, so the last copy wins.
//
// A successful event dispatch marks the path processed, so later scans skip
// it. A failed event dispatch does not, which leaves the reconcile scan one
// attempt of its own. Reconcile attempts are recorded whether they succeed or
// not and are never retried within a run.
//
// # Observing Results
//
// Every dispatch produces a Result. The Processor logs it and hands it to
// each configured Observer (the transfer journal and the dashboard in
// cmd/spimrelay).
//
// # Thread Safety
//
// ProcessedSet and Processor are safe for concurrent use. Monitor.Run must be
// called at most once.
package monitor
