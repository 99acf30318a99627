// Package cli provides the interactive tripkeeper front end.
//
// App wraps the local services in a line-oriented REPL. Capture commands
// (start, drop, fuel, expense) always write to the local store; sync and
// refresh are the only commands that need the network. A background watcher
// mirrors server reachability into the prompt.
package cli
