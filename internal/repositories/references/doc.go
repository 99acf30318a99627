// Package references stores the small lookup lists a field device keeps
// between refreshes: expense types and trucks pulled from the server, and
// payees learned from what the user typed.
package references
