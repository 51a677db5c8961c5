// Package cli is the terminal front end of the community portal: it wires
// the local store, the optional remote collection service, the sync engine
// and the member services into one App, then drives them from a small
// command loop.
package cli
