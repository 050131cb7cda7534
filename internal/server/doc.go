// package server implements the local HTTP listener used during the OAuth
// authorization code flow. The CLI starts it on demand, waits for the provider
// to redirect back with a code, and shuts it down once a token is exchanged.
package server
