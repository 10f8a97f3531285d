// Package cli is the teamboard command-line client.
//
// It wires configuration, the local SQLite store, the gRPC backend client and
// the session, feed and task stores, then exposes them as a cobra command
// tree. Every invocation resumes the login kept on disk, runs one command and
// exits; the shell command keeps the process alive and reads commands from
// stdin in a loop.
//
// Typical flow:
//
//	teamboard register --email ana@team.io --name Ana
//	teamboard post "Shipped the importer"
//	teamboard feed
//	teamboard tasks
//	teamboard done <task-id>
//
// Errors are printed as the user-facing messages of common.UserMessage.
package cli
