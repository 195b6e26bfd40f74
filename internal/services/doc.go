// Package services defines the contract between the launcher's orchestrator
// and the three network services it starts.
//
// # Service Kinds
//
//   - KindAdmin: the browser-facing admin endpoint (HTTP, MCP, metrics)
//   - KindTCP: a raw TCP listener speaking a small line protocol
//   - KindPG: a Postgres wire-protocol compatible listener
//
// All three are created by a Factory from the same config.Args value, in
// the order given by Kinds.
//
// # Service Lifecycle
//
//  1. Creation: Factory(args, supervisor) returns a stopped Service
//  2. Starting: Start binds the listener; failure leaves the service stopped
//     and its Status describing why
//  3. Running: IsRunning reports true, Status and URL describe the endpoint
//  4. Stopping: Stop closes the listener and waits for connection handlers
//
// # Thread Safety
//
// Implementations are queried concurrently by the orchestrator's Status,
// the admin endpoint's handlers and the TUI, and must guard their state
// accordingly. A Service is stopped at most once by the orchestrator, but
// should tolerate redundant Stop calls.
//
// # Shutdown Requests
//
// Services never stop their siblings. A service that wants the process to
// exit (the admin endpoint's shutdown route) calls Supervisor.ShutdownNow
// with the matching Trigger.
package services
