// Package gateway orchestrates the trainer-gateway server components.
//
// # Overview
//
// The gateway package is the central coordinator of the trainer-gateway
// server. It owns and wires all major components: the sqlite store, the
// capability registry, the tool executor, the approval workflow, the model
// client, the agent runtime, and the HTTP server.
//
// # HTTP API
//
// The gateway exposes HTTP endpoints in api.go:
//
//   - POST /api/auth/register - Create an account, returns a token
//   - POST /api/auth/login - Exchange credentials for a token
//   - GET /api/auth/me - The authenticated user
//   - POST /api/agent/chat - One conversation turn with the agent
//   - POST /api/agent/action - One view interaction fed back to the agent
//   - GET /api/approvals/pending - Unresolved approvals for the user
//   - POST /api/approvals/{id}/approve - Approve and execute a parked call
//   - POST /api/approvals/{id}/deny - Deny and discard a parked call
//   - GET /api/weights - Direct weight entry listing with pagination
//   - GET /api/capabilities - Registered capability definitions
//   - GET /api/capabilities/{id}/docs - Skill docs rendered as HTML
//   - GET /health - Liveness check
//
// Everything under /api/ except register and login requires a bearer token.
//
// # Lifecycle
//
// Start the gateway:
//
//	gw, err := gateway.New(cfg, logger)
//	err = gw.Run(ctx)
//
// Run blocks until the context is canceled, then shuts the HTTP server
// down gracefully and closes the store.
package gateway
