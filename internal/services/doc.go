// Package services contains the implementation of all services used by the override server.
//
// The services are responsible for interacting with the database and performing anything that is not strictly HTTP-related.
// The services are injected into the web server, and are used to handle requests dispatched by it.
//
// Current services include:
//   - OverrideService:
//     Is the main handler for dispatched http requests from the editor client. It runs the override
//     core against the persistence managers: apply, cancel, slot cleaning, settings, status, and users.
//   - RenderHookService:
//     Is an amqp 0.9.1 broker-agnostic handler that applies the override before render jobs and
//     restores it after, and publishes override lifecycle events.
package services
