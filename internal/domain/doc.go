// Package domain contains the core concepts of the screenshot relay: the render
// request, the outbound render payload, the stored object and the response
// envelopes, plus the Renderer and ObjectStore ports.
// Keep this package free of transport (HTTP) and infrastructure (R2/Chrome) concerns.
package domain
