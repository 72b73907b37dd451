// Package grpc serves the standard grpc.health.v1 health service for the
// agent, so orchestrators can health-check it without going through HTTP.
package grpc
