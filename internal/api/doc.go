// Package api is the HTTP surface of the reading list: request decoding,
// routing and response formatting on top of the services in
// internal/service.
package api
