// Package api exposes the AI advisor over HTTP. It decodes and validates
// requests, calls the advisor service, and translates results and errors into
// JSON responses. Raw error text never reaches clients.
package api
