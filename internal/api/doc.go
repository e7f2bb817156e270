// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between external clients
// and the internal application services, translating HTTP concerns to
// business operations.
//
// Every response uses the same envelope: {"success":true,"data":...} on
// success and {"success":false,"point":...,"message":...} on failure, where
// point names the operation that failed.
package api
