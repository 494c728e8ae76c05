/*
Package session coordinates early validation of streamed recognition results.

A recognizer may deliver several partial responses for one request before the final
one. When a partial response is handled, the Manager records the request in a
ports.ValidationTracker so that the final response of that request is not dispatched a
second time. Handling of one request ID is serialized by a per-key mutex and,
optionally, a ports.DistributedLocker shared across replicas.
*/
package session
