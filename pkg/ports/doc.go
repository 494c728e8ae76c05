/*
Package ports defines the driven ports (interfaces) of the Conduit dispatcher.

These interfaces decouple the dispatch core from the payload parser and from the
storage used to coordinate early validation across requests and replicas.

# Key Interfaces

  - ResponseNode: A parsed recognition result navigated by path (a.b[0].c).
  - Dispatcher: The synchronous dispatch entry point consumed by adapters.
  - ValidationTracker: Remembers which requests were already handled from a partial response.
  - DistributedLocker: Provides distributed locking for concurrent handling of one request.
*/
package ports
