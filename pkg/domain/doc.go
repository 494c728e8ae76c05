/*
Package domain contains the core models of the Conduit dispatcher.

It defines the declarative manifest that binds recognized intents to handlers, the
outcome of a dispatch, and the hooks used to observe it. This package is kept pure and
free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Manifest: The application's domain (entities, actions and error handlers).
  - ManifestMethod: The capability shared by actions and error handlers (id, name, parameters).
  - Outcome: The synchronous result of a dispatch (Success, ErrorHandled or Unhandled).
  - DispatchHooks: Optional callbacks fired while a dispatch runs.
*/
package domain
