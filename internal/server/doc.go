// Package server provides HTTP routing, middleware, and the request handlers
// for the tracknotes web application.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern. [RequestLogger] is the one middleware
// the application installs by default.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with
// method filtering.
//
// # Application Handler
//
// [AppHandler] implements [Handler] and serves the whole surface:
//
//	GET/POST /            lookup form / resolve + redirect to confirmation
//	GET/POST /confirm     show pending record / deliver to the workspace
//	GET/POST /signup      account creation
//	GET/POST /login       session establishment (sets the session cookie)
//	GET      /logout      session teardown
//	POST     /save_search persist a confirmed record (authenticated)
//	GET      /history     list saved searches (authenticated)
//
// Unmatched paths fall through to a 404 page.
//
// Identity travels as a signed token in the session cookie; the handler
// verifies it and passes the resulting session value explicitly into the
// accounts manager, so authorization decisions never read ambient state.
// Every failure renders a short plain message from the error taxonomy in
// internal/shared; causes are logged, never shown.
package server
