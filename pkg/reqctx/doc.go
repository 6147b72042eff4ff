// Package reqctx carries request-scoped data through context.Context.
//
// Middleware stores the request metadata and, for authenticated requests, the
// token claims. Services read them back without importing fiber:
//
//	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{RequestID: rid})
//	ctx = reqctx.WithClaims(ctx, claims)
//
//	userID, ok := reqctx.UserIDFromContext(ctx)
//	reqctx.Logger(ctx).Warn("calendar unavailable")
//
// All context keys are private unexported types to prevent collisions.
package reqctx
