package xcontext

import "context"

// The router installs error and response holders before running any
// middleware or handler, so deeper layers can report through a plain
// context.Context without returning values up the chain.

type errorHolder struct {
	err error
}

type responseHolder struct {
	resp any
}

func WithError(ctx context.Context) context.Context {
	return context.WithValue(ctx, errorKey{}, &errorHolder{})
}

func SetError(ctx context.Context, err error) {
	if holder, ok := ctx.Value(errorKey{}).(*errorHolder); ok {
		holder.err = err
	}
}

func Error(ctx context.Context) error {
	if holder, ok := ctx.Value(errorKey{}).(*errorHolder); ok {
		return holder.err
	}
	return nil
}

func WithResponse(ctx context.Context) context.Context {
	return context.WithValue(ctx, responseKey{}, &responseHolder{})
}

func SetResponse(ctx context.Context, resp any) {
	if holder, ok := ctx.Value(responseKey{}).(*responseHolder); ok {
		holder.resp = resp
	}
}

func Response(ctx context.Context) any {
	if holder, ok := ctx.Value(responseKey{}).(*responseHolder); ok {
		return holder.resp
	}
	return nil
}
