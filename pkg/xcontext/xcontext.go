package xcontext

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/xbooster/backend/config"
	"github.com/xbooster/backend/pkg/authenticator"
	"github.com/xbooster/backend/pkg/logger"
	"gorm.io/gorm"
)

type (
	dbKey            struct{}
	loggerKey        struct{}
	configsKey       struct{}
	tokenEngineKey   struct{}
	sessionStoreKey  struct{}
	requestUserIDKey struct{}
	httpRequestKey   struct{}
	httpWriterKey    struct{}
	startTimeKey     struct{}
	errorKey         struct{}
	responseKey      struct{}
)

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

func DB(ctx context.Context) *gorm.DB {
	db, _ := ctx.Value(dbKey{}).(*gorm.DB)
	return db
}

// WithDBTransaction runs fn with the context database replaced by a
// transaction. The transaction commits if fn returns nil and rollbacks
// otherwise.
func WithDBTransaction(ctx context.Context, fn func(context.Context) error) error {
	return DB(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithDB(ctx, tx))
	})
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	if l, ok := ctx.Value(loggerKey{}).(logger.Logger); ok {
		return l
	}
	return logger.NewLogger()
}

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg, _ := ctx.Value(configsKey{}).(config.Configs)
	return cfg
}

func WithTokenEngine(ctx context.Context, engine authenticator.TokenEngine) context.Context {
	return context.WithValue(ctx, tokenEngineKey{}, engine)
}

func TokenEngine(ctx context.Context) authenticator.TokenEngine {
	engine, _ := ctx.Value(tokenEngineKey{}).(authenticator.TokenEngine)
	return engine
}

func WithSessionStore(ctx context.Context, store sessions.Store) context.Context {
	return context.WithValue(ctx, sessionStoreKey{}, store)
}

func SessionStore(ctx context.Context) sessions.Store {
	store, _ := ctx.Value(sessionStoreKey{}).(sessions.Store)
	return store
}

func WithRequestUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestUserIDKey{}, id)
}

func RequestUserID(ctx context.Context) string {
	id, _ := ctx.Value(requestUserIDKey{}).(string)
	return id
}

func WithHTTPRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, r)
}

func HTTPRequest(ctx context.Context) *http.Request {
	r, _ := ctx.Value(httpRequestKey{}).(*http.Request)
	return r
}

func WithHTTPWriter(ctx context.Context, w http.ResponseWriter) context.Context {
	return context.WithValue(ctx, httpWriterKey{}, w)
}

func HTTPWriter(ctx context.Context) http.ResponseWriter {
	w, _ := ctx.Value(httpWriterKey{}).(http.ResponseWriter)
	return w
}

func WithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey{}, t)
}

func StartTime(ctx context.Context) time.Time {
	t, _ := ctx.Value(startTimeKey{}).(time.Time)
	return t
}
