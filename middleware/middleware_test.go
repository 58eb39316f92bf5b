package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"visage/auth"
	"visage/models"
	"visage/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubUsers map[primitive.ObjectID]bool

func (s stubUsers) Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if !s[id] {
		return nil, services.NotFound("User not found")
	}
	return &models.User{ID: id}, nil
}

func authRouter(a *Auth) *gin.Engine {
	r := gin.New()
	whoami := func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"user": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": id.Hex()})
	}
	r.GET("/private", a.RequireAuth(), whoami)
	r.GET("/public", a.OptionalAuth(), whoami)
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	known := primitive.NewObjectID()
	gone := primitive.NewObjectID()
	r := authRouter(NewAuth(tokens, stubUsers{known: true}, zap.NewNop()))

	good, err := tokens.Issue(known.Hex())
	require.NoError(t, err)
	orphan, err := tokens.Issue(gone.Hex())
	require.NoError(t, err)
	forged, err := auth.NewTokenManager("other", time.Hour).Issue(known.Hex())
	require.NoError(t, err)

	w := get(r, "/private", good)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"`+known.Hex()+`"}`, w.Body.String())

	cases := map[string]struct{ token, msg string }{
		"missing":  {"", "Not authorized, no token"},
		"forged":   {forged, "Not authorized, token failed"},
		"garbage":  {"abc.def.ghi", "Not authorized, token failed"},
		"orphaned": {orphan, "Not authorized, user not found"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := get(r, "/private", tc.token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"message":"`+tc.msg+`"}`, w.Body.String())
		})
	}
}

func TestRequireAuthRejectsNonBearerScheme(t *testing.T) {
	r := authRouter(NewAuth(auth.NewTokenManager("secret", time.Hour), stubUsers{}, zap.NewNop()))
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	known := primitive.NewObjectID()
	r := authRouter(NewAuth(tokens, stubUsers{known: true}, zap.NewNop()))
	good, _ := tokens.Issue(known.Hex())

	w := get(r, "/public", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":""}`, w.Body.String())

	w = get(r, "/public", "nonsense")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":""}`, w.Body.String())

	w = get(r, "/public", good)
	assert.JSONEq(t, `{"user":"`+known.Hex()+`"}`, w.Body.String())
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer   abc"))
	assert.Equal(t, "", bearerToken("Bearer"))
	assert.Equal(t, "", bearerToken("Token abc"))
	assert.Equal(t, "", bearerToken(""))
}

func TestIPRateLimiterWindow(t *testing.T) {
	rl := NewIPRateLimiter(2, time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	now = now.Add(time.Minute + time.Second)
	assert.True(t, rl.Allow("1.1.1.1"))

	now = now.Add(2 * time.Minute)
	rl.Sweep()
	assert.Empty(t, rl.requests)
}

func TestIPRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(IPRateLimit(NewIPRateLimiter(1, time.Minute)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, get(r, "/", "").Code)
	w := get(r, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"message":"`+tooManyRequests+`"}`, w.Body.String())
}

func TestRedisRateLimitFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	r := gin.New()
	r.Use(RedisRateLimit(rdb, 1, time.Minute, zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, get(r, "/", "").Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/", "").Code)
}

// flakyCounter is a redis.Cmdable holding a single window counter whose
// Expire calls fail while expireErrs lasts.
type flakyCounter struct {
	redis.Cmdable
	count      int64
	ttl        time.Duration
	expireErrs []error
	expireCtxs []error
}

func (f *flakyCounter) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.count++
	return redis.NewIntResult(f.count, nil)
}

func (f *flakyCounter) TTL(ctx context.Context, key string) *redis.DurationCmd {
	if f.ttl == 0 {
		return redis.NewDurationResult(-1, nil)
	}
	return redis.NewDurationResult(f.ttl, nil)
}

func (f *flakyCounter) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.expireCtxs = append(f.expireCtxs, ctx.Err())
	if len(f.expireErrs) > 0 {
		err := f.expireErrs[0]
		f.expireErrs = f.expireErrs[1:]
		return redis.NewBoolResult(false, err)
	}
	f.ttl = expiration
	return redis.NewBoolResult(true, nil)
}

func TestRedisRateLimitRestoresLostExpiry(t *testing.T) {
	rdb := &flakyCounter{expireErrs: []error{errors.New("i/o timeout")}}

	r := gin.New()
	r.Use(RedisRateLimit(rdb, 1, time.Minute, zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, get(r, "/", "").Code)
	assert.Zero(t, rdb.ttl)

	w := get(r, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, time.Minute, rdb.ttl)

	// Once the key has a TTL it is left alone.
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/", "").Code)
	assert.Len(t, rdb.expireCtxs, 2)
}

func TestRedisRateLimitOutlivesRequestContext(t *testing.T) {
	rdb := &flakyCounter{}

	r := gin.New()
	r.Use(RedisRateLimit(rdb, 5, time.Minute, zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, rdb.expireCtxs, 1)
	assert.NoError(t, rdb.expireCtxs[0])
	assert.Equal(t, time.Minute, rdb.ttl)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := get(r, "/", "")
	id := w.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "upstream-id", w.Body.String())
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.NewNop()), Recovery(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { panic(errors.New("boom")) })

	w := get(r, "/", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, w.Body.String())
}

func TestTraceID(t *testing.T) {
	prev := otel.GetTracerProvider()
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	r := gin.New()
	r.Use(Tracing("visage-test"), TraceID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(traceIDKey)) })

	w := get(r, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Body.String(), 32)
}
