package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"worklog/internal/requestctx"
	"worklog/internal/transport/http/api"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayHeader      = "Idempotent-Replayed"
)

// CachedResponse is a stored reply to an idempotent request.
type CachedResponse struct {
	RequestHash string `json:"requestHash"`
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (CachedResponse, bool, error)
	Save(ctx context.Context, key string, resp CachedResponse, ttl time.Duration) error
	// Lock claims key for one in-flight request.
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Idempotency replays the stored response of an earlier POST carrying the
// same Idempotency-Key. A reused key with a different body is a conflict.
func Idempotency(store IdempotencyStore, ttl time.Duration) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if key == "" || r.Method != http.MethodPost || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			rid := GetRequestID(ctx)

			raw, err := io.ReadAll(r.Body)
			if err != nil {
				api.Fail(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to read request body", rid)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))
			hash := RequestHash(raw)
			cacheKey := "idemp:" + r.URL.Path + ":" + requestctx.Actor(ctx) + ":" + key

			cached, found, err := store.Get(ctx, cacheKey)
			if err != nil {
				zap.L().Warn("idempotency lookup failed", zap.String("requestId", rid), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if found {
				if cached.RequestHash != hash {
					api.Fail(w, http.StatusConflict, "CONFLICT", "Idempotency key reused with a different payload", rid)
					return
				}
				w.Header().Set("Content-Type", cached.ContentType)
				w.Header().Set(ReplayHeader, "true")
				w.WriteHeader(cached.Status)
				_, _ = w.Write(cached.Body)
				return
			}

			locked, err := store.Lock(ctx, cacheKey+":lock", 30*time.Second)
			if err != nil {
				zap.L().Warn("idempotency lock failed", zap.String("requestId", rid), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !locked {
				api.Fail(w, http.StatusConflict, "CONFLICT", "A request with this idempotency key is still being processed", rid)
				return
			}
			defer func() {
				if err := store.Unlock(context.WithoutCancel(ctx), cacheKey+":lock"); err != nil {
					zap.L().Warn("idempotency unlock failed", zap.Error(err))
				}
			}()

			capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)
			if capture.status >= http.StatusInternalServerError {
				return
			}
			resp := CachedResponse{
				RequestHash: hash,
				Status:      capture.status,
				ContentType: w.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
			}
			if err := store.Save(context.WithoutCancel(ctx), cacheKey, resp, ttl); err != nil {
				zap.L().Warn("idempotency save failed", zap.String("requestId", rid), zap.Error(err))
			}
		})
	}
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

type RedisIdempotencyStore struct {
	Client redis.Cmdable
	Prefix string
}

func NewRedisIdempotencyStore(client redis.Cmdable, prefix string) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{Client: client, Prefix: prefix}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (CachedResponse, bool, error) {
	val, err := s.Client.Get(ctx, s.Prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return CachedResponse{}, false, nil
	}
	if err != nil {
		return CachedResponse{}, false, err
	}
	var out CachedResponse
	if err := json.Unmarshal([]byte(val), &out); err != nil {
		return CachedResponse{}, false, err
	}
	return out, true, nil
}

func (s *RedisIdempotencyStore) Save(ctx context.Context, key string, resp CachedResponse, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, s.Prefix+key, string(data), ttl).Err()
}

func (s *RedisIdempotencyStore) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.Client.SetNX(ctx, s.Prefix+key, "locked", ttl).Result()
}

func (s *RedisIdempotencyStore) Unlock(ctx context.Context, key string) error {
	return s.Client.Del(ctx, s.Prefix+key).Err()
}

// MemoryIdempotencyStore serves single-process deployments without redis.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	resp    CachedResponse
	lock    bool
	expires time.Time
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{entries: map[string]memoryEntry{}, now: time.Now}
}

func (s *MemoryIdempotencyStore) live(key string) (memoryEntry, bool) {
	e, ok := s.entries[key]
	if ok && s.now().After(e.expires) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return e, ok
}

func (s *MemoryIdempotencyStore) Get(_ context.Context, key string) (CachedResponse, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok || e.lock {
		return CachedResponse{}, false, nil
	}
	return e.resp, true, nil
}

func (s *MemoryIdempotencyStore) Save(_ context.Context, key string, resp CachedResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{resp: resp, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryIdempotencyStore) Lock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(key); ok {
		return false, nil
	}
	s.entries[key] = memoryEntry{lock: true, expires: s.now().Add(ttl)}
	return true, nil
}

func (s *MemoryIdempotencyStore) Unlock(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
