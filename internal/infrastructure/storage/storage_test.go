package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"blue-collar-portal/internal/config"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestObjectPath_SanitizesName(t *testing.T) {
	owner := uuid.New()
	p := ObjectPath("/appeals/", owner, "../../etc/pay slip (1).PDF")

	if !strings.HasPrefix(p, "appeals/"+owner.String()+"/") {
		t.Fatalf("unexpected prefix %q", p)
	}
	if strings.Contains(p, "..") || strings.Contains(p, " ") {
		t.Fatalf("unsafe path %q", p)
	}
	if !strings.HasSuffix(p, "-pay_slip_1_.PDF") {
		t.Fatalf("unexpected name in %q", p)
	}
}

func TestSupabaseStore_PutAndSign(t *testing.T) {
	var gotAuth, gotContentType, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/storage/v1/object/sign/"):
			_ = json.NewEncoder(w).Encode(map[string]string{
				"signedURL": "/object/sign/evidence/" + strings.TrimPrefix(r.URL.Path, "/storage/v1/object/sign/evidence/") + "?token=t",
			})
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/storage/v1/object/"):
			gotAuth = r.Header.Get("Authorization")
			gotContentType = r.Header.Get("Content-Type")
			gotPath = r.URL.Path
			_, _ = io.ReadAll(r.Body)
			_ = json.NewEncoder(w).Encode(map[string]string{"Key": "evidence/x"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s, err := NewSupabaseStore(config.StorageConfig{
		SupabaseURL: srv.URL,
		SupabaseKey: "service-key",
		Bucket:      "evidence",
		Timeout:     time.Second,
	}, quietLogger())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	key, err := s.Put(context.Background(), []byte("%PDF"), "application/pdf", "appeals/a/b.pdf")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if key != "appeals/a/b.pdf" {
		t.Fatalf("expected logical path as key got %q", key)
	}
	if gotPath != "/storage/v1/object/evidence/appeals/a/b.pdf" {
		t.Fatalf("unexpected upload path %q", gotPath)
	}
	if gotAuth != "Bearer service-key" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if !strings.Contains(gotContentType, "application/pdf") {
		t.Fatalf("unexpected content type %q", gotContentType)
	}

	u, err := s.SignedURL(context.Background(), key, 10*time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !strings.HasPrefix(u, srv.URL+"/storage/v1/object/sign/evidence/appeals/a/b.pdf") {
		t.Fatalf("unexpected signed url %q", u)
	}
}

func TestSupabaseStore_UploadErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"status":403,"message":"bucket policy"}`))
	}))
	defer srv.Close()

	s, _ := NewSupabaseStore(config.StorageConfig{SupabaseURL: srv.URL, SupabaseKey: "k", Bucket: "b", Timeout: time.Second}, quietLogger())
	if _, err := s.Put(context.Background(), []byte("x"), "text/plain", "a.txt"); err == nil {
		t.Fatalf("expected upload error")
	}
}

func TestSupabaseStore_TimeoutBoundsCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	s, _ := NewSupabaseStore(config.StorageConfig{SupabaseURL: srv.URL, SupabaseKey: "k", Bucket: "b", Timeout: 20 * time.Millisecond}, quietLogger())
	_, err := s.Put(context.Background(), []byte("x"), "text/plain", "a.txt")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded got %v", err)
	}
}

type mapCache struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *mapCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal([]byte(v), out)
}

func (m *mapCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = string(b)
	return nil
}

type countingStore struct {
	ObjectStore
	signs int
}

func (c *countingStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	c.signs++
	return c.ObjectStore.SignedURL(ctx, key, ttl)
}

func TestCachedStore_ReusesSignedURL(t *testing.T) {
	mem := NewMemoryStore()
	key, err := mem.Put(context.Background(), []byte("img"), "image/png", "reports/x.png")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	inner := &countingStore{ObjectStore: mem}
	c := NewCachedStore(inner, &mapCache{data: map[string]string{}}, quietLogger())

	first, err := c.SignedURL(context.Background(), key, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	second, err := c.SignedURL(context.Background(), key, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if first != second || inner.signs != 1 {
		t.Fatalf("expected cached url, signs=%d", inner.signs)
	}
}

func TestMemoryStore_UnknownKey(t *testing.T) {
	if _, err := NewMemoryStore().SignedURL(context.Background(), "missing", time.Minute); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()
	key, err := mem.Put(ctx, []byte("img"), "image/png", "appeals/x.png")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := mem.Delete(ctx, []string{key, "appeals/missing.png"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mem.Len() != 0 {
		t.Fatalf("expected empty store got %d", mem.Len())
	}
	if _, err := mem.SignedURL(ctx, key, time.Minute); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestSupabaseStore_DeleteSendsPrefixes(t *testing.T) {
	var gotMethod, gotPath string
	var body struct {
		Prefixes []string `json:"prefixes"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode([]map[string]string{{"Key": "evidence/appeals/a/b.pdf"}})
	}))
	defer srv.Close()

	s, err := NewSupabaseStore(config.StorageConfig{
		SupabaseURL: srv.URL,
		SupabaseKey: "service-key",
		Bucket:      "evidence",
		Timeout:     time.Second,
	}, quietLogger())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := s.Delete(context.Background(), []string{"/appeals/a/b.pdf", ""}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/storage/v1/object/evidence" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	if len(body.Prefixes) != 1 || body.Prefixes[0] != "appeals/a/b.pdf" {
		t.Fatalf("unexpected prefixes %v", body.Prefixes)
	}
}
