package persist

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisStorage_SetGetDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	st, err := NewRedis(ctx, RedisOptions{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer st.Close()

	if _, ok, err := st.Get(ctx, "filters"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := st.Set(ctx, "filters", []byte(`{"status":"all"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, _ := mr.Get("tasker:filters"); v != `{"status":"all"}` {
		t.Errorf("expected prefixed key in redis, got %q", v)
	}

	got, ok, err := st.Get(ctx, "filters")
	if err != nil || !ok || string(got) != `{"status":"all"}` {
		t.Errorf("unexpected get: %s ok=%v err=%v", got, ok, err)
	}

	if err := st.Delete(ctx, "filters"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("tasker:filters") {
		t.Error("expected key removed")
	}
}

func TestNewRedis_FromURL(t *testing.T) {
	mr := miniredis.RunT(t)
	st, err := NewRedis(context.Background(), RedisOptions{URL: "redis://" + mr.Addr() + "/0"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	st.Close()
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	if _, err := NewRedis(context.Background(), RedisOptions{}); err == nil {
		t.Error("expected error without address")
	}
}
