package cache_test

import (
	"testing"
	"time"

	"github.com/cineflixpay/ashley-assistant-go/internal/domain"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("em_alta", "pagina-1")
	val, ok := c.Get("em_alta")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "pagina-1" {
		t.Errorf("expected 'pagina-1', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)

	c.Set("em_alta", "pagina-1")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("em_alta")
	if ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("em_alta", "pagina-1")
	c.Delete("em_alta")

	_, ok := c.Get("em_alta")
	if ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestCache_PointerValues(t *testing.T) {
	c := cache.New[*domain.CatalogPage](5 * time.Minute)

	page := &domain.CatalogPage{Page: 1, TotalResults: 20}
	c.Set("series", page)

	got, ok := c.Get("series")
	if !ok {
		t.Fatal("expected page to exist")
	}
	if got != page {
		t.Error("expected the same page pointer back")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}
