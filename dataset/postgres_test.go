package dataset

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Nxllpointer/ziplocator/view"
)

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := Connect(ctx, url)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer pool.Close()
	store := NewPostgresStore(pool)

	seed := []Record{
		{Zip: 10001, Location: view.LatLng{Lat: 40.75064, Lng: -73.99728}},
		{Zip: 90210, Location: view.LatLng{Lat: 34.10048, Lng: -118.41408}},
		{Zip: 10001, Location: view.LatLng{Lat: 0, Lng: 0}},
	}
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}
	n, err := store.Import(ctx, seed)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d rows, want 2", n)
	}

	ll, ok, err := store.Lookup(ctx, 90210)
	if err != nil || !ok || ll != seed[1].Location {
		t.Errorf("Lookup(90210) = %v %v %v", ll, ok, err)
	}
	if _, ok, err := store.Lookup(ctx, 1); err != nil || ok {
		t.Errorf("Lookup(1) = %v %v", ok, err)
	}

	idx, err := store.LoadIndex(ctx, nil)
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if idx.Len() != 2 {
		t.Errorf("index has %d zips, want 2", idx.Len())
	}
}
