package dataset

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Nxllpointer/ziplocator/view"
)

const sample = `"zip","lat","lng","city","state_id"
"00601","18.18027","-66.75266","Adjuntas","PR"
"10001","40.75064","-73.99728","New York","NY"
"90210","34.10048","-118.41408","Beverly Hills","CA"
"60601","41.88531","-87.62213","Chicago","IL"
"bogus","1","2","x","y"
"99999","91","0","x","y"
`

func TestReadCSV(t *testing.T) {
	recs, skipped, err := ReadCSV(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("got %d records, want 4", len(recs))
	}
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if recs[0].Zip != 601 || recs[0].Location.Lat != 18.18027 {
		t.Errorf("first record = %+v", recs[0])
	}
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, _, err := ReadCSV(strings.NewReader("zip,lat\n1,2\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uszips.csv")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	idx, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	ll, ok := idx.ZipLocation(10001)
	if !ok || ll != (view.LatLng{Lat: 40.75064, Lng: -73.99728}) {
		t.Errorf("ZipLocation(10001) = %v %v", ll, ok)
	}
	if _, ok := idx.ZipLocation(12345); ok {
		t.Error("unknown zip resolved")
	}
}

func TestNewIndexEmpty(t *testing.T) {
	if _, err := NewIndex(nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
}

func TestNearestZip(t *testing.T) {
	recs, _, err := ReadCSV(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	idx, err := NewIndex(recs)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		at   view.LatLng
		want uint32
	}{
		{view.LatLng{Lat: 40.7, Lng: -74.0}, 10001},
		{view.LatLng{Lat: 34.0, Lng: -118.2}, 90210},
		{view.LatLng{Lat: 42.0, Lng: -88.0}, 60601},
		{view.LatLng{Lat: 18.4, Lng: -66.1}, 601},
	}
	for _, tt := range tests {
		got, ok := idx.NearestZip(tt.at)
		if !ok || got != tt.want {
			t.Errorf("NearestZip(%v) = %d %v, want %d", tt.at, got, ok, tt.want)
		}
	}
}

func TestNearestMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	recs := make([]Record, 2000)
	for i := range recs {
		recs[i] = Record{
			Zip:      uint32(i + 1),
			Location: view.LatLng{Lat: rng.Float64()*160 - 80, Lng: rng.Float64()*360 - 180},
		}
	}
	all := append([]Record(nil), recs...)
	idx, err := NewIndex(recs)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 200; i++ {
		q := view.LatLng{Lat: rng.Float64()*170 - 85, Lng: rng.Float64()*360 - 180}
		want, bestD := uint32(0), 0.0
		for j, r := range all {
			if d := distanceKm(q, r.Location); j == 0 || d < bestD {
				want, bestD = r.Zip, d
			}
		}
		got, _ := idx.NearestZip(q)
		if got != want {
			gotLoc, _ := idx.ZipLocation(got)
			if distanceKm(q, gotLoc) > bestD+1e-9 {
				t.Fatalf("NearestZip(%v) = %d, brute force %d", q, got, want)
			}
		}
	}
}

func TestReadCSVHeaderByName(t *testing.T) {
	in := "\ufeffstate,lng,zip,lat\r\n" +
		"NY,-73.99728,10001,40.75064\r\n" +
		"CA,-118.41408\r\n"
	recs, skipped, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(recs) != 1 || recs[0] != (Record{Zip: 10001, Location: view.LatLng{Lat: 40.75064, Lng: -73.99728}}) {
		t.Errorf("records = %+v", recs)
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want the short row", skipped)
	}
}

func TestReadCSVEmpty(t *testing.T) {
	if _, _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Fatal("empty input accepted")
	}
}
