package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Nxllpointer/ziplocator/view"
	"github.com/gocarina/gocsv"
)

var columns = []string{"zip", "lat", "lng"}

// csvRow picks the columns by header name; other columns are ignored.
type csvRow struct {
	Zip string `csv:"zip"`
	Lat string `csv:"lat"`
	Lng string `csv:"lng"`
}

// ReadCSV reads zip, lat and lng by header name. Rows that do not parse
// are skipped and counted.
func ReadCSV(r io.Reader) (recs []Record, skipped int, err error) {
	br := bufio.NewReader(r)
	header, err := br.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || header == "") {
		return nil, 0, fmt.Errorf("dataset: read header: %w", err)
	}
	header = strings.TrimPrefix(header, "\ufeff")
	if err := checkHeader(header); err != nil {
		return nil, 0, err
	}

	cr := csv.NewReader(io.MultiReader(strings.NewReader(header), br))
	cr.FieldsPerRecord = -1
	var rows []csvRow
	if err := gocsv.UnmarshalCSV(cr, &rows); err != nil {
		return nil, 0, fmt.Errorf("dataset: read rows: %w", err)
	}

	for _, row := range rows {
		rec, ok := parseRow(row)
		if !ok {
			skipped++
			continue
		}
		recs = append(recs, rec)
	}
	return recs, skipped, nil
}

func checkHeader(line string) error {
	names, err := csv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return fmt.Errorf("dataset: read header: %w", err)
	}
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[strings.TrimSpace(n)] = true
	}
	for _, c := range columns {
		if !have[c] {
			return fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}
	return nil
}

func parseRow(row csvRow) (Record, bool) {
	zip, err := strconv.ParseUint(strings.TrimSpace(row.Zip), 10, 32)
	if err != nil {
		return Record{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(row.Lat), 64)
	if err != nil || lat < -90 || lat > 90 {
		return Record{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(row.Lng), 64)
	if err != nil || lng < -180 || lng > 180 {
		return Record{}, false
	}
	return Record{Zip: uint32(zip), Location: view.LatLng{Lat: lat, Lng: lng}}, true
}

// LoadCSV reads path and builds an Index.
func LoadCSV(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()

	recs, _, err := ReadCSV(f)
	if err != nil {
		return nil, err
	}
	return NewIndex(recs)
}
