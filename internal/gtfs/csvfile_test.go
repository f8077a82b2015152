package gtfs

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestStreamBuildsRowMaps(t *testing.T) {
	in := "stop_id,stop_name,stop_lat\nA,Alpha,48.85\nB,Bravo,44.8\n"
	var rows []map[string]string
	n, err := Stream(strings.NewReader(in), func(row map[string]string) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 || len(rows) != 2 {
		t.Fatalf("n=%d rows=%d; want 2", n, len(rows))
	}
	if rows[0]["stop_id"] != "A" || rows[1]["stop_name"] != "Bravo" {
		t.Errorf("rows=%v", rows)
	}
}

func TestStreamRaggedRow(t *testing.T) {
	in := "stop_id,stop_name,stop_lat\nA,Alpha\n"
	n, err := Stream(strings.NewReader(in), func(row map[string]string) error {
		if _, ok := row["stop_lat"]; ok {
			t.Error("missing trailing column must be absent from the row map")
		}
		return nil
	})
	if err != nil || n != 1 {
		t.Fatalf("n=%d err=%v", n, err)
	}
}

type brokenReader struct {
	r io.Reader
}

func (b *brokenReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if errors.Is(err, io.EOF) {
		return n, errors.New("stream torn mid-file")
	}
	return n, err
}

func TestStreamReadErrorIsReturned(t *testing.T) {
	in := &brokenReader{r: strings.NewReader("stop_id,stop_name\nA,Alpha\n")}
	_, err := Stream(in, func(map[string]string) error { return nil })
	if err == nil {
		t.Fatal("expected the stream error to surface")
	}
}

func TestStreamEmptyInput(t *testing.T) {
	n, err := Stream(strings.NewReader(""), func(map[string]string) error { return nil })
	if err != nil || n != 0 {
		t.Fatalf("n=%d err=%v; want 0, nil", n, err)
	}
}
