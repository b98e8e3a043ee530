package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestOneLine(t *testing.T) {
	for in, want := range map[string]string{
		"select 1":                             "select 1",
		"  select\n\t*  from boxes\r\n":        "select * from boxes",
		"insert into scans\n  values ($1, $2)": "insert into scans values ($1, $2)",
		"":                                     "",
	} {
		if got := oneLine(in); got != want {
			t.Fatalf("oneLine(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTracer(t *testing.T) {
	var buf bytes.Buffer
	// an error level root must not hide SQL
	tr := Tracer(zerolog.New(&buf).Level(zerolog.ErrorLevel))

	var line struct {
		Level     string  `json:"level"`
		TookMS    float64 `json:"took_ms"`
		Slow      bool    `json:"slow"`
		SQL       string  `json:"sql"`
		Args      []any   `json:"args"`
		Error     string  `json:"error"`
		Component string  `json:"component"`
	}
	ev := QueryEvent{
		SQL:       "select box_id\n  from boxes where shipment_id = $1",
		Args:      []any{"s-1"},
		ElapsedUS: 2500,
		Err:       errors.New("boom"),
	}

	for _, slow := range []bool{false, true} {
		buf.Reset()
		ev.Slow = slow
		tr.OnQuery(context.Background(), ev)
		if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
			t.Fatalf("decode %q: %v", buf.String(), err)
		}
		want := "info"
		if slow {
			want = "warn"
		}
		if line.Level != want || line.Slow != slow {
			t.Fatalf("level = %s slow = %v", line.Level, line.Slow)
		}
		if line.TookMS != 2.5 || line.SQL != "select box_id from boxes where shipment_id = $1" ||
			len(line.Args) != 1 || line.Error != "boom" || line.Component != "pg" {
			t.Fatalf("line = %+v", line)
		}
	}
}
