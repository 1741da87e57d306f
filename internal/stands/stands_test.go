package stands

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/atharvtrasi/playlist-stand-chart/internal/shared"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

func TestGradeScore(t *testing.T) {
	tc := []struct {
		token string
		want  float64
		ok    bool
	}{
		{token: "None", want: 0, ok: true},
		{token: "E", want: 100.0 / 6, ok: true},
		{token: "D", want: 200.0 / 6, ok: true},
		{token: "C", want: 50, ok: true},
		{token: "B", want: 400.0 / 6, ok: true},
		{token: "A", want: 500.0 / 6, ok: true},
		{token: "Infi", want: 100, ok: true},
		{token: "S", ok: false},
		{token: "c", ok: false},
		{token: "", ok: false},
	}

	for _, tt := range tc {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := GradeScore(tt.token)
			if ok != tt.ok {
				t.Fatalf("GradeScore(%q) ok = %v, want %v", tt.token, ok, tt.ok)
			}
			if ok && !almostEqual(got, tt.want) {
				t.Errorf("GradeScore(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestGrade(t *testing.T) {
	tc := []struct {
		score float64
		want  string
	}{
		{score: -40, want: "None"},
		{score: 0, want: "None"},
		{score: 100.0 / 6, want: "E"},
		{score: 50, want: "C"},
		{score: 52.38, want: "C"},
		{score: 60, want: "B"},
		{score: 100, want: "Infi"},
		{score: 140, want: "Infi"},
	}

	for _, tt := range tc {
		if got := Grade(tt.score); got != tt.want {
			t.Errorf("Grade(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}

	t.Run("inverts GradeScore", func(t *testing.T) {
		for _, token := range grades {
			score, _ := GradeScore(token)
			if got := Grade(score); got != token {
				t.Errorf("Grade(GradeScore(%q)) = %q", token, got)
			}
		}
	})
}

func TestParse(t *testing.T) {
	t.Run("renames PER and substitutes tokens", func(t *testing.T) {
		data := "Stand,PWR,SPD,PRC,DEV,PER,RNG\nStar Platinum,A,A,A,A,A,C\nThe World,A,A,B,B,A,Infi\n"

		table, err := Parse(strings.NewReader(data))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if table.Len() != 2 {
			t.Fatalf("expected 2 rows, got %d", table.Len())
		}

		row, ok := table.Lookup("the world")
		if !ok {
			t.Fatal("expected to find The World")
		}
		if !almostEqual(row.Features[Stamina], 500.0/6) {
			t.Errorf("PER should feed stamina, got %v", row.Features[Stamina])
		}
		if !almostEqual(row.Features[Range], 100) {
			t.Errorf("Infi range = %v, want 100", row.Features[Range])
		}
		if !almostEqual(row.Features[Precision], 400.0/6) {
			t.Errorf("B precision = %v, want %v", row.Features[Precision], 400.0/6)
		}
	})

	t.Run("resolves columns by name", func(t *testing.T) {
		data := "Stand,RNG,STM,DEV,PRC,SPD,PWR\nShuffled,1,2,3,4,5,6\n"

		table, err := Parse(strings.NewReader(data))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}

		var got Row
		for r := range table.Rows() {
			got = r
		}
		want := Vector{6, 5, 4, 3, 2, 1}
		if got.Features != want {
			t.Errorf("features = %v, want %v", got.Features, want)
		}
	})

	t.Run("accepts numeric cells as-is", func(t *testing.T) {
		data := "Stand,PWR,SPD,PRC,DEV,STM,RNG\nMixed,20.5,C,0,100,E,42\n"

		table, err := Parse(strings.NewReader(data))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		row, _ := table.Lookup("Mixed")
		if row.Features[Power] != 20.5 || row.Features[Range] != 42 || !almostEqual(row.Features[Speed], 50) {
			t.Errorf("unexpected features %v", row.Features)
		}
	})

	t.Run("header only yields empty table", func(t *testing.T) {
		table, err := Parse(strings.NewReader("Stand,PWR,SPD,PRC,DEV,STM,RNG\n"))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if table.Len() != 0 {
			t.Errorf("expected empty table, got %d rows", table.Len())
		}
	})

	errCases := []struct {
		name   string
		data   string
		reason string
	}{
		{name: "empty input", data: "", reason: "missing header"},
		{name: "missing feature column", data: "Stand,PWR,SPD,PRC,DEV,STM\nX,A,A,A,A,A\n", reason: "missing feature column"},
		{name: "unexpected column", data: "Stand,PWR,SPD,PRC,DEV,STM,RNG,LUCK\nX,A,A,A,A,A,A,A\n", reason: "unexpected column"},
		{name: "duplicate column", data: "Stand,PWR,SPD,PRC,DEV,STM,PER\nX,A,A,A,A,A,A\n", reason: "duplicate column"},
		{name: "unknown token", data: "Stand,PWR,SPD,PRC,DEV,STM,RNG\nX,A,A,S,A,A,A\n", reason: "unrecognized token"},
		{name: "short row", data: "Stand,PWR,SPD,PRC,DEV,STM,RNG\nX,A,A,A,A,A\n", reason: "expected 7 fields"},
		{name: "empty cell", data: "Stand,PWR,SPD,PRC,DEV,STM,RNG\nX,A,,A,A,A,A\n", reason: "missing value"},
		{name: "empty label", data: "Stand,PWR,SPD,PRC,DEV,STM,RNG\n,A,A,A,A,A,A\n", reason: "empty label"},
		{name: "nan cell", data: "Stand,PWR,SPD,PRC,DEV,STM,RNG\nX,NaN,A,A,A,A,A\n", reason: "unrecognized token"},
	}

	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.data))

			var dfe *DataFormatError
			if !errors.As(err, &dfe) {
				t.Fatalf("expected DataFormatError, got %v", err)
			}
			if !strings.Contains(dfe.Reason, tt.reason) {
				t.Errorf("reason = %q, want it to contain %q", dfe.Reason, tt.reason)
			}
			if !errors.Is(err, shared.ErrInvalidData) {
				t.Error("DataFormatError should unwrap to shared.ErrInvalidData")
			}
		})
	}

	t.Run("error names the line", func(t *testing.T) {
		data := "Stand,PWR,SPD,PRC,DEV,STM,RNG\nOk,A,A,A,A,A,A\nBad,A,A,A,A,A,Z\n"
		_, err := Parse(strings.NewReader(data))
		if err == nil || !strings.Contains(err.Error(), "line 3") || !strings.Contains(err.Error(), "RNG") {
			t.Errorf("unexpected error %v", err)
		}
	})
}

func TestLoad(t *testing.T) {
	table, err := Load()
	if err != nil {
		t.Fatalf("bundled dataset should load: %v", err)
	}
	if table.Len() == 0 {
		t.Fatal("bundled dataset is empty")
	}

	for r := range table.Rows() {
		if r.Name == "" {
			t.Error("row without a name")
		}
		for i, v := range r.Features {
			if v < 0 || v > 100 {
				t.Errorf("%s %s = %v outside [0,100]", r.Name, Columns[i], v)
			}
		}
	}

	star, ok := table.Lookup("Star Platinum")
	if !ok {
		t.Fatal("expected Star Platinum in bundled dataset")
	}
	if !almostEqual(star.Features[Power], 500.0/6) {
		t.Errorf("Star Platinum power = %v, want A (%v)", star.Features[Power], 500.0/6)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.csv")
	if err := os.WriteFile(path, []byte("Stand,PWR,SPD,PRC,DEV,STM,RNG\nOnly,E,E,E,E,E,E\n"), 0644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	table, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if table.Len() != 1 {
		t.Errorf("expected 1 row, got %d", table.Len())
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTable(t *testing.T) {
	table, err := FromRows([]Row{
		{Name: "First", Features: Vector{1, 1, 1, 1, 1, 1}},
		{Name: "Second", Features: Vector{2, 2, 2, 2, 2, 2}},
		{Name: "Third", Features: Vector{3, 3, 3, 3, 3, 3}},
	})
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}

	t.Run("Rows preserves order and restarts", func(t *testing.T) {
		for pass := 0; pass < 2; pass++ {
			var names []string
			for r := range table.Rows() {
				names = append(names, r.Name)
			}
			if strings.Join(names, ",") != "First,Second,Third" {
				t.Errorf("pass %d: order = %v", pass, names)
			}
		}
	})

	t.Run("Rows stops early", func(t *testing.T) {
		count := 0
		for range table.Rows() {
			count++
			break
		}
		if count != 1 {
			t.Errorf("expected early break after 1, got %d", count)
		}
	})

	t.Run("nil table is empty", func(t *testing.T) {
		var nilTable *Table
		if nilTable.Len() != 0 {
			t.Error("nil table should have zero length")
		}
		for range nilTable.Rows() {
			t.Error("nil table should yield nothing")
		}
	})

	t.Run("FromRows copies input", func(t *testing.T) {
		rows := []Row{{Name: "A", Features: Vector{1}}}
		tbl, err := FromRows(rows)
		if err != nil {
			t.Fatalf("FromRows failed: %v", err)
		}
		rows[0].Name = "mutated"
		if _, ok := tbl.Lookup("A"); !ok {
			t.Error("table should not observe caller mutation")
		}
	})

	t.Run("FromRows rejects bad rows", func(t *testing.T) {
		if _, err := FromRows([]Row{{Name: " "}}); err == nil {
			t.Error("expected error for blank name")
		}
		if _, err := FromRows([]Row{{Name: "x", Features: Vector{math.Inf(1)}}}); err == nil {
			t.Error("expected error for infinite feature")
		}
	})
}

func TestRowMap(t *testing.T) {
	row := Row{Name: "Cream", Features: Vector{1, 2, 3, 4, 5, 6}}

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal row: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal row: %v", err)
	}

	if got["Stand"] != "Cream" {
		t.Errorf("Stand = %v", got["Stand"])
	}
	for i, col := range Columns {
		if got[col] != float64(i+1) {
			t.Errorf("%s = %v, want %d", col, got[col], i+1)
		}
	}
	if len(got) != NumFeatures+1 {
		t.Errorf("expected flat map with %d keys, got %d", NumFeatures+1, len(got))
	}
}

func TestFeature(t *testing.T) {
	if Power.String() != "power" || Range.String() != "range" {
		t.Errorf("unexpected names %s %s", Power, Range)
	}
	if Stamina.Column() != "STM" {
		t.Errorf("Stamina column = %s", Stamina.Column())
	}
	if Feature(9).String() != "unknown" || Feature(9).Column() != "" {
		t.Error("out of range feature should be unknown")
	}
}

func TestHandle(t *testing.T) {
	t.Run("loads once across goroutines", func(t *testing.T) {
		var calls atomic.Int32
		h := NewHandle(func() (*Table, error) {
			calls.Add(1)
			return FromRows([]Row{{Name: "Only"}})
		})

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if tbl, err := h.Table(); err != nil || tbl.Len() != 1 {
					t.Errorf("Table() = %v, %v", tbl, err)
				}
			}()
		}
		wg.Wait()

		if got := calls.Load(); got != 1 {
			t.Errorf("loader called %d times, want 1", got)
		}
	})

	t.Run("memoizes failure", func(t *testing.T) {
		var calls int
		boom := errors.New("boom")
		h := NewHandle(func() (*Table, error) {
			calls++
			return nil, boom
		})

		for i := 0; i < 3; i++ {
			if _, err := h.Table(); !errors.Is(err, boom) {
				t.Fatalf("expected boom, got %v", err)
			}
		}
		if calls != 1 {
			t.Errorf("loader called %d times, want 1", calls)
		}
	})

	t.Run("Static", func(t *testing.T) {
		tbl, _ := FromRows(nil)
		got, err := Static(tbl).Table()
		if err != nil || got != tbl {
			t.Errorf("Static returned %v, %v", got, err)
		}
	})
}
