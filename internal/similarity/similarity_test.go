package similarity

import (
	"errors"
	"math"
	"testing"
)

func TestLexical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b    string
		atLeast float64
		below   float64
	}{
		{a: "python", b: "python", atLeast: 1, below: 1.01},
		{a: "postgresql", b: "postgres", atLeast: 0.8, below: 1},
		{a: "node js", b: "nodejs", atLeast: 1, below: 1.01},
		{a: "java", b: "javascript", atLeast: 0, below: 0.6},
		{a: "react", b: "python", atLeast: 0, below: 0.1},
		{a: "machine learning", b: "deep learning", atLeast: 0.3, below: 0.6},
		{a: "c", b: "c++", atLeast: 0, below: 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.a+"~"+tt.b, func(t *testing.T) {
			t.Parallel()
			got := Lexical(tt.a, tt.b)
			if got < tt.atLeast || got >= tt.below {
				t.Fatalf("expected %s~%s in [%v,%v), got %v", tt.a, tt.b, tt.atLeast, tt.below, got)
			}
			if rev := Lexical(tt.b, tt.a); math.Abs(rev-got) > 1e-12 {
				t.Fatalf("expected symmetric score, got %v and %v", got, rev)
			}
		})
	}
}

func TestBoundsOnOddInput(t *testing.T) {
	inputs := []string{"", "a", "++", "x y z", "日本語"}
	for _, a := range inputs {
		for _, b := range inputs {
			got := Lexical(a, b)
			if got < 0 || got > 1 || math.IsNaN(got) {
				t.Fatalf("Lexical(%q, %q) out of range: %v", a, b, got)
			}
		}
	}
}

func TestClamp(t *testing.T) {
	if Clamp(math.NaN()) != 0 || Clamp(-1) != 0 || Clamp(2) != 1 || Clamp(0.4) != 0.4 {
		t.Fatalf("unexpected clamp results")
	}
}

func TestByName(t *testing.T) {
	if fn, err := ByName(""); err != nil || fn == nil {
		t.Fatalf("expected lexical default, got err %v", err)
	}
	if fn, err := ByName(" Embedding "); !errors.Is(err, ErrNeedsTable) || fn != nil {
		t.Fatalf("expected embedding lookup to need a table, got %v", err)
	}
	if _, err := ByName("soundex"); err == nil {
		t.Fatalf("expected unknown strategy error")
	}
}

func TestTableFunc(t *testing.T) {
	table := NewTable(map[string][]float32{
		"go":     {1, 0},
		"golang": {2, 0.1},
		"sql":    {0, 3},
		"zero":   {0, 0},
	}, nil)

	if table.Len() != 3 {
		t.Fatalf("expected zero vector to be dropped, got %d vectors", table.Len())
	}

	fn := table.Func()
	if got := fn("go", "golang"); got < 0.99 {
		t.Fatalf("expected near parallel vectors, got %v", got)
	}
	if got := fn("go", "sql"); got != 0 {
		t.Fatalf("expected orthogonal vectors to score 0, got %v", got)
	}
	if got, want := fn("zero", "sql"), Lexical("zero", "sql"); got != want {
		t.Fatalf("expected lexical fallback %v, got %v", want, got)
	}
}
