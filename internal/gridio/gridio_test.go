package gridio

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"boxhaul/internal/haul"
	"boxhaul/internal/util"
)

func TestRead_WithHeader(t *testing.T) {
	in := "3\n0 2 0\n0 0 0\n1 0 5\n0 40 0\n0 0 0\n7 0 9\n"
	g, err := Read(strings.NewReader(in), ReadOptions{Header: true})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if g.N != 3 || g.Weights[2][2] != 5 || g.Durabilities[0][1] != 40 {
		t.Fatalf("grid=%+v", g)
	}
	reg, err := g.Registry()
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	if reg.Len() != 3 {
		t.Fatalf("boxes=%d want 3", reg.Len())
	}
}

func TestRead_FixedSizeWithoutHeader(t *testing.T) {
	g, err := Read(strings.NewReader("1 2\n3 4\n5 6\n7 8\n"), ReadOptions{Size: 2})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(g.Durabilities, [][]int{{5, 6}, {7, 8}}) {
		t.Fatalf("durabilities=%v", g.Durabilities)
	}
}

func TestRead_Errors(t *testing.T) {
	cases := map[string]string{
		"short":    "2\n1 1\n1 1\n1 1\n",
		"trailing": "1\n1\n1\n1\n",
		"word":     "1\nx\n1\n",
		"size":     "0\n",
		"huge":     "5000\n",
		"weight":   "1\n4611686018427387904\n1\n",
		"dur":      "1\n1\n2147483648\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(in), ReadOptions{Header: true})
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err=%v want ErrInvalidInput", err)
			}
		})
	}
}

func TestRegistry_WrapsGridErrors(t *testing.T) {
	g := &Grid{N: 1, Weights: [][]int{{4}}, Durabilities: [][]int{{0}}}
	_, err := g.Registry()
	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, haul.ErrInvalidGrid) {
		t.Fatalf("err=%v", err)
	}
}

func TestWriteActions_OnePerLine(t *testing.T) {
	var buf bytes.Buffer
	acts := []haul.Action{haul.ActDown, haul.ActRight, haul.ActPick, haul.ActUp, haul.ActLeft}
	if err := WriteActions(&buf, acts); err != nil {
		t.Fatalf("WriteActions: %v", err)
	}
	if buf.String() != "D\nR\n1\nU\nL\n" {
		t.Fatalf("out=%q", buf.String())
	}
}

func TestGenerate_RoundTrip(t *testing.T) {
	g := Generate(util.New(7), 6, 10)
	boxes := 0
	for i := range g.Weights {
		for j, w := range g.Weights[i] {
			if w == 0 {
				continue
			}
			boxes++
			if i == 0 && j == 0 {
				t.Fatalf("box generated on the origin")
			}
			if w > MaxWeight || g.Durabilities[i][j] < 1 || g.Durabilities[i][j] > MaxDurability {
				t.Fatalf("cell (%d,%d) out of range: w=%d d=%d", i, j, w, g.Durabilities[i][j])
			}
		}
	}
	if boxes != 10 {
		t.Fatalf("boxes=%d want 10", boxes)
	}

	var buf bytes.Buffer
	if err := WriteGrid(&buf, g); err != nil {
		t.Fatalf("WriteGrid: %v", err)
	}
	back, err := Read(&buf, ReadOptions{Header: true})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(back, g) {
		t.Fatalf("round trip changed the grid")
	}
}

func TestGenerate_FullGrid(t *testing.T) {
	g := Generate(util.New(1), 4, 0)
	reg, err := g.Registry()
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	if reg.Len() != 15 {
		t.Fatalf("boxes=%d want 15", reg.Len())
	}
}
