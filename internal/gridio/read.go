package gridio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"boxhaul/internal/haul"
)

var ErrInvalidInput = errors.New("invalid input")

// MaxSize bounds the grid dimension accepted from a header line.
const MaxSize = 1000

type Grid struct {
	N            int     `json:"n"`
	Weights      [][]int `json:"weights"`
	Durabilities [][]int `json:"durabilities"`
}

type ReadOptions struct {
	// Size is used when there is no header line.
	Size int
	// Header means the first token is the grid dimension.
	Header bool
}

func ReadFile(path string, opts ReadOptions) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Read parses an optional size header followed by the weight matrix and the
// durability matrix, all as whitespace separated integers.
func Read(r io.Reader, opts ReadOptions) (*Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)
	tok := 0
	next := func(what string) (int, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("%w, missing %s (token %d)", ErrInvalidInput, what, tok+1)
		}
		tok++
		v, err := strconv.ParseInt(sc.Text(), 10, 32)
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w, %s: %s is outside the 32-bit range", ErrInvalidInput, what, sc.Text())
		}
		if err != nil {
			return 0, fmt.Errorf("%w, %s: %q is not an integer", ErrInvalidInput, what, sc.Text())
		}
		return int(v), nil
	}

	n := opts.Size
	if opts.Header {
		v, err := next("grid size")
		if err != nil {
			return nil, err
		}
		n = v
	}
	if n <= 0 || n > MaxSize {
		return nil, fmt.Errorf("%w, grid size %d", ErrInvalidInput, n)
	}

	g := &Grid{N: n}
	readMatrix := func(name string) ([][]int, error) {
		m := make([][]int, n)
		for i := range m {
			m[i] = make([]int, n)
			for j := range m[i] {
				v, err := next(fmt.Sprintf("%s[%d][%d]", name, i, j))
				if err != nil {
					return nil, err
				}
				m[i][j] = v
			}
		}
		return m, nil
	}
	var err error
	if g.Weights, err = readMatrix("weight"); err != nil {
		return nil, err
	}
	if g.Durabilities, err = readMatrix("durability"); err != nil {
		return nil, err
	}
	if sc.Scan() {
		return nil, fmt.Errorf("%w, trailing data %q", ErrInvalidInput, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

// Registry builds the live box registry for g.
func (g *Grid) Registry() (*haul.Registry, error) {
	reg, err := haul.NewRegistry(g.N, g.Weights, g.Durabilities)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return reg, nil
}
