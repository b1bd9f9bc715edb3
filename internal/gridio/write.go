package gridio

import (
	"bufio"
	"io"
	"strconv"

	"boxhaul/internal/haul"
)

// WriteActions writes one action token per line.
func WriteActions(w io.Writer, actions []haul.Action) error {
	bw := bufio.NewWriterSize(w, 64*1024)
	for _, a := range actions {
		if err := bw.WriteByte(byte(a)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteGrid writes g in the format Read accepts with Header set.
func WriteGrid(w io.Writer, g *Grid) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strconv.Itoa(g.N))
	bw.WriteByte('\n')
	for _, m := range [][][]int{g.Weights, g.Durabilities} {
		for _, row := range m {
			for j, v := range row {
				if j > 0 {
					bw.WriteByte(' ')
				}
				bw.WriteString(strconv.Itoa(v))
			}
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}
