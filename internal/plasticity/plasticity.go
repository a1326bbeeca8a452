// Package plasticity loads the per-step synapse creation and deletion counts
// that the simulator writes for each simulation variant.
package plasticity

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/neurovis/internal/table"
)

// ErrMissingColumn indicates a header that lacks one of the required columns.
var ErrMissingColumn = errors.New("plasticity: missing column")

type Sample struct {
	Step      int64   `json:"step"`
	Creations float64 `json:"creations"`
	Deletions float64 `json:"deletions"`
	Netto     float64 `json:"netto"`
}

type Series struct {
	Variant string   `json:"variant"`
	Samples []Sample `json:"samples"`
}

// columns without a header line
var defaultColumns = map[string]int{"step": 0, "creations": 1, "deletions": 2, "netto": 3}

func normalize(name string) string {
	return strings.ToLower(strings.Trim(name, "#: \t"))
}

// headerColumns maps names to data columns. A bare '#' marker is not a column.
func headerColumns(line string) (map[string]int, error) {
	cols := make(map[string]int)
	i := 0
	for _, f := range strings.Fields(line) {
		if n := normalize(f); n != "" {
			cols[n] = i
			i++
		}
	}
	for _, k := range []string{"step", "creations", "deletions", "netto"} {
		if _, ok := cols[k]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, k)
		}
	}
	return cols, nil
}

// Read parses a plasticity table. The first line is taken as a header when it
// starts with '#'; otherwise columns are step, creations, deletions, netto.
// Step values may carry a trailing ':'.
func Read(rd io.Reader, variant, source string) (*Series, error) {
	br := bufio.NewReader(rd)
	first, err := br.Peek(1)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	cols := defaultColumns
	skip := 0
	if len(first) == 1 && first[0] == '#' {
		header, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		if cols, err = headerColumns(header); err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		// Scan counts from the header line so reported line numbers match the file.
		rd = io.MultiReader(strings.NewReader(header), br)
		skip = 1
	} else {
		rd = br
	}

	s := &Series{Variant: variant}
	err = table.Scan(rd, source, skip, func(r table.Row) error {
		var smp Sample
		step, err := r.Text(cols["step"])
		if err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(step, ":"), 64)
		if err != nil {
			return &table.ParseError{Source: source, Line: r.Line, Column: cols["step"], Text: step, Wrapped: table.ErrMalformedRow}
		}
		smp.Step = int64(v)
		if smp.Creations, err = r.Float(cols["creations"]); err != nil {
			return err
		}
		if smp.Deletions, err = r.Float(cols["deletions"]); err != nil {
			return err
		}
		if smp.Netto, err = r.Float(cols["netto"]); err != nil {
			return err
		}
		s.Samples = append(s.Samples, smp)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func Load(path, variant string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, variant, path)
}

// LoadVariants loads one series per variant concurrently. Results keep the
// order of variants.
func LoadVariants(ctx context.Context, variants []string, pathFor func(variant string) string) ([]*Series, error) {
	out := make([]*Series, len(variants))
	g, ctx := errgroup.WithContext(ctx)
	for i, v := range variants {
		i, v := i, v
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := Load(pathFor(v), v)
			if err != nil {
				return fmt.Errorf("variant %s: %w", v, err)
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Series) Len() int { return len(s.Samples) }

func (s *Series) column(f func(Sample) float64) []float64 {
	out := make([]float64, len(s.Samples))
	for i, smp := range s.Samples {
		out[i] = f(smp)
	}
	return out
}

func (s *Series) Steps() []float64     { return s.column(func(x Sample) float64 { return float64(x.Step) }) }
func (s *Series) Creations() []float64 { return s.column(func(x Sample) float64 { return x.Creations }) }
func (s *Series) Deletions() []float64 { return s.column(func(x Sample) float64 { return x.Deletions }) }
func (s *Series) Netto() []float64     { return s.column(func(x Sample) float64 { return x.Netto }) }

// Totals sums creations, deletions and netto over the whole series.
func (s *Series) Totals() (creations, deletions, netto float64) {
	return floats.Sum(s.Creations()), floats.Sum(s.Deletions()), floats.Sum(s.Netto())
}
