package table

import (
	"io"
	"os"

	"github.com/san-kum/neurovis/internal/geom"
	"github.com/san-kum/neurovis/internal/neuron"
)

// PositionLayout locates the columns of a positions file. Area < 0 disables
// the area column; rows shorter than Area+1 get no label.
type PositionLayout struct {
	Skip int `yaml:"skip"`
	ID   int `yaml:"id"`
	X    int `yaml:"x"`
	Y    int `yaml:"y"`
	Z    int `yaml:"z"`
	Area int `yaml:"area"`
}

func DefaultPositionLayout() PositionLayout {
	return PositionLayout{Skip: 7, ID: 0, X: 1, Y: 2, Z: 3, Area: 4}
}

// NetworkLayout locates target and source identifiers in an in-network file.
type NetworkLayout struct {
	Skip   int `yaml:"skip"`
	Target int `yaml:"target"`
	Source int `yaml:"source"`
}

func DefaultNetworkLayout() NetworkLayout {
	return NetworkLayout{Skip: 4, Target: 1, Source: 3}
}

// ColorLayout locates a key and a scalar. ByArea reads the key as an area
// label instead of a neuron identifier.
type ColorLayout struct {
	Skip   int  `yaml:"skip"`
	Key    int  `yaml:"key"`
	Value  int  `yaml:"value"`
	ByArea bool `yaml:"by_area"`
}

func DefaultColorLayout() ColorLayout {
	return ColorLayout{Skip: 0, Key: 0, Value: 1}
}

func ReadPositions(rd io.Reader, source string, l PositionLayout) ([]neuron.Record, error) {
	recs := make([]neuron.Record, 0, 1024)
	err := Scan(rd, source, l.Skip, func(r Row) error {
		id, err := r.Int(l.ID)
		if err != nil {
			return err
		}
		var p geom.Vec3
		if p.X, err = r.Float(l.X); err != nil {
			return err
		}
		if p.Y, err = r.Float(l.Y); err != nil {
			return err
		}
		if p.Z, err = r.Float(l.Z); err != nil {
			return err
		}
		rec := neuron.Record{ID: id, Pos: p}
		if l.Area >= 0 && r.Has(l.Area) {
			rec.Area = r.Fields[l.Area]
		}
		recs = append(recs, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func LoadPositions(path string, l PositionLayout) ([]neuron.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPositions(f, path, l)
}

func ReadNetwork(rd io.Reader, source string, l NetworkLayout) ([]neuron.Edge, error) {
	edges := make([]neuron.Edge, 0, 1024)
	err := Scan(rd, source, l.Skip, func(r Row) error {
		target, err := r.Int(l.Target)
		if err != nil {
			return err
		}
		src, err := r.Int(l.Source)
		if err != nil {
			return err
		}
		edges = append(edges, neuron.Edge{Source: src, Target: target})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edges, nil
}

func LoadNetwork(path string, l NetworkLayout) ([]neuron.Edge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadNetwork(f, path, l)
}

func ReadColors(rd io.Reader, source string, l ColorLayout) ([]neuron.ColorSample, error) {
	samples := make([]neuron.ColorSample, 0, 256)
	err := Scan(rd, source, l.Skip, func(r Row) error {
		v, err := r.Float(l.Value)
		if err != nil {
			return err
		}
		s := neuron.ColorSample{Value: v}
		if l.ByArea {
			if s.Area, err = r.Text(l.Key); err != nil {
				return err
			}
		} else if s.ID, err = r.Int(l.Key); err != nil {
			return err
		}
		samples = append(samples, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}

func LoadColors(path string, l ColorLayout) ([]neuron.ColorSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadColors(f, path, l)
}
