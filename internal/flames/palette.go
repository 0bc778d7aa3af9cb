package flames

import (
	"errors"
	"fmt"
	"sort"
)

// RGB stores color components; each should be in [0,1].
type RGB struct {
	R, G, B Real
}

func (c RGB) clamp01() RGB {
	return RGB{clamp(c.R, 0, 1), clamp(c.G, 0, 1), clamp(c.B, 0, 1)}
}

func (c RGB) lerp(o RGB, t Real) RGB {
	return RGB{c.R + (o.R-c.R)*t, c.G + (o.G-c.G)*t, c.B + (o.B-c.B)*t}
}

// PaletteStop is one control point of a gradient, Pos in [0,1].
type PaletteStop struct {
	Pos   Real `json:"pos"`
	Color RGB  `json:"color"`
}

// Palette is a fixed table of PaletteSize colors.
type Palette struct {
	Colors [PaletteSize]RGB
}

var errPaletteStops = errors.New("palette needs at least one stop")

// NewGradientPalette interpolates stops linearly over the table.
func NewGradientPalette(stops ...PaletteStop) (*Palette, error) {
	if len(stops) == 0 {
		return nil, errPaletteStops
	}
	st := append([]PaletteStop(nil), stops...)
	sort.SliceStable(st, func(i, j int) bool { return st[i].Pos < st[j].Pos })
	for _, s := range st {
		if s.Pos < 0 || s.Pos > 1 || !isFinite(s.Pos) {
			return nil, fmt.Errorf("palette stop position %v outside [0,1]", s.Pos)
		}
	}
	p := &Palette{}
	k := 0
	for i := range p.Colors {
		t := Real(i) / (PaletteSize - 1)
		for k < len(st)-1 && t > st[k+1].Pos {
			k++
		}
		switch {
		case t <= st[0].Pos:
			p.Colors[i] = st[0].Color.clamp01()
		case k == len(st)-1:
			p.Colors[i] = st[k].Color.clamp01()
		default:
			a, b := st[k], st[k+1]
			f := Real(0)
			if b.Pos > a.Pos {
				f = (t - a.Pos) / (b.Pos - a.Pos)
			}
			p.Colors[i] = a.Color.lerp(b.Color, f).clamp01()
		}
	}
	return p, nil
}

// DefaultPalette is a black, red, yellow, white ramp.
func DefaultPalette() *Palette {
	p, _ := NewGradientPalette(
		PaletteStop{0, RGB{0, 0, 0}},
		PaletteStop{0.35, RGB{0.8, 0.1, 0.05}},
		PaletteStop{0.7, RGB{1, 0.8, 0.2}},
		PaletteStop{1, RGB{1, 1, 1}},
	)
	return p
}

// Lookup maps a palette coordinate to a color, clamping outside [0,1].
func (p *Palette) Lookup(c Real) RGB {
	if !isFinite(c) {
		c = 0
	}
	idx := int(clamp(c, 0, 1)*(PaletteSize-1) + 0.5)
	return p.Colors[idx]
}

func (p *Palette) Clone() *Palette {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
