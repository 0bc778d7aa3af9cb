package flames

import "fmt"

// Layer is an independent function system with its own palette.
type Layer struct {
	Name        string
	Visible     bool
	XForms      []*XForm
	FinalXForms []*XForm
	Palette     *Palette
}

func NewLayer() *Layer {
	return &Layer{Visible: true, Palette: DefaultPalette()}
}

func (l *Layer) AddXForm(xf *XForm)      { l.XForms = append(l.XForms, xf) }
func (l *Layer) AddFinalXForm(xf *XForm) { l.FinalXForms = append(l.FinalXForms, xf) }

func (l *Layer) Clone() (*Layer, error) {
	c := &Layer{Name: l.Name, Visible: l.Visible, Palette: l.Palette.Clone()}
	for i, xf := range l.XForms {
		n, err := xf.Clone()
		if err != nil {
			return nil, fmt.Errorf("layer %q xform %d: %w", l.Name, i, err)
		}
		c.XForms = append(c.XForms, n)
	}
	for i, xf := range l.FinalXForms {
		n, err := xf.Clone()
		if err != nil {
			return nil, fmt.Errorf("layer %q final xform %d: %w", l.Name, i, err)
		}
		c.FinalXForms = append(c.FinalXForms, n)
	}
	return c, nil
}

// checkElements rejects nil entries, which Clone cannot copy.
func (l *Layer) checkElements() error {
	for _, list := range [][]*XForm{l.XForms, l.FinalXForms} {
		for i, xf := range list {
			if xf == nil {
				return fmt.Errorf("layer %q: %w: xform %d", l.Name, ErrNilElement, i)
			}
			for j, v := range xf.Variations {
				if v == nil || v.Func == nil {
					return fmt.Errorf("layer %q xform %d: %w: variation %d", l.Name, i, ErrNilElement, j)
				}
			}
		}
	}
	return nil
}

func (l *Layer) validate() error {
	if len(l.XForms) == 0 {
		return fmt.Errorf("layer %q: %w", l.Name, ErrNoXForms)
	}
	for _, xf := range l.XForms {
		if xf.Weight > 0 && isFinite(xf.Weight) {
			return nil
		}
	}
	return fmt.Errorf("layer %q: %w", l.Name, ErrZeroWeights)
}
