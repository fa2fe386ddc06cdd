package gallery

import "math"

// Positioner writes overlay geometry and display mode to the surface,
// skipping writes that would not change anything.
type Positioner struct {
	surface  Surface
	minWidth float64

	// set records which fields were written to the surface at least once.
	visibleSet, rectSet, modeSet, columnSet bool

	visible bool
	rect    Rect
	mode    DisplayMode
	column  float64
}

func NewPositioner(surface Surface, minColumnWidth float64) *Positioner {
	return &Positioner{surface: surface, minWidth: minColumnWidth}
}

// Apply shows the surface at rect in mode, or hides it.
func (p *Positioner) Apply(rect Rect, visible bool, mode DisplayMode, columnWidth float64) {
	if !visible {
		if !p.visibleSet || p.visible {
			p.surface.SetVisible(false)
		}
		p.visibleSet = true
		p.visible = false
		return
	}

	rect.Width = math.Max(0, rect.Width)
	rect.Height = math.Max(0, rect.Height)

	if !p.modeSet || p.mode != mode {
		p.surface.SetMode(mode)
		p.mode = mode
		p.modeSet = true
	}
	if !p.rectSet || p.rect != rect {
		p.surface.SetRect(rect)
		p.rect = rect
		p.rectSet = true
	}
	if mode == ModeGrid {
		columnWidth = math.Max(p.minWidth, columnWidth)
		if !p.columnSet || p.column != columnWidth {
			p.surface.SetColumnWidth(columnWidth)
			p.column = columnWidth
			p.columnSet = true
		}
	}
	if !p.visibleSet || !p.visible {
		p.surface.SetVisible(true)
	}
	p.visibleSet = true
	p.visible = true
}

// Hide hides the surface if it is shown.
func (p *Positioner) Hide() {
	p.Apply(Rect{}, false, p.mode, 0)
}

func (p *Positioner) Visible() bool {
	return p.visible
}
