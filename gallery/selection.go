package gallery

// SelectionController tracks the single selected file by name, so the
// selection survives re-sorting and re-rendering.
type SelectionController struct {
	selected string
	value    BoundValue
	surface  Surface
}

// NewSelectionController starts from the bound value's current filename.
func NewSelectionController(value BoundValue, surface Surface) *SelectionController {
	c := &SelectionController{value: value, surface: surface}
	if value != nil {
		c.selected = value.Value()
	}
	return c
}

// Select makes filename the only selected entry and writes it to the bound value.
func (c *SelectionController) Select(filename string) {
	if prev := c.selected; prev != "" && prev != filename {
		c.surface.SetSelected(prev, false)
	}
	c.selected = filename
	c.surface.SetSelected(filename, true)

	if c.value == nil {
		return
	}
	c.value.SetValue(filename)
	if cb := c.value.Callback(); cb != nil {
		cb(filename)
	}
}

func (c *SelectionController) Selected() string {
	return c.selected
}

func (c *SelectionController) IsSelected(filename string) bool {
	return filename != "" && filename == c.selected
}
