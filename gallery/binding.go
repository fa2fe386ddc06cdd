package gallery

import (
	"fyne.io/fyne/v2/data/binding"
	"github.com/sirupsen/logrus"
)

// BindingValue adapts Fyne data bindings to BoundValue, so widgets bound to
// Selected and Options follow the gallery.
type BindingValue struct {
	Selected binding.String
	Options  binding.StringList
	// OnSelected is called after every selection made in the gallery.
	OnSelected func(filename string)
}

func NewBindingValue() *BindingValue {
	return &BindingValue{
		Selected: binding.NewString(),
		Options:  binding.NewStringList(),
	}
}

func (b *BindingValue) Value() string {
	v, err := b.Selected.Get()
	if err != nil {
		logrus.WithError(err).Debug("reading bound selection failed")
		return ""
	}
	return v
}

func (b *BindingValue) SetValue(filename string) {
	if err := b.Selected.Set(filename); err != nil {
		logrus.WithError(err).Warn("writing bound selection failed")
	}
}

func (b *BindingValue) Callback() func(string) {
	return b.OnSelected
}

func (b *BindingValue) SetOptions(values []string) {
	if err := b.Options.Set(values); err != nil {
		logrus.WithError(err).Warn("writing bound options failed")
	}
}
