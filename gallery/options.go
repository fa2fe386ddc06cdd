package gallery

import (
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Theme is the static look of an overlay. It is passed at construction
// instead of being installed process wide.
type Theme struct {
	Background      color.Color `validate:"required"`
	Border          color.Color `validate:"required"`
	Selected        color.Color `validate:"required"`
	BadgeBackground color.Color `validate:"required"`
	BadgeText       color.Color `validate:"required"`
	MessageText     color.Color `validate:"required"`

	Gap     float32 `validate:"gte=0"`
	Padding float32 `validate:"gte=0"`
	// MinColumnWidth is the floor for the zoomed column width.
	MinColumnWidth float64 `validate:"gt=0"`
	// UnselectedTranslucency dims items that are not selected.
	UnselectedTranslucency float64 `validate:"gte=0,lte=1"`

	NoDirectoryText string `validate:"required"`
	NoProviderText  string `validate:"required"`
	ErrorText       string `validate:"required"`
}

// DefaultTheme is a dark panel with a green selection border.
func DefaultTheme() Theme {
	return Theme{
		Background:             color.NRGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xff},
		Border:                 color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff},
		Selected:               color.NRGBA{R: 0x4c, G: 0xaf, B: 0x50, A: 0xff},
		BadgeBackground:        color.NRGBA{A: 0xb3},
		BadgeText:              color.NRGBA{R: 0xff, G: 0xca, B: 0x28, A: 0xff},
		MessageText:            color.NRGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff},
		Gap:                    4,
		Padding:                4,
		MinColumnWidth:         20,
		UnselectedTranslucency: 0.2,
		NoDirectoryText:        "No directory selected",
		NoProviderText:         "Connect Config Node",
		ErrorText:              "Error loading files",
	}
}

// Options configures one overlay.
type Options struct {
	Variant Variant `validate:"gte=0,lte=1"`
	Theme   Theme
	// ConfigSlot is the input slot a compact gallery follows.
	ConfigSlot string `validate:"required"`

	BatchSize      int     `validate:"gte=1"`
	SentinelMargin float64 `validate:"gte=0"`
	// FullImages requests unscaled images instead of thumbnails.
	FullImages bool

	TickInterval     time.Duration `validate:"gt=0"`
	SizePollInterval time.Duration `validate:"gt=0"`
	// InitialRefreshDelay is how long after Start the first listing is fetched.
	InitialRefreshDelay time.Duration `validate:"gte=0"`

	Scheduler Scheduler `validate:"-"`
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Variant:             VariantFull,
		Theme:               DefaultTheme(),
		ConfigSlot:          DefaultConfigSlot,
		BatchSize:           defaultBatchSize,
		SentinelMargin:      defaultSentinelGap,
		TickInterval:        16 * time.Millisecond,
		SizePollInterval:    time.Second,
		InitialRefreshDelay: 100 * time.Millisecond,
		Scheduler:           immediate,
	}
}

func WithVariant(v Variant) Option {
	return func(o *Options) { o.Variant = v }
}

func WithTheme(t Theme) Option {
	return func(o *Options) { o.Theme = t }
}

func WithConfigSlot(slot string) Option {
	return func(o *Options) { o.ConfigSlot = slot }
}

func WithBatchSize(n int) Option {
	return func(o *Options) { o.BatchSize = n }
}

func WithSentinelMargin(px float64) Option {
	return func(o *Options) { o.SentinelMargin = px }
}

func WithFullImages() Option {
	return func(o *Options) { o.FullImages = true }
}

func WithTickInterval(d time.Duration) Option {
	return func(o *Options) { o.TickInterval = d }
}

func WithSizePollInterval(d time.Duration) Option {
	return func(o *Options) { o.SizePollInterval = d }
}

func WithInitialRefreshDelay(d time.Duration) Option {
	return func(o *Options) { o.InitialRefreshDelay = d }
}

// WithScheduler sets how work from background goroutines reaches the UI
// goroutine, fyne.Do for a Fyne surface.
func WithScheduler(s Scheduler) Option {
	return func(o *Options) {
		if s != nil {
			o.Scheduler = s
		}
	}
}

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

func structValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New(validator.WithRequiredStructEnabled())
	})
	return validatorInst
}

func (o Options) validate() error {
	if err := structValidator().Struct(o); err != nil {
		return fmt.Errorf("invalid gallery options: %w", err)
	}
	return nil
}
