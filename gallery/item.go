package gallery

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const badgeTextSize = 10

type galleryItem struct {
	widget.BaseWidget
	filename string
	onTap    func()

	theme    Theme
	selected bool

	thumbnail *canvas.Image
	border    *canvas.Rectangle
	badgeBg   *canvas.Rectangle
	badge     *canvas.Text
}

func newGalleryItem(it Item, th Theme) *galleryItem {
	i := &galleryItem{
		filename:  it.Filename,
		onTap:     it.OnTap,
		theme:     th,
		thumbnail: canvas.NewImageFromImage(nil),
		border:    canvas.NewRectangle(color.Transparent),
		badgeBg:   canvas.NewRectangle(th.BadgeBackground),
		badge:     canvas.NewText(it.Badge, th.BadgeText),
	}
	i.thumbnail.FillMode = canvas.ImageFillContain
	i.thumbnail.ScaleMode = canvas.ImageScaleFastest
	i.border.StrokeWidth = 2
	i.border.CornerRadius = 2
	i.badgeBg.CornerRadius = 2
	i.badge.TextSize = badgeTextSize
	i.badge.TextStyle.Bold = true
	if it.Badge == "" {
		i.badge.Hide()
		i.badgeBg.Hide()
	}
	i.applySelected(it.Selected)
	i.ExtendBaseWidget(i)
	return i
}

func (i *galleryItem) CreateRenderer() fyne.WidgetRenderer {
	return &galleryItemRenderer{item: i}
}

func (i *galleryItem) setImage(img image.Image) {
	i.thumbnail.Image = img
	i.thumbnail.Refresh()
}

func (i *galleryItem) setSelected(selected bool) {
	if i.selected == selected {
		return
	}
	i.applySelected(selected)
	i.Refresh()
}

func (i *galleryItem) applySelected(selected bool) {
	i.selected = selected
	if selected {
		i.border.StrokeColor = i.theme.Selected
		i.thumbnail.Translucency = 0
	} else {
		i.border.StrokeColor = color.Transparent
		i.thumbnail.Translucency = i.theme.UnselectedTranslucency
	}
}

func (i *galleryItem) Tapped(*fyne.PointEvent) {
	if i.onTap != nil {
		i.onTap()
	}
}

type galleryItemRenderer struct {
	item *galleryItem
}

func (r *galleryItemRenderer) Layout(size fyne.Size) {
	r.item.border.Resize(size)

	inset := r.item.border.StrokeWidth
	r.item.thumbnail.Move(fyne.NewPos(inset, inset))
	r.item.thumbnail.Resize(fyne.NewSize(size.Width-2*inset, size.Height-2*inset))

	if !r.item.badge.Visible() {
		return
	}
	textSize := r.item.badge.MinSize()
	pad := r.item.theme.Padding / 2
	bgSize := fyne.NewSize(textSize.Width+2*pad, textSize.Height)
	bgPos := fyne.NewPos(size.Width-bgSize.Width-inset-pad, size.Height-bgSize.Height-inset-pad)
	r.item.badgeBg.Move(bgPos)
	r.item.badgeBg.Resize(bgSize)
	r.item.badge.Move(bgPos.AddXY(pad, 0))
	r.item.badge.Resize(textSize)
}

func (r *galleryItemRenderer) MinSize() fyne.Size {
	return fyne.NewSquareSize(2 * r.item.border.StrokeWidth)
}

func (r *galleryItemRenderer) Refresh() {
	r.item.border.Refresh()
	r.item.thumbnail.Refresh()
	r.item.badgeBg.Refresh()
	r.item.badge.Refresh()
}

func (r *galleryItemRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.item.thumbnail, r.item.border, r.item.badgeBg, r.item.badge}
}

func (r *galleryItemRenderer) Destroy() {}
