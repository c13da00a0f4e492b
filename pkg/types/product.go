package types

import (
	"time"

	"github.com/angelmondragon/jewelry-miniapp/pkg/enums"
	"github.com/shopspring/decimal"
)

// ProductImage is one gallery entry; IsMain marks the cover image.
type ProductImage struct {
	ID     int64  `json:"id"`
	Image  string `json:"image"`
	IsMain bool   `json:"is_main"`
}

// Category groups products in the catalog slider.
type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Icon  string `json:"icon,omitempty"`
	Image string `json:"image,omitempty"`
}

// Product is an immutable catalog snapshot. Cart lines and favorites embed it by value.
type Product struct {
	ID              int64               `json:"id"`
	Name            string              `json:"name"`
	Description     string              `json:"description,omitempty"`
	Price           decimal.Decimal     `json:"price"`
	OldPrice        decimal.NullDecimal `json:"old_price"`
	Images          []ProductImage      `json:"images"`
	Category        Category            `json:"category"`
	MetalType       enums.MetalType     `json:"metal_type"`
	Weight          decimal.Decimal     `json:"weight"`
	Size            string              `json:"size,omitempty"`
	Proba           string              `json:"proba,omitempty"`
	InStock         bool                `json:"in_stock"`
	IsFeatured      bool                `json:"is_featured"`
	DiscountPercent int                 `json:"discount_percent,omitempty"`
	CreatedAt       *time.Time          `json:"created_at,omitempty"`
}

// MainImage returns the image flagged as main, falling back to the first one.
func (p Product) MainImage() (ProductImage, bool) {
	for _, img := range p.Images {
		if img.IsMain {
			return img, true
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0], true
	}
	return ProductImage{}, false
}

// HasDiscount reports whether an old price above the current price is present.
func (p Product) HasDiscount() bool {
	return p.OldPrice.Valid && p.OldPrice.Decimal.GreaterThan(p.Price)
}

// Clone copies the slices so a snapshot cannot be mutated through a shared backing array.
func (p Product) Clone() Product {
	out := p
	if p.Images != nil {
		out.Images = append([]ProductImage(nil), p.Images...)
	}
	if p.CreatedAt != nil {
		ts := *p.CreatedAt
		out.CreatedAt = &ts
	}
	return out
}

// Banner is a home-page hero slide.
type Banner struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Emoji    string `json:"emoji"`
	Gradient string `json:"gradient"`
	Link     string `json:"link,omitempty"`
	Image    string `json:"image,omitempty"`
}
