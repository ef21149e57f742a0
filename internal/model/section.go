package model

import (
	"fmt"
	"strconv"
)

// PriceType distinguishes free sections from paid ones.
type PriceType string

const (
	PriceFree    PriceType = "free"
	PriceOneTime PriceType = "one_time"
)

// Supported currencies for one-time purchases.
const (
	CurrencyEUR = "EUR"
	CurrencyUSD = "USD"
)

// Price is either free or a one-time purchase with an amount and currency.
type Price struct {
	Type     PriceType `json:"type" yaml:"type"`
	Amount   float64   `json:"amount,omitempty" yaml:"amount,omitempty"`
	Currency string    `json:"currency,omitempty" yaml:"currency,omitempty"`
}

// IsFree reports whether the section can be installed without a purchase.
func (p Price) IsFree() bool {
	return p.Type == PriceFree || p.Type == ""
}

// Label renders the price for listings, e.g. "Free" or "19 EUR one-time".
func (p Price) Label() string {
	if p.IsFree() {
		return "Free"
	}
	return fmt.Sprintf("%s %s one-time", strconv.FormatFloat(p.Amount, 'f', -1, 64), p.Currency)
}

// Validate checks the price variant. Only authoring tools call this;
// the catalog loader accepts whatever the descriptor says.
func (p Price) Validate() error {
	switch p.Type {
	case PriceFree:
		return nil
	case PriceOneTime:
		if p.Amount <= 0 {
			return fmt.Errorf("one_time price needs a positive amount, got %v", p.Amount)
		}
		if p.Currency != CurrencyEUR && p.Currency != CurrencyUSD {
			return fmt.Errorf("unsupported currency %q (want EUR or USD)", p.Currency)
		}
		return nil
	default:
		return fmt.Errorf("unknown price type %q", p.Type)
	}
}

// Compatibility lists the themes a section was tested with.
type Compatibility struct {
	Themes []string `json:"themes" yaml:"themes"`
	OS2    bool     `json:"os2" yaml:"os2"` // Online Store 2.0 (JSON templates) support
}

// Files holds the bundle-relative paths of the markup and stylesheet.
type Files struct {
	Liquid string `json:"liquid" yaml:"liquid"`
	CSS    string `json:"css" yaml:"css"`
}

// SectionMetadata is the descriptor (meta.json) of one catalog bundle.
// Timestamps stay ISO-8601 strings; they are compared lexicographically.
type SectionMetadata struct {
	ID            string        `json:"id" yaml:"id"`
	Name          string        `json:"name" yaml:"name"`
	Description   string        `json:"description" yaml:"description"`
	Category      string        `json:"category" yaml:"category"`
	Version       string        `json:"version" yaml:"version"`
	Price         Price         `json:"price" yaml:"price"`
	Tags          []string      `json:"tags" yaml:"tags"`
	Author        string        `json:"author" yaml:"author"`
	PreviewColor  string        `json:"previewColor" yaml:"previewColor"`
	Compatibility Compatibility `json:"compatibility" yaml:"compatibility"`
	Files         Files         `json:"files" yaml:"files"`
	CreatedAt     string        `json:"createdAt" yaml:"createdAt"`
	UpdatedAt     string        `json:"updatedAt" yaml:"updatedAt"`
}

// SectionContent is a section hydrated with the raw text of both content files.
// A missing file is represented by an empty string.
type SectionContent struct {
	SectionMetadata
	LiquidContent string `json:"liquidContent" yaml:"liquidContent"`
	CSSContent    string `json:"cssContent" yaml:"cssContent"`
}
