// Package cli implements the odyssey-ops command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/odyssey-erp/odyssey-comercial/internal/pricing"
)

// QuoteOptions defines the flags of the quote command.
type QuoteOptions struct {
	Gross         float64
	Promo         float64
	Discounts     []string
	Locale        string
	ClampNegative bool
	JSONOutput    bool
	Stdout        io.Writer
	Stderr        io.Writer
}

// QuoteSummary is the JSON form of a quote.
type QuoteSummary struct {
	BasePrice    float64  `json:"base_price"`
	NetPrice     float64  `json:"net_price"`
	NetDisplay   string   `json:"net_display"`
	PromoApplied bool     `json:"promo_applied"`
	Applied      []string `json:"applied"`
	Skipped      []string `json:"skipped"`
}

// QuoteCommand prices one line offline and prints the outcome. It returns
// the process exit code.
func QuoteCommand(opts QuoteOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Gross < 0 {
		_, _ = fmt.Fprintln(opts.Stderr, "quote: --gross must not be negative")
		return 1
	}
	if len(opts.Discounts) > pricing.MaxDiscountSlots {
		_, _ = fmt.Fprintf(opts.Stderr, "quote: at most %d discounts are supported\n", pricing.MaxDiscountSlots)
		return 1
	}

	var promo *float64
	if opts.Promo != 0 {
		promo = &opts.Promo
	}
	calc := pricing.Calculator{ClampNegative: opts.ClampNegative}
	net := calc.NetPrice(opts.Gross, promo, opts.Discounts)
	base := pricing.BasePrice(opts.Gross, promo)

	summary := QuoteSummary{
		BasePrice:    base,
		NetPrice:     net,
		NetDisplay:   pricing.NewFormatter(opts.Locale).Format(net),
		PromoApplied: base != opts.Gross,
		Applied:      []string{},
		Skipped:      []string{},
	}
	for _, raw := range opts.Discounts {
		if _, ok := pricing.ParseDiscount(raw); ok {
			summary.Applied = append(summary.Applied, raw)
		} else {
			summary.Skipped = append(summary.Skipped, raw)
		}
	}

	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "quote: encode json: %v\n", err)
			return 1
		}
		return 0
	}
	renderQuoteHuman(opts.Stdout, summary)
	return 0
}

func renderQuoteHuman(out io.Writer, s QuoteSummary) {
	source := "gross"
	if s.PromoApplied {
		source = "promo"
	}
	_, _ = fmt.Fprintf(out, "base:     %v (%s)\n", s.BasePrice, source)
	if len(s.Applied) > 0 {
		_, _ = fmt.Fprintf(out, "applied:  %s\n", strings.Join(s.Applied, " -> "))
	}
	if len(s.Skipped) > 0 {
		_, _ = fmt.Fprintf(out, "skipped:  %q\n", s.Skipped)
	}
	_, _ = fmt.Fprintf(out, "net:      %s\n", s.NetDisplay)
}
