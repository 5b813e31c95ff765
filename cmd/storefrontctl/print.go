package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/niksmo/storefront/internal/core/domain"
)

type printer struct {
	w       io.Writer
	heading *color.Color
	title   *color.Color
	price   *color.Color
	muted   *color.Color
	alert   *color.Color
}

func newPrinter(w io.Writer) printer {
	return printer{
		w:       w,
		heading: color.New(color.FgCyan, color.Bold),
		title:   color.New(color.Bold),
		price:   color.New(color.FgGreen),
		muted:   color.New(color.FgHiBlack),
		alert:   color.New(color.FgYellow),
	}
}

func (p printer) headingf(format string, a ...any) {
	p.heading.Fprintf(p.w, format+"\n", a...)
}

func (p printer) mutedf(format string, a ...any) {
	p.muted.Fprintf(p.w, format+"\n", a...)
}

func (p printer) product(i int, v domain.Product) {
	fmt.Fprintf(p.w, "%2d. ", i+1)
	p.title.Fprint(p.w, v.Title)
	p.muted.Fprintf(p.w, "  [%s]\n", v.ID)

	fmt.Fprintf(p.w, "    %s  ", v.Category)
	if v.FinalPrice != v.Price && v.Price != "" {
		p.muted.Fprintf(p.w, "%s ", v.Price)
	}
	p.price.Fprint(p.w, v.FinalPrice)
	if v.Rated() {
		fmt.Fprintf(p.w, "  %.1f★ (%d)", v.Rating, v.ReviewCount)
	}
	if v.OnSale() {
		p.alert.Fprint(p.w, "  on sale")
	}
	fmt.Fprintln(p.w)
}

func (p printer) products(ps []domain.Product) {
	if len(ps) == 0 {
		p.mutedf("no products found")
		return
	}
	for i, v := range ps {
		p.product(i, v)
	}
}

func (p printer) buckets(b domain.Buckets) {
	if b.Empty() {
		p.mutedf("no recommendations")
		return
	}
	p.bucket("Hidden Gems", b.HiddenGems)
	p.bucket("Value Vault", b.ValueVault)
	p.bucket("Trending Now", b.TrendingNow)
}

func (p printer) bucket(name string, ps []domain.Product) {
	p.headingf("%s", name)
	p.products(ps)
	fmt.Fprintln(p.w)
}

func (p printer) reply(r domain.Reply) {
	p.heading.Fprint(p.w, "assistant: ")
	fmt.Fprintln(p.w, r.Text)
	if len(r.Products) != 0 {
		p.products(r.Products)
	}
	if r.Buckets != nil {
		p.buckets(*r.Buckets)
	}
}

func (p printer) categories(cs []domain.CategoryCount) {
	for _, c := range cs {
		fmt.Fprintf(p.w, "%-16s ", c.Name)
		p.muted.Fprintf(p.w, "%d\n", c.Count)
	}
}

func (p printer) list(items []string) {
	if len(items) == 0 {
		p.mutedf("empty")
		return
	}
	fmt.Fprintln(p.w, strings.Join(items, "\n"))
}

func (p printer) searchEvent(ev domain.SearchEvent) {
	p.muted.Fprintf(p.w, "%s ", ev.At.Format("15:04:05"))
	p.title.Fprintf(p.w, "%q", ev.Query)
	fmt.Fprintf(p.w, " %s results=%d", ev.Category, ev.Results)
	if ev.SessionID != "" {
		p.muted.Fprintf(p.w, " session=%s", ev.SessionID)
	}
	fmt.Fprintln(p.w)
}
