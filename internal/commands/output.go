package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/MorseWayne/gift_market/internal/browse"
	"github.com/MorseWayne/gift_market/internal/catalog"
	"github.com/MorseWayne/gift_market/internal/domain"
)

var (
	bold      = color.New(color.Bold)
	faint     = color.New(color.Faint)
	heading   = color.New(color.Bold, color.Underline)
	improved  = color.New(color.FgHiYellow)
	purchase  = color.New(color.FgGreen)
	sale      = color.New(color.FgRed)
	emptyHint = "Ничего не найдено"
)

func newTable(headers ...any) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	cells := make([]any, len(headers))
	for i, h := range headers {
		cells[i] = bold.Sprint(h)
	}
	tbl.AddRow(cells...)
	return tbl
}

func formatTON(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func printSummary(out io.Writer, scr *browse.Screen) {
	labels := scr.Labels()
	adv := ""
	if scr.HasAdvancedChanges() {
		adv = improved.Sprint(" • advanced")
	}
	fmt.Fprintf(out, "%s  %s | %s | %s%s\n",
		heading.Sprint(scr.Category()), labels.Gift, labels.Type, labels.Sort, adv)
}

func printEntries(out io.Writer, entries []domain.CatalogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, faint.Sprint(emptyHint))
		return
	}
	tbl := newTable("REF", "ID", "LABEL", "PRICE", "QTY", "KIND", "CREATED", "TAGS")
	for _, e := range entries {
		label := e.Label
		if e.Improved {
			label = improved.Sprint(label + " ★")
		}
		tbl.AddRow(e.Ref, "#"+e.ID, label, formatTON(e.PriceUnits), e.Quantity, kindOf(e),
			e.CreatedAt.UTC().Format("2006-01-02 15:04"), strings.Join(e.Tags, ", "))
	}
	fmt.Fprintln(out, tbl)
	fmt.Fprintln(out, faint.Sprintf("%d entries", len(entries)))
}

func kindOf(e domain.CatalogEntry) string {
	switch e.Status {
	case domain.EventStatusPurchase:
		return purchase.Sprint(e.Status)
	case domain.EventStatusSale:
		return sale.Sprint(e.Status)
	}
	return string(e.Kind)
}

func printDetail(out io.Writer, e domain.CatalogEntry) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, heading.Sprintf("%s #%s", e.Label, e.ID))
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(faint.Sprint("Price"), formatTON(e.PriceUnits)+" TON")
	tbl.AddRow(faint.Sprint("Quantity"), e.Quantity)
	if e.TimeLeft != "" {
		tbl.AddRow(faint.Sprint("Time left"), e.TimeLeft)
	}
	if e.Multiplier != "" {
		tbl.AddRow(faint.Sprint("Multiplier"), e.Multiplier)
	}
	fmt.Fprintln(out, tbl)

	if len(e.SubItems) > 0 {
		items := newTable("ITEM", "QTY")
		for _, it := range e.SubItems {
			items.AddRow(it.Name, it.Quantity)
		}
		fmt.Fprintln(out, items)
	}
}

func printOptions(out io.Writer, c domain.OptionCatalog) {
	tbl := newTable("ID", "LABEL", "PRICE", "")
	for _, opt := range c.Options {
		tbl.AddRow(opt.ID, strings.TrimSpace(opt.Emoji+" "+opt.Label), opt.PriceHint, faint.Sprint(opt.Description))
	}
	fmt.Fprintln(out, tbl)
}

func printProfile(out io.Writer, p catalog.Profile) {
	fmt.Fprintln(out, heading.Sprint(p.Name))
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, category := range []domain.Category{domain.CategoryChannels, domain.CategoryGifts} {
		surfaces := make([]string, 0, len(p.Surfaces[category]))
		for _, s := range p.Surfaces[category] {
			surfaces = append(surfaces, string(s))
		}
		if len(surfaces) == 0 {
			surfaces = append(surfaces, faint.Sprint("none"))
		}
		tbl.AddRow(bold.Sprint(category), strings.Join(surfaces, ", "))
	}
	fmt.Fprintln(out, tbl)

	for _, c := range []domain.OptionCatalog{p.Type, p.Sort} {
		fmt.Fprintln(out, heading.Sprint(c.Field))
		printOptions(out, c)
	}
}

func printProfileBalance(out io.Writer, p *domain.Profile) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(faint.Sprint("Balance"), bold.Sprint(formatTON(p.Balance)+" TON"))
	tbl.AddRow(faint.Sprint("Reserved"), formatTON(p.ReservedBalance)+" TON")
	if p.TonAddress != "" {
		tbl.AddRow(faint.Sprint("Address"), p.TonAddress)
	}
	if p.Network != "" {
		tbl.AddRow(faint.Sprint("Network"), p.Network)
	}
	fmt.Fprintln(out, tbl)
}

func printDeposit(out io.Writer, d *domain.DepositResponse) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(faint.Sprint("Deposit"), d.DepositID)
	tbl.AddRow(faint.Sprint("Amount"), formatTON(d.Amount)+" TON")
	tbl.AddRow(faint.Sprint("Comment"), bold.Sprint(d.Code))
	tbl.AddRow(faint.Sprint("Link"), d.TonLink)
	if d.ExpiresAt != "" {
		tbl.AddRow(faint.Sprint("Expires"), d.ExpiresAt)
	}
	fmt.Fprintln(out, tbl)
}

func printTransactions(out io.Writer, txs []domain.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(out, faint.Sprint("No transactions yet"))
		return
	}
	tbl := newTable("ID", "TYPE", "AMOUNT", "STATUS", "CREATED")
	for _, tx := range txs {
		tbl.AddRow(tx.ID, tx.Type, formatTON(tx.Amount), tx.Status, tx.CreatedAt)
	}
	fmt.Fprintln(out, tbl)
}
