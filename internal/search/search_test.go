package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MorseWayne/gift_market/internal/catalog"
	"github.com/MorseWayne/gift_market/internal/domain"
)

func labels(c domain.OptionCatalog) []string {
	out := make([]string, 0, len(c.Options))
	for _, o := range c.Options {
		out = append(out, o.Label)
	}
	return out
}

func TestOptions(t *testing.T) {
	gifts := catalog.MarketProfile().Gift

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "substring", query: "surf", want: []string{"Surfboard"}},
		{name: "case insensitive", query: "  PINK ", want: []string{"Pink Flamingo"}},
		{name: "shared substring", query: "d", want: []string{"Durov Glasses", "REDO", "Surfboard", "Sand Castle", "Coconut Drink", "Snoop Dogg"}},
		{name: "no match", query: "zzz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Options(gifts, tt.query)
			assert.Equal(t, tt.want, labels(got))
			assert.Equal(t, domain.FieldGift, got.Field)
		})
	}
}

func TestOptions_EmptyQueryReturnsFullCatalog(t *testing.T) {
	gifts := catalog.MarketProfile().Gift
	for _, q := range []string{"", "   "} {
		assert.Equal(t, gifts, Options(gifts, q))
	}
}

func TestOptions_DoesNotMutateInput(t *testing.T) {
	gifts := catalog.MarketProfile().Gift
	before := gifts.Clone()
	_ = Options(gifts, "coco")
	full := Options(gifts, "")
	full.Options[0].Label = "changed"
	assert.Equal(t, before, gifts)
}

func TestPicker_Restart(t *testing.T) {
	p := NewPicker(catalog.MarketProfile().Gift)
	full := p.Results()

	p.SetQuery("surf")
	assert.Len(t, p.Results().Options, 1)
	assert.Equal(t, "surf", p.Query())

	p.SetQuery("")
	assert.Equal(t, full, p.Results())

	p.SetQuery("sand")
	p.Reset()
	assert.Equal(t, full, p.Results())
}
