package catalog

import (
	"time"

	"github.com/MorseWayne/gift_market/internal/domain"
)

const defaultMediaRef = "coconut.svg"

// MarketSeed 返回市场页面的内置挂单快照
func MarketSeed() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		listing("18459", "Coconut Drink x26", "2023-11-01T11:30:00Z", 7.3, domain.ListingKindInstant, false, "8ч", "x26",
			item("Coconut Drink", 26)),
		listing("18458", "Surfboard Pack", "2023-11-01T10:05:00Z", 9.5, domain.ListingKindInstant, false, "8ч", "x2",
			item("Surfboard", 4), item("Pink Flamingo", 6)),
		listing("18457", "Shadow Buddy Pack", "2023-10-31T19:15:00Z", 11.2, domain.ListingKindDelayed, true, "5ч", "x3",
			item("Shadow Buddy", 6), item("Torch", 5), item("Pink Flamingo", 4)),
		listing("18456", "Sunset Surf", "2023-10-30T08:45:00Z", 3.4, domain.ListingKindDelayed, false, "5ч", "x4",
			item("Sunset Surf", 4), item("Coconut Drink", 3), item("Pink Flamingo", 2), item("Torch", 1)),
	}
}

// ActivitySeed 返回活动页面的内置成交记录，记录 ID 可能重复
func ActivitySeed() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		activity("18438", "Coconut Drink", domain.CategoryGifts, "2023-11-01T17:25:00", 7.5, 18, domain.EventStatusPurchase, "coconut-drink"),
		activity("18420", "Coconut Drink", domain.CategoryGifts, "2023-11-01T17:00:00", 9.5, 11, domain.EventStatusPurchase, "coconut-drink"),
		activity("18419", "Surfboard", domain.CategoryChannels, "2023-11-01T16:33:00", 39, 6, domain.EventStatusPurchase, "surfboard"),
		activity("18408", "Coconut Drink", domain.CategoryGifts, "2023-11-01T16:19:00", 2.7, 22, domain.EventStatusPurchase, "coconut-drink"),
		activity("18424", "Surfboard", domain.CategoryChannels, "2023-11-01T15:39:00", 48, 4, domain.EventStatusPurchase, "surfboard"),
		activity("18425", "Coconut Drink", domain.CategoryGifts, "2023-11-01T17:30:00", 2.5, 25, domain.EventStatusSale, "coconut-drink"),
		activity("18426", "Surfboard", domain.CategoryChannels, "2023-11-01T17:18:00", 40.01, 10, domain.EventStatusPurchase, "surfboard"),
		activity("18427", "Pink Flamingo", domain.CategoryGifts, "2023-11-01T17:06:00", 2.37, 9, domain.EventStatusPurchase, "pink-flamingo"),
		activity("18428", "Sand Castle", domain.CategoryGifts, "2023-11-01T16:54:00", 4.6, 20, domain.EventStatusSale, "sand-castle"),
		activity("18429", "Shadow Buddy", domain.CategoryChannels, "2023-11-01T16:42:00", 14.07, 3, domain.EventStatusPurchase, "shadow-buddy"),
		activity("18430", "Coconut Drink", domain.CategoryGifts, "2023-11-01T16:30:00", 2.78, 26, domain.EventStatusPurchase, "coconut-drink"),
		activity("18431", "Surfboard", domain.CategoryChannels, "2023-11-01T16:18:00", 39.31, 7, domain.EventStatusSale, "surfboard"),
		activity("18432", "Pink Flamingo", domain.CategoryGifts, "2023-11-01T16:06:00", 3.22, 17, domain.EventStatusPurchase, "pink-flamingo"),
		activity("18433", "Sand Castle", domain.CategoryGifts, "2023-11-01T15:54:00", 5.97, 5, domain.EventStatusPurchase, "sand-castle"),
		activity("18434", "Shadow Buddy", domain.CategoryChannels, "2023-11-01T15:42:00", 14.61, 4, domain.EventStatusSale, "shadow-buddy"),
		activity("18431", "Torch", domain.CategoryGifts, "2023-11-01T17:23:00", 1.92, 12, domain.EventStatusPurchase, "torch"),
		activity("18432", "Sunset Surf", domain.CategoryChannels, "2023-11-01T17:16:00", 6.45, 18, domain.EventStatusPurchase, "sunset-surf"),
		activity("18433", "Shadow Buddy", domain.CategoryChannels, "2023-11-01T17:09:00", 13.6, 5, domain.EventStatusPurchase, "shadow-buddy"),
		activity("18434", "Pink Flamingo", domain.CategoryGifts, "2023-11-01T17:02:00", 3.05, 21, domain.EventStatusSale, "pink-flamingo"),
		activity("18435", "Sand Castle", domain.CategoryGifts, "2023-11-01T16:55:00", 4.88, 16, domain.EventStatusPurchase, "sand-castle"),
		activity("18436", "Surfboard", domain.CategoryChannels, "2023-11-01T16:48:00", 38.4, 8, domain.EventStatusPurchase, "surfboard"),
		activity("18437", "Coconut Drink", domain.CategoryGifts, "2023-11-01T16:41:00", 2.15, 27, domain.EventStatusPurchase, "coconut-drink"),
		activity("18438", "Torch", domain.CategoryGifts, "2023-11-01T16:34:00", 1.85, 14, domain.EventStatusSale, "torch"),
		activity("18439", "Sunset Surf", domain.CategoryChannels, "2023-11-01T16:27:00", 7.1, 11, domain.EventStatusPurchase, "sunset-surf"),
		activity("18440", "Pink Flamingo", domain.CategoryGifts, "2023-11-01T16:20:00", 3.32, 19, domain.EventStatusPurchase, "pink-flamingo"),
	}
}

func item(name string, qty int) domain.SubItem {
	return domain.SubItem{Name: name, Quantity: qty, MediaRef: defaultMediaRef}
}

// listing 构造组合挂单，标签取自子物品名称，数量为子物品数量之和
func listing(id, label, createdAt string, price float64, kind domain.ListingKind, improved bool, timeLeft, multiplier string, items ...domain.SubItem) domain.CatalogEntry {
	tags := make([]string, 0, len(items))
	total := 0
	for _, it := range items {
		tags = append(tags, it.Name)
		total += it.Quantity
	}
	return domain.CatalogEntry{
		ID:         id,
		Category:   domain.CategoryChannels,
		Label:      label,
		CreatedAt:  mustParseTime(time.RFC3339, createdAt),
		PriceUnits: price,
		Quantity:   total,
		Tags:       tags,
		Improved:   improved,
		SubItems:   items,
		Kind:       kind,
		TimeLeft:   timeLeft,
		Multiplier: multiplier,
	}
}

// activity 构造一条成交记录，成交量作为数量，礼物 ID 作为唯一标签
func activity(id, label string, category domain.Category, at string, price float64, volume int, status domain.EventStatus, giftID string) domain.CatalogEntry {
	return domain.CatalogEntry{
		ID:         id,
		Category:   category,
		Label:      label,
		CreatedAt:  mustParseTime("2006-01-02T15:04:05", at),
		PriceUnits: price,
		Quantity:   volume,
		Tags:       []string{giftID},
		Status:     status,
	}
}

func mustParseTime(layout, value string) time.Time {
	t, err := time.Parse(layout, value)
	if err != nil {
		panic("catalog: invalid seed timestamp " + value)
	}
	return t.UTC()
}
