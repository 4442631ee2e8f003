package catalog

import "github.com/MorseWayne/gift_market/internal/domain"

// giftOptions 为市场与活动页面共用的礼物选项目录
func giftOptions() domain.OptionCatalog {
	return domain.OptionCatalog{
		Field: domain.FieldGift,
		Options: []domain.FilterOption{
			{ID: domain.OptionAll, Label: "Все подарки", Description: "Показать все позиции", Emoji: "✨"},
			{ID: "durov-glasses", Label: "Durov Glasses", Description: "35 каналов в продаже", PriceHint: "350", Emoji: "🕶️"},
			{ID: "redo", Label: "REDO", Description: "82 канала в продаже", PriceHint: "140", Emoji: "🧸"},
			{ID: "surfboard", Label: "Surfboard", Description: "131 канал в продаже", PriceHint: "39", Emoji: "🏄"},
			{ID: "sand-castle", Label: "Sand Castle", Description: "157 каналов в продаже", PriceHint: "4.5", Emoji: "🏖️"},
			{ID: "pink-flamingo", Label: "Pink Flamingo", Description: "211 каналов в продаже", PriceHint: "3.16", Emoji: "🦩"},
			{ID: "coconut-drink", Label: "Coconut Drink", Description: "236 каналов в продаже", PriceHint: "1.64", Emoji: "🥥"},
			{ID: "snoop-dogg", Label: "Snoop Dogg", Description: "4 канала в продаже", PriceHint: "4.59", Emoji: "🐶"},
		},
	}
}

func typeOptions() domain.OptionCatalog {
	return domain.OptionCatalog{
		Field: domain.FieldType,
		Options: []domain.FilterOption{
			{ID: domain.OptionAll, Label: "Все"},
			{ID: domain.TypeInstant, Label: "Мгновенная"},
			{ID: domain.TypeDelayed, Label: "С ожиданием"},
		},
	}
}

// typeAllOnly 用于不提供类型界面的页面，只允许哨兵值
func typeAllOnly() domain.OptionCatalog {
	return domain.OptionCatalog{
		Field:   domain.FieldType,
		Options: []domain.FilterOption{{ID: domain.OptionAll, Label: "Все"}},
	}
}

func marketSortOptions() domain.OptionCatalog {
	return domain.OptionCatalog{
		Field: domain.FieldSort,
		Options: []domain.FilterOption{
			{ID: domain.SortDateNew, Label: "Дата: Новые сначала"},
			{ID: domain.SortDateOld, Label: "Дата: Старые сначала"},
			{ID: domain.SortPriceAsc, Label: "Цена: По возрастанию"},
			{ID: domain.SortPriceDesc, Label: "Цена: По убыванию"},
			{ID: domain.SortUnitPrice, Label: "Цена за единицу"},
			{ID: domain.SortAmountAsc, Label: "Количество: По возрастанию"},
			{ID: domain.SortAmountDesc, Label: "Количество: По убыванию"},
		},
	}
}

func activitySortOptions() domain.OptionCatalog {
	return domain.OptionCatalog{
		Field: domain.FieldSort,
		Options: []domain.FilterOption{
			{ID: domain.SortDateNew, Label: "Дата: Новые сначала"},
			{ID: domain.SortDateOld, Label: "Дата: Старые сначала"},
			{ID: domain.SortPriceAsc, Label: "Цена: По возрастанию"},
			{ID: domain.SortPriceDesc, Label: "Цена: По убыванию"},
			{ID: domain.SortVolumeAsc, Label: "Количество: По возрастанию"},
			{ID: domain.SortVolumeDesc, Label: "Количество: По убыванию"},
		},
	}
}
