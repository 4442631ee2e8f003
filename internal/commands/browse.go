package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MorseWayne/gift_market/internal/browse"
	"github.com/MorseWayne/gift_market/internal/catalog"
	"github.com/MorseWayne/gift_market/internal/domain"
)

// BrowseOptions 浏览命令的过滤参数
type BrowseOptions struct {
	Screen   string
	Remote   bool
	Category string
	Gift     string
	Type     string
	Sort     string
	PriceMin float64
	PriceMax float64
	QtyMin   float64
	QtyMax   float64
	Exact    bool
	Improved bool
	Select   int
}

func addBrowse(topLevel *cobra.Command, o *rootOptions) {
	bo := &BrowseOptions{}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "List catalog entries with filters and sorting applied",
		Example: `
market browse
market browse --gift surfboard --sort price-asc
market browse --type delayed --price-min 5 --qty-max 20 --improved
market browse --screen activity --sort volume-desc --select 3
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := o.loadStore(cmd.Context(), bo.Screen, bo.Remote)
			if err != nil {
				return err
			}
			scr := browse.NewScreen(store, o.logger)
			if err := bo.apply(cmd, scr); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSummary(out, scr)
			printEntries(out, scr.Projection())

			if bo.Select >= 0 {
				entry, err := scr.Select(bo.Select)
				if err != nil {
					return err
				}
				printDetail(out, entry)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bo.Screen, "screen", catalog.ProfileMarket, "Screen to browse: market or activity.")
	cmd.Flags().BoolVar(&bo.Remote, "remote", false, "Load the catalog from the market API instead of the built-in data.")
	cmd.Flags().StringVarP(&bo.Category, "category", "c", "", "Category: channels or gifts (default depends on screen).")
	cmd.Flags().StringVarP(&bo.Gift, "gift", "g", "", "Gift id or name.")
	cmd.Flags().StringVarP(&bo.Type, "type", "t", "", "Listing type: all, instant or delayed.")
	cmd.Flags().StringVarP(&bo.Sort, "sort", "s", "", "Sort key, see 'market options'.")
	cmd.Flags().Float64Var(&bo.PriceMin, "price-min", 0, "Lowest price in TON.")
	cmd.Flags().Float64Var(&bo.PriceMax, "price-max", 0, "Highest price in TON.")
	cmd.Flags().Float64Var(&bo.QtyMin, "qty-min", 0, "Lowest quantity.")
	cmd.Flags().Float64Var(&bo.QtyMax, "qty-max", 0, "Highest quantity.")
	cmd.Flags().BoolVar(&bo.Exact, "exact", false, "Only entries made of the selected gift alone.")
	cmd.Flags().BoolVar(&bo.Improved, "improved", false, "Include improved entries.")
	cmd.Flags().IntVar(&bo.Select, "select", -1, "Show details for the entry with this ref.")

	topLevel.AddCommand(cmd)
}

// loadStore 返回内置样例快照，remote 时从市场接口获取
func (o *rootOptions) loadStore(ctx context.Context, screen string, remote bool) (*catalog.Store, error) {
	profile, err := catalog.ProfileByName(screen)
	if err != nil {
		return nil, err
	}
	if !remote {
		return catalog.NewSeedStore(profile)
	}
	snap, err := o.client.FetchCatalog(ctx, profile.Name)
	if err != nil {
		return nil, userError(err, "failed to load catalog")
	}
	return catalog.NewStore(snap.Entries, profile)
}

// apply 按界面依次打开、修改并提交过滤条件
func (bo *BrowseOptions) apply(cmd *cobra.Command, scr *browse.Screen) error {
	if bo.Category != "" {
		category, err := domain.ParseCategory(bo.Category)
		if err != nil {
			return err
		}
		if err := scr.SwitchCategory(category); err != nil {
			return err
		}
	}

	gift := bo.Gift
	if gift != "" && gift != domain.OptionAll {
		gift = domain.NormalizeGiftID(gift)
	}
	for _, basic := range []struct {
		surface domain.Surface
		value   string
	}{
		{domain.SurfaceGift, gift},
		{domain.SurfaceType, bo.Type},
		{domain.SurfaceSort, bo.Sort},
	} {
		if basic.value == "" {
			continue
		}
		if err := scr.Open(basic.surface); err != nil {
			return err
		}
		if err := scr.Update(basic.surface, basic.surface.Field(), basic.value); err != nil {
			scr.Cancel()
			return err
		}
		if _, err := scr.Apply(); err != nil {
			return err
		}
	}

	flags := cmd.Flags()
	if !flags.Changed("price-min") && !flags.Changed("price-max") &&
		!flags.Changed("qty-min") && !flags.Changed("qty-max") &&
		!flags.Changed("exact") && !flags.Changed("improved") {
		return nil
	}
	if err := scr.Open(domain.SurfaceAdvanced); err != nil {
		return err
	}
	_, adv := scr.Draft()
	price, qty := adv.PriceRange, adv.QuantityRange
	if flags.Changed("price-min") {
		price.Min = bo.PriceMin
	}
	if flags.Changed("price-max") {
		price.Max = bo.PriceMax
	}
	if flags.Changed("qty-min") {
		qty.Min = bo.QtyMin
	}
	if flags.Changed("qty-max") {
		qty.Max = bo.QtyMax
	}
	steps := []func() error{
		func() error { return scr.UpdateRange(domain.SurfaceAdvanced, domain.FieldPriceRange, price.Min, price.Max) },
		func() error { return scr.UpdateRange(domain.SurfaceAdvanced, domain.FieldQuantityRange, qty.Min, qty.Max) },
	}
	if flags.Changed("exact") {
		steps = append(steps, func() error { return scr.SetFlag(domain.SurfaceAdvanced, domain.FieldExactGiftOnly, bo.Exact) })
	}
	if flags.Changed("improved") {
		steps = append(steps, func() error { return scr.SetFlag(domain.SurfaceAdvanced, domain.FieldShowImproved, bo.Improved) })
	}
	for _, step := range steps {
		if err := step(); err != nil {
			scr.Cancel()
			return err
		}
	}
	_, err := scr.Apply()
	return err
}

func addGifts(topLevel *cobra.Command, o *rootOptions) {
	var screen string

	cmd := &cobra.Command{
		Use:   "gifts [query]",
		Short: "Search the gift option catalog by label",
		Example: `
market gifts
market gifts flam
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := o.loadStore(cmd.Context(), screen, false)
			if err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			results := browse.NewScreen(store, o.logger).SearchGifts(query)
			if len(results.Options) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), faint.Sprint(emptyHint))
				return nil
			}
			printOptions(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().StringVar(&screen, "screen", catalog.ProfileMarket, "Screen whose gift catalog to search.")

	topLevel.AddCommand(cmd)
}

func addOptions(topLevel *cobra.Command, o *rootOptions) {
	var (
		screen string
		remote bool
	)

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show the filter surfaces and option catalogs of a screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := catalog.ProfileByName(screen)
			if err != nil {
				return err
			}
			if remote {
				fetched, err := o.client.FetchOptions(cmd.Context(), profile.Name)
				if err != nil {
					return userError(err, "failed to load options")
				}
				profile = *fetched
			}
			printProfile(cmd.OutOrStdout(), profile)
			return nil
		},
	}
	cmd.Flags().StringVar(&screen, "screen", catalog.ProfileMarket, "Screen: market or activity.")
	cmd.Flags().BoolVar(&remote, "remote", false, "Load the options from the market API.")

	topLevel.AddCommand(cmd)
}
