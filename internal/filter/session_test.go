package filter

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MorseWayne/gift_market/internal/catalog"
	"github.com/MorseWayne/gift_market/internal/domain"
)

func newMarketSession(t *testing.T) *Session {
	t.Helper()
	return NewSession(catalog.MarketProfile())
}

func TestSession_Defaults(t *testing.T) {
	s := newMarketSession(t)
	f, adv := s.Committed()
	assert.Equal(t, domain.FilterState{GiftID: "all", TypeID: "all", SortID: "date-new"}, f)
	assert.Equal(t, domain.Range{Min: 2.11, Max: 100000}, adv.PriceRange)
	assert.Equal(t, domain.Range{Min: 1, Max: 780}, adv.QuantityRange)
	assert.False(t, adv.ShowImproved)
	assert.False(t, s.IsOpen())
	assert.False(t, s.HasAdvancedChanges())
}

func TestSession_Isolation(t *testing.T) {
	s := newMarketSession(t)
	require.NoError(t, s.Open(domain.SurfaceGift, domain.CategoryChannels))
	require.NoError(t, s.Update(domain.SurfaceGift, domain.FieldGift, "surfboard"))

	committed, _ := s.Committed()
	draft, _ := s.Draft()
	assert.Equal(t, domain.OptionAll, committed.GiftID)
	assert.Equal(t, "surfboard", draft.GiftID)

	cs, err := s.Apply()
	require.NoError(t, err)
	assert.True(t, cs.FiltersChanged)
	assert.False(t, cs.AdvancedChanged)
	assert.False(t, s.IsOpen())

	committed, _ = s.Committed()
	assert.Equal(t, "surfboard", committed.GiftID)
}

func TestSession_BasicSurfacesShareDraft(t *testing.T) {
	s := newMarketSession(t)
	require.NoError(t, s.Open(domain.SurfaceGift, domain.CategoryChannels))
	require.NoError(t, s.Update(domain.SurfaceGift, domain.FieldGift, "surfboard"))

	require.NoError(t, s.Open(domain.SurfaceType, domain.CategoryChannels))
	draft, _ := s.Draft()
	assert.Equal(t, domain.OptionAll, draft.GiftID, "opening another basic surface recopies the committed state")

	require.NoError(t, s.Update(domain.SurfaceType, domain.FieldType, domain.TypeDelayed))
	_, err := s.Apply()
	require.NoError(t, err)
	committed, _ := s.Committed()
	assert.Equal(t, domain.OptionAll, committed.GiftID)
	assert.Equal(t, domain.TypeDelayed, committed.TypeID)
}

func TestSession_ApplyIdempotent(t *testing.T) {
	s := newMarketSession(t)
	require.NoError(t, s.Open(domain.SurfaceSort, domain.CategoryChannels))
	require.NoError(t, s.Update(domain.SurfaceSort, domain.FieldSort, domain.SortPriceAsc))
	_, err := s.Apply()
	require.NoError(t, err)
	first, firstAdv := s.Committed()

	cs, err := s.Apply()
	require.NoError(t, err)
	assert.False(t, cs.Changed())
	second, secondAdv := s.Committed()
	assert.Equal(t, first, second)
	assert.Equal(t, firstAdv, secondAdv)

	// 重新打开并直接提交同样不会改变状态
	require.NoError(t, s.Open(domain.SurfaceSort, domain.CategoryChannels))
	cs, err = s.Apply()
	require.NoError(t, err)
	assert.False(t, cs.Changed())
	third, _ := s.Committed()
	assert.Equal(t, first, third)
}

func TestSession_InvalidOption(t *testing.T) {
	s := newMarketSession(t)
	require.NoError(t, s.Open(domain.SurfaceType, domain.CategoryChannels))
	require.NoError(t, s.Update(domain.SurfaceType, domain.FieldType, domain.TypeDelayed))

	err := s.Update(domain.SurfaceType, domain.FieldType, "auction")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidOption))
	var invalid *domain.InvalidOptionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, domain.FieldType, invalid.Field)
	assert.Equal(t, "auction", invalid.Value)

	draft, _ := s.Draft()
	assert.Equal(t, domain.TypeDelayed, draft.TypeID)
}

func TestSession_UpdateRequiresOpenSurface(t *testing.T) {
	s := newMarketSession(t)
	err := s.Update(domain.SurfaceGift, domain.FieldGift, "redo")
	assert.True(t, errors.Is(err, domain.ErrSurfaceNotOpen))

	require.NoError(t, s.Open(domain.SurfaceGift, domain.CategoryChannels))
	err = s.Update(domain.SurfaceSort, domain.FieldSort, domain.SortPriceAsc)
	assert.True(t, errors.Is(err, domain.ErrSurfaceNotOpen))

	err = s.Update(domain.SurfaceGift, domain.FieldSort, domain.SortPriceAsc)
	assert.True(t, errors.Is(err, domain.ErrUnknownField))

	err = s.UpdateRange(domain.SurfaceAdvanced, domain.FieldPriceRange, 1, 2)
	assert.True(t, errors.Is(err, domain.ErrSurfaceNotOpen))
}

func TestSession_OpenAvailability(t *testing.T) {
	s := newMarketSession(t)
	err := s.Open(domain.SurfaceGift, domain.CategoryGifts)
	assert.True(t, errors.Is(err, domain.ErrSurfaceUnavailable))

	err = s.Open("storage", domain.CategoryChannels)
	assert.True(t, errors.Is(err, domain.ErrUnknownSurface))

	activity := NewSession(catalog.ActivityProfile())
	err = activity.Open(domain.SurfaceAdvanced, domain.CategoryChannels)
	assert.True(t, errors.Is(err, domain.ErrSurfaceUnavailable))
	assert.NoError(t, activity.Open(domain.SurfaceSort, domain.CategoryChannels))
	assert.True(t, errors.Is(activity.Update(domain.SurfaceSort, domain.FieldSort, domain.SortAmountAsc), domain.ErrInvalidOption))
	assert.NoError(t, activity.Update(domain.SurfaceSort, domain.FieldSort, domain.SortVolumeAsc))
}

func TestSession_OpenCopiesCommitted(t *testing.T) {
	s := newMarketSession(t)
	require.NoError(t, s.Open(domain.SurfaceGift, domain.CategoryChannels))
	require.NoError(t, s.Update(domain.SurfaceGift, domain.FieldGift, "redo"))
	s.Cancel()

	require.NoError(t, s.Open(domain.SurfaceGift, domain.CategoryChannels))
	draft, _ := s.Draft()
	assert.Equal(t, domain.OptionAll, draft.GiftID)
}

func TestSession_OpenOtherSurfaceDiscardsDraft(t *testing.T) {
	s := newMarketSession(t)
	require.NoError(t, s.Open(domain.SurfaceGift, domain.CategoryChannels))
	require.NoError(t, s.Update(domain.SurfaceGift, domain.FieldGift, "redo"))
	require.NoError(t, s.Open(domain.SurfaceSort, domain.CategoryChannels))

	assert.Equal(t, domain.SurfaceSort, s.ActiveSurface())
	draft, _ := s.Draft()
	assert.Equal(t, domain.OptionAll, draft.GiftID)
}

func TestSession_Cancel(t *testing.T) {
	s := newMarketSession(t)
	require.NoError(t, s.Open(domain.SurfaceAdvanced, domain.CategoryChannels))
	require.NoError(t, s.SetFlag(domain.SurfaceAdvanced, domain.FieldShowImproved, true))
	require.NoError(t, s.UpdateRange(domain.SurfaceAdvanced, domain.FieldPriceRange, 10, 20))
	s.Cancel()

	assert.False(t, s.IsOpen())
	_, adv := s.Committed()
	assert.False(t, adv.ShowImproved)
	assert.False(t, s.HasAdvancedChanges())

	// 未打开时取消为空操作
	s.Cancel()
	assert.False(t, s.IsOpen())
}

func TestSession_UpdateRangeNormalizes(t *testing.T) {
	tests := []struct {
		name   string
		field  domain.Field
		lo, hi float64
		want   domain.Range
	}{
		{name: "swap", field: domain.FieldPriceRange, lo: 50, hi: 5, want: domain.Range{Min: 5, Max: 50}},
		{name: "clamp price", field: domain.FieldPriceRange, lo: -3, hi: 200000, want: domain.Range{Min: 0, Max: 100000}},
		{name: "swap then clamp", field: domain.FieldQuantityRange, lo: 5000, hi: 0, want: domain.Range{Min: 1, Max: 1000}},
		{name: "nan uses bounds", field: domain.FieldQuantityRange, lo: math.NaN(), hi: 10, want: domain.Range{Min: 1, Max: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newMarketSession(t)
			require.NoError(t, s.Open(domain.SurfaceAdvanced, domain.CategoryChannels))
			require.NoError(t, s.UpdateRange(domain.SurfaceAdvanced, tt.field, tt.lo, tt.hi))
			_, adv := s.Draft()
			if tt.field == domain.FieldPriceRange {
				assert.Equal(t, tt.want, adv.PriceRange)
			} else {
				assert.Equal(t, tt.want, adv.QuantityRange)
			}
		})
	}
}

func TestSession_UpdateRangeRejectsNonRangeField(t *testing.T) {
	s := newMarketSession(t)
	require.NoError(t, s.Open(domain.SurfaceAdvanced, domain.CategoryChannels))
	assert.True(t, errors.Is(s.UpdateRange(domain.SurfaceAdvanced, domain.FieldGift, 1, 2), domain.ErrUnknownField))
	assert.True(t, errors.Is(s.SetFlag(domain.SurfaceAdvanced, domain.FieldSort, true), domain.ErrUnknownField))
}

func TestSession_ResetScope(t *testing.T) {
	s := newMarketSession(t)
	require.NoError(t, s.Open(domain.SurfaceSort, domain.CategoryChannels))
	require.NoError(t, s.Update(domain.SurfaceSort, domain.FieldSort, domain.SortPriceDesc))
	_, err := s.Apply()
	require.NoError(t, err)
	require.NoError(t, s.Open(domain.SurfaceType, domain.CategoryChannels))
	require.NoError(t, s.Update(domain.SurfaceType, domain.FieldType, domain.TypeDelayed))
	_, err = s.Apply()
	require.NoError(t, err)

	require.NoError(t, s.Open(domain.SurfaceGift, domain.CategoryChannels))
	require.NoError(t, s.Update(domain.SurfaceGift, domain.FieldGift, "redo"))
	require.NoError(t, s.ResetSurface(domain.SurfaceGift))

	draft, _ := s.Draft()
	assert.Equal(t, domain.FilterState{GiftID: domain.OptionAll, TypeID: domain.TypeDelayed, SortID: domain.SortPriceDesc}, draft)
	committed, _ := s.Committed()
	assert.Equal(t, domain.TypeDelayed, committed.TypeID)

	assert.True(t, errors.Is(s.ResetSurface(domain.SurfaceSort), domain.ErrSurfaceNotOpen))
}

func TestSession_ResetAdvanced(t *testing.T) {
	s := newMarketSession(t)
	require.NoError(t, s.Open(domain.SurfaceAdvanced, domain.CategoryChannels))
	require.NoError(t, s.UpdateRange(domain.SurfaceAdvanced, domain.FieldQuantityRange, 3, 9))
	require.NoError(t, s.SetFlag(domain.SurfaceAdvanced, domain.FieldExactGiftOnly, true))
	cs, err := s.Apply()
	require.NoError(t, err)
	assert.True(t, cs.AdvancedChanged)
	assert.True(t, s.HasAdvancedChanges())

	require.NoError(t, s.Open(domain.SurfaceAdvanced, domain.CategoryChannels))
	require.NoError(t, s.ResetSurface(domain.SurfaceAdvanced))
	_, draft := s.Draft()
	_, defaults := s.Defaults()
	assert.Equal(t, defaults, draft)

	// 提交前已提交状态保持不变
	_, committed := s.Committed()
	assert.Equal(t, domain.Range{Min: 3, Max: 9}, committed.QuantityRange)

	_, err = s.Apply()
	require.NoError(t, err)
	assert.False(t, s.HasAdvancedChanges())
}

func TestSession_ApplyCommitsAllBasicFields(t *testing.T) {
	s := newMarketSession(t)
	require.NoError(t, s.Open(domain.SurfaceGift, domain.CategoryChannels))
	require.NoError(t, s.Update(domain.SurfaceGift, domain.FieldGift, "pink-flamingo"))
	cs, err := s.Apply()
	require.NoError(t, err)
	assert.Equal(t, domain.SurfaceGift, cs.Surface)

	committed, adv := s.Committed()
	assert.Equal(t, "pink-flamingo", committed.GiftID)
	_, defaults := s.Defaults()
	assert.Equal(t, defaults, adv)
}
