package structs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestBackgroundIndexRoundTrip(t *testing.T) {
	for i := uint16(1); i <= 7; i++ {
		bg, ok := BackgroundByIndex(i)
		require.True(t, ok)
		back, ok := BackgroundIndex(bg)
		require.True(t, ok)
		require.Equal(t, i, back)
	}

	_, ok := BackgroundByIndex(0)
	require.False(t, ok)
	_, ok = BackgroundByIndex(8)
	require.False(t, ok)

	// 空串按 none 处理。
	idx, ok := BackgroundIndex("")
	require.True(t, ok)
	require.Equal(t, uint16(1), idx)

	_, ok = BackgroundIndex("lava")
	require.False(t, ok)
}

func TestNewStrategyObjectDefaults(t *testing.T) {
	obj := NewStrategyObject("circle_aoe", 100, 50)
	require.Equal(t, DefaultSize, obj.Size)
	require.Equal(t, DefaultColorChannel, obj.ColorR)
	require.Equal(t, DefaultColorChannel, obj.ColorG)
	require.Equal(t, DefaultColorChannel, obj.ColorB)
	require.Equal(t, 0, obj.Transparency)
	require.False(t, obj.Hidden)
}

func TestNormalizeClampsAndDefaults(t *testing.T) {
	b := &Board{Objects: []StrategyObject{{
		Type: "circle_aoe",
		X:    -40, Y: 9999,
		Size:         0,
		Transparency: 400,
		ColorR:       -1, ColorG: 300, ColorB: 80,
	}}}
	got := b.Normalized().Objects[0]
	require.Equal(t, 0, got.X)
	require.Equal(t, CanvasHeight, got.Y)
	require.Equal(t, DefaultSize, got.Size)
	require.Equal(t, 100, got.Transparency)
	require.Equal(t, 0, got.ColorR)
	require.Equal(t, 255, got.ColorG)
	require.Equal(t, 80, got.ColorB)
}

func TestNormalizeStripsUnsupportedParams(t *testing.T) {
	// 职业图标只支持角度，颜色、扇形角、月环半径都要被清掉。
	b := &Board{Objects: []StrategyObject{{
		Type: "tank", X: 10, Y: 10, Angle: 45,
		ColorR: 10, ColorG: 20, ColorB: 30, Transparency: 40,
		ArcAngle: 90, DonutRadius: 50,
	}}}
	got := b.Normalized().Objects[0]
	require.Equal(t, 45, got.Angle)
	require.Equal(t, DefaultColorChannel, got.ColorR)
	require.Equal(t, DefaultColorChannel, got.ColorG)
	require.Equal(t, DefaultColorChannel, got.ColorB)
	require.Equal(t, 0, got.Transparency)
	require.Equal(t, 0, got.ArcAngle)
	require.Equal(t, 0, got.DonutRadius)

	// 场地底图连角度都不支持。
	b = &Board{Objects: []StrategyObject{{Type: "grey_circle", Angle: 90}}}
	require.Equal(t, 0, b.Normalized().Objects[0].Angle)
}

func TestNormalizeWrapsAngle(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, 0},
		{359, 359},
		{-90, -90},
		{400, 40},
		{100000, 280},
		{-100000, -280},
	}
	for _, tc := range cases {
		b := &Board{Objects: []StrategyObject{{Type: "text", Angle: tc.in}}}
		require.Equal(t, tc.want, b.Normalized().Objects[0].Angle, "angle %d", tc.in)
	}
}

func TestNormalizeUnsetColorFallsBackToWhite(t *testing.T) {
	b := &Board{Objects: []StrategyObject{{Type: "circle_aoe"}}}
	got := b.Normalized().Objects[0]
	require.Equal(t, DefaultColorChannel, got.ColorR)
	require.Equal(t, DefaultColorChannel, got.ColorG)
	require.Equal(t, DefaultColorChannel, got.ColorB)

	// 显式黑色但带透明度的不动。
	b = &Board{Objects: []StrategyObject{{Type: "circle_aoe", Transparency: 50}}}
	got = b.Normalized().Objects[0]
	require.Equal(t, 0, got.ColorR)
	require.Equal(t, 50, got.Transparency)
}

func TestNormalizedDoesNotMutateInput(t *testing.T) {
	orig := &Board{Objects: []StrategyObject{{Type: "tank", X: -5, Size: 0}}}
	snapshot := &Board{Objects: []StrategyObject{{Type: "tank", X: -5, Size: 0}}}

	_ = orig.Normalized()
	if diff := cmp.Diff(snapshot, orig); diff != "" {
		t.Errorf("input board mutated (-want +got):\n%s", diff)
	}
}
