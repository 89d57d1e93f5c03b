package codec

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hoshinonyaruko/stgy-share/structs"
)

// 以下负载是真实游戏客户端生成的分享码解出来的明文，作为格式金标。
const (
	payloadEmptyNone       = "020000001c000000000000000000000000001000000000000100080061626364656667000300010001000100"
	payloadEmptyGreySquare = "020000001c000000000000000000000000001000000000000100080061626364656667000300010001000700"
	payloadDonut           = "020000006400000000000000000000000000580000000000010008007465737400000000020011000400010001000100050003000100000000000600010001001e000700000001003200080002000100ffffff3c0a000100010040010b000100010050000c000100010000000300010001000100"
	payloadTank            = "02000000640000000000000000000000000058000000000001000800746573740000000002002f0004000100010001000500030001000000000006000100010000000700000001006400080002000100ffffff000a000100010000000b000100010000000c000100010000000300010001000100"
	payloadTwoTanks        = "020000007a000000000000000000000000006e000000000001000800746573740000000002002f0002002f00040001000200010001000500030002000000000000000000060001000200000000000700000002006464080002000200ffffff00ffffff000a0001000200000000000b0001000200000000000c0001000200000000000300010001000100"
	payloadTankHidden      = "02000000640000000000000000000000000058000000000001000800746573740000000002002f0004000100010000000500030001000000000006000100010000000700000001006400080002000100ffffff000a000100010000000b000100010000000c000100010000000300010001000100"
	payloadTankLocked      = "02000000640000000000000000000000000058000000000001000800746573740000000002002f0004000100010009000500030001000000000006000100010000000700000001006400080002000100ffffff000a000100010000000b000100010000000c000100010000000300010001000100"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func tankAt(x, y int) structs.StrategyObject {
	return structs.StrategyObject{
		Type: "tank", X: x, Y: y,
		Size:   structs.DefaultSize,
		ColorR: 255, ColorG: 255, ColorB: 255,
	}
}

func TestMarshalEmptyBoardMatchesClient(t *testing.T) {
	// 空画板编出来必须和客户端逐字节一致。
	got, err := marshalBoard(&structs.Board{Name: "abcdefg"})
	require.NoError(t, err)
	require.Equal(t, payloadEmptyNone, hex.EncodeToString(got))

	got, err = marshalBoard(&structs.Board{Name: "abcdefg", Background: structs.BackgroundGreySquare})
	require.NoError(t, err)
	require.Equal(t, payloadEmptyGreySquare, hex.EncodeToString(got))
}

func TestUnmarshalClientPayloads(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    *structs.Board
	}{
		{
			"empty none", payloadEmptyNone,
			&structs.Board{Name: "abcdefg", Background: structs.BackgroundNone},
		},
		{
			"empty grey square", payloadEmptyGreySquare,
			&structs.Board{Name: "abcdefg", Background: structs.BackgroundGreySquare},
		},
		{
			"single donut with every parameter", payloadDonut,
			&structs.Board{Name: "test", Background: structs.BackgroundNone, Objects: []structs.StrategyObject{{
				Type: "donut", X: 0, Y: 0, Size: 50, Angle: 30,
				Transparency: 60, ColorR: 255, ColorG: 255, ColorB: 255,
				ArcAngle: 320, DonutRadius: 80,
			}}},
		},
		{
			"single tank, all value tags at defaults", payloadTank,
			&structs.Board{Name: "test", Background: structs.BackgroundNone,
				Objects: []structs.StrategyObject{tankAt(0, 0)}},
		},
		{
			"two tanks", payloadTwoTanks,
			&structs.Board{Name: "test", Background: structs.BackgroundNone,
				Objects: []structs.StrategyObject{tankAt(0, 0), tankAt(0, 0)}},
		},
		{
			"hidden tank", payloadTankHidden,
			&structs.Board{Name: "test", Background: structs.BackgroundNone,
				Objects: []structs.StrategyObject{func() structs.StrategyObject {
					o := tankAt(0, 0)
					o.Hidden = true
					return o
				}()}},
		},
		{
			"locked tank", payloadTankLocked,
			&structs.Board{Name: "test", Background: structs.BackgroundNone,
				Objects: []structs.StrategyObject{func() structs.StrategyObject {
					o := tankAt(0, 0)
					o.Locked = true
					return o
				}()}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := unmarshalBoard(mustHex(t, tc.payload))
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("board mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	board := &structs.Board{
		Name:       "m5s",
		Background: structs.BackgroundGrey,
		Objects: []structs.StrategyObject{
			{Type: "fan_aoe", X: 100, Y: 120, Size: 80, Angle: -90,
				ColorR: 255, ColorG: 128, ColorB: 0, Transparency: 25, ArcAngle: 120},
			{Type: "tank", X: 40, Y: 40},
			{Type: "healer", X: 460, Y: 300, Size: 120, Locked: true},
		},
	}
	payload, err := marshalBoard(board)
	require.NoError(t, err)

	got, err := unmarshalBoard(payload)
	require.NoError(t, err)
	if diff := cmp.Diff(board.Normalized(), got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalTruncatesNameAtRuneBoundary(t *testing.T) {
	payload, err := marshalBoard(&structs.Board{Name: "日本語テスト"})
	require.NoError(t, err)

	got, err := unmarshalBoard(payload)
	require.NoError(t, err)
	// 名字字段只有7字节，截断不能切破多字节字符。
	require.Equal(t, "日本", got.Name)
}

// testPayload 组装一个仅供解码测试的负载，头部的长度冗余字段解码器
// 不校验，留零即可。
func testPayload(words ...uint16) []byte {
	var w payloadWriter
	w.u32(payloadVersion)
	w.u32(0)
	w.buf = append(w.buf, make([]byte, 10)...)
	w.u32(0)
	w.u16(0)
	w.u16(1)
	w.u16(nameFieldLen)
	w.buf = append(w.buf, []byte("test\x00\x00\x00\x00")...)
	for _, v := range words {
		w.u16(v)
	}
	return w.buf
}

func TestUnmarshalRejects(t *testing.T) {
	cases := []struct {
		name    string
		payload []byte
		want    error
	}{
		{
			"unknown tag id",
			testPayload(2, 47, 9, 1, 1, 0, 3, 1, 1, 1),
			ErrUnknownTag,
		},
		{
			"flags after positions",
			testPayload(2, 47, 5, 3, 1, 0, 0, 4, 1, 1, 1),
			ErrTagOrderViolation,
		},
		{
			"duplicate tag",
			testPayload(2, 47, 4, 1, 1, 1, 4, 1, 1, 1),
			ErrTagOrderViolation,
		},
		{
			"wrong element kind",
			testPayload(2, 47, 4, 2, 1, 1),
			ErrTagOrderViolation,
		},
		{
			"count does not match object count",
			testPayload(2, 47, 4, 1, 3, 1, 1, 1),
			ErrTagOrderViolation,
		},
		{
			"unknown object type id",
			testPayload(2, 999),
			ErrUnknownObjectType,
		},
		{
			"background selector out of range",
			testPayload(2, 47, 4, 1, 1, 1, 5, 3, 1, 0, 0, 7, 0, 1, 0x0064, 3, 1, 1, 8),
			ErrTagOrderViolation,
		},
		{
			"background selector zero",
			testPayload(3, 1, 1, 0),
			ErrTagOrderViolation,
		},
		{
			"trailing bytes after footer",
			testPayload(3, 1, 1, 1, 0xdead),
			ErrTagOrderViolation,
		},
		{
			"missing required tags before footer",
			testPayload(2, 47, 3, 1, 1, 1),
			ErrTagOrderViolation,
		},
		{
			"payload ends before footer",
			testPayload(2, 47, 4, 1, 1, 1),
			ErrTagOrderViolation,
		},
		{
			"unsupported payload version",
			func() []byte {
				p := testPayload(3, 1, 1, 1)
				p[0] = 3
				return p
			}(),
			ErrTagOrderViolation,
		},
		{
			"header truncated",
			[]byte{0x02, 0x00, 0x00},
			ErrTagOrderViolation,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := unmarshalBoard(tc.payload)
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestUnmarshalSkipsReservedTag(t *testing.T) {
	// 客户端会写 tag 12，内容保留，解码时跳过。
	payload := testPayload(2, 47, 4, 1, 1, 1, 5, 3, 1, 0, 0, 7, 0, 1, 0x0064, 12, 1, 1, 0, 3, 1, 1, 1)
	got, err := unmarshalBoard(payload)
	require.NoError(t, err)
	require.Len(t, got.Objects, 1)
	require.Equal(t, "tank", got.Objects[0].Type)
}

func TestUnmarshalAcceptsZeroCountTags(t *testing.T) {
	// 空画板的另一种合法形态：带零计数的必选 tag。
	payload := testPayload(4, 1, 0, 5, 3, 0, 7, 0, 0, 3, 1, 1, 1)
	got, err := unmarshalBoard(payload)
	require.NoError(t, err)
	require.Empty(t, got.Objects)
	require.Equal(t, structs.BackgroundNone, got.Background)
}
