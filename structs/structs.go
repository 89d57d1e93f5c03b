package structs

// Background 选择整个画板的底图。Wire value is the 1-based index in
// backgroundOrder, carried by the footer tag.
type Background string

const (
	BackgroundNone            Background = "none"
	BackgroundCheckered       Background = "checkered"
	BackgroundCheckeredCircle Background = "checkered_circle"
	BackgroundCheckeredSquare Background = "checkered_square"
	BackgroundGrey            Background = "grey"
	BackgroundGreyCircle      Background = "grey_circle"
	BackgroundGreySquare      Background = "grey_square"
)

// backgroundOrder fixes the wire numbering (1..7). Do not reorder.
var backgroundOrder = []Background{
	BackgroundNone,
	BackgroundCheckered,
	BackgroundCheckeredCircle,
	BackgroundCheckeredSquare,
	BackgroundGrey,
	BackgroundGreyCircle,
	BackgroundGreySquare,
}

// BackgroundIndex returns the 1-based wire value for a background.
// The empty string counts as "none".
func BackgroundIndex(bg Background) (uint16, bool) {
	if bg == "" {
		bg = BackgroundNone
	}
	for i, b := range backgroundOrder {
		if b == bg {
			return uint16(i + 1), true
		}
	}
	return 0, false
}

// BackgroundByIndex is the inverse of BackgroundIndex.
func BackgroundByIndex(idx uint16) (Background, bool) {
	if idx < 1 || int(idx) > len(backgroundOrder) {
		return "", false
	}
	return backgroundOrder[idx-1], true
}

// 逻辑画布大小。The codec treats coordinates as opaque integers inside
// this range.
const (
	CanvasWidth  = 512
	CanvasHeight = 384
)

// MaxObjects 游戏端硬上限，超出的画板无法被游戏读取。
const MaxObjects = 50

// Default values applied when a parameter is absent on the wire. These
// must stay in sync with what the editor/renderer assumes.
const (
	DefaultSize         = 100
	DefaultColorChannel = 255
)

// StrategyObject 画板上的一个标记/形状。Which parameters are meaningful
// is decided entirely by Type; normalize clears the rest.
type StrategyObject struct {
	Type         string `json:"type"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Size         int    `json:"size,omitempty"`         // percent, default 100
	Angle        int    `json:"angle,omitempty"`        // degrees, signed
	Transparency int    `json:"transparency,omitempty"` // 0-100
	ColorR       int    `json:"colorR,omitempty"`
	ColorG       int    `json:"colorG,omitempty"`
	ColorB       int    `json:"colorB,omitempty"`
	ArcAngle     int    `json:"arcAngle,omitempty"`    // fan / donut
	DonutRadius  int    `json:"donutRadius,omitempty"` // donut / knockback extent
	Hidden       bool   `json:"hidden,omitempty"`
	Locked       bool   `json:"locked,omitempty"`
}

// Board 顶层交换值：命名的对象集合加底图。Object order is z-order and must
// survive a codec round-trip exactly.
type Board struct {
	Name       string           `json:"name,omitempty"`
	Background Background       `json:"boardBackground,omitempty"`
	Objects    []StrategyObject `json:"objects"`
}

// NewStrategyObject returns an object of the given type with the
// documented defaults filled in.
func NewStrategyObject(typeName string, x, y int) StrategyObject {
	obj := StrategyObject{
		Type:   typeName,
		X:      x,
		Y:      y,
		Size:   DefaultSize,
		ColorR: DefaultColorChannel,
		ColorG: DefaultColorChannel,
		ColorB: DefaultColorChannel,
	}
	obj.normalize()
	return obj
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalize applies defaults and strips parameters the type does not
// support, so that encode -> decode -> encode is stable.
func (o *StrategyObject) normalize() {
	params := TypeParams(o.Type)

	o.X = clamp(o.X, 0, CanvasWidth)
	o.Y = clamp(o.Y, 0, CanvasHeight)
	if o.Size == 0 {
		o.Size = DefaultSize
	}
	o.Size = clamp(o.Size, 1, 255)

	if params&ParamAngle == 0 {
		o.Angle = 0
	} else {
		// 线上角度是 i16，入码前归一到一圈以内（保留符号）。
		o.Angle %= 360
	}
	if params&ParamColor == 0 {
		o.ColorR, o.ColorG, o.ColorB = DefaultColorChannel, DefaultColorChannel, DefaultColorChannel
		o.Transparency = 0
	} else {
		// Unset color (all-zero, fully opaque) falls back to the
		// client's white default.
		if o.ColorR == 0 && o.ColorG == 0 && o.ColorB == 0 && o.Transparency == 0 {
			o.ColorR, o.ColorG, o.ColorB = DefaultColorChannel, DefaultColorChannel, DefaultColorChannel
		}
		o.ColorR = clamp(o.ColorR, 0, 255)
		o.ColorG = clamp(o.ColorG, 0, 255)
		o.ColorB = clamp(o.ColorB, 0, 255)
		o.Transparency = clamp(o.Transparency, 0, 100)
	}
	if params&ParamArcAngle == 0 {
		o.ArcAngle = 0
	} else {
		o.ArcAngle = clamp(o.ArcAngle, 0, 360)
	}
	if params&ParamDonutRadius == 0 {
		o.DonutRadius = 0
	} else {
		o.DonutRadius = clamp(o.DonutRadius, 0, 0xFFFF)
	}
}

// Normalized returns a copy of the board with defaults applied and
// type-irrelevant parameters cleared. decode(encode(b)) compares equal
// to b.Normalized().
func (b *Board) Normalized() *Board {
	out := &Board{
		Name:       b.Name,
		Background: b.Background,
	}
	if out.Background == "" {
		out.Background = BackgroundNone
	}
	if len(b.Objects) > 0 {
		out.Objects = make([]StrategyObject, len(b.Objects))
		copy(out.Objects, b.Objects)
		for i := range out.Objects {
			out.Objects[i].normalize()
		}
	}
	return out
}
