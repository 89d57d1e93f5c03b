package structs

// ParamMask 标记某个类型支持哪些可选参数。Size, hidden and locked are
// supported by every type and are not tracked here.
type ParamMask uint8

const (
	ParamAngle ParamMask = 1 << iota
	ParamColor
	ParamArcAngle
	ParamDonutRadius
)

type typeInfo struct {
	ID     uint16
	Params ParamMask
}

const (
	paramsOverlay = ParamMask(0)
	paramsIcon    = ParamAngle
	paramsAoE     = ParamAngle | ParamColor
	paramsShape   = ParamAngle | ParamColor
)

// typeTable 类型名 <-> 小整数ID 的封闭词表。The numeric IDs are wire
// constants shared with the game client; never renumber an entry.
var typeTable = map[string]typeInfo{
	// Field overlays, the only group without angle support.
	"checkered_circle": {4, paramsOverlay},
	"checkered_square": {8, paramsOverlay},
	"grey_circle":      {124, paramsOverlay},
	"grey_square":      {125, paramsOverlay},

	// AoE / mechanics
	"circle_aoe":        {9, paramsAoE},
	"fan_aoe":           {10, paramsAoE | ParamArcAngle},
	"line_aoe":          {11, paramsAoE},
	"line":              {12, paramsAoE},
	"gaze":              {13, paramsAoE},
	"stack":             {14, paramsAoE},
	"line_stack":        {15, paramsAoE},
	"proximity":         {16, paramsAoE},
	"donut":             {17, paramsAoE | ParamArcAngle | ParamDonutRadius},
	"stack_multi":       {106, paramsAoE},
	"proximity_player":  {107, paramsAoE},
	"tankbuster":        {108, paramsAoE},
	"radial_knockback":  {109, paramsAoE | ParamDonutRadius},
	"linear_knockback":  {110, paramsAoE | ParamDonutRadius},
	"tower":             {111, paramsAoE},
	"targeting":         {112, paramsAoE},
	"moving_circle_aoe": {126, paramsAoE},
	"1person_aoe":       {127, paramsAoE},
	"2person_aoe":       {128, paramsAoE},
	"3person_aoe":       {129, paramsAoE},
	"4person_aoe":       {130, paramsAoE},

	// Base classes
	"gladiator":   {18, paramsIcon},
	"pugilist":    {19, paramsIcon},
	"marauder":    {20, paramsIcon},
	"lancer":      {21, paramsIcon},
	"archer":      {22, paramsIcon},
	"conjurer":    {23, paramsIcon},
	"thaumaturge": {24, paramsIcon},
	"arcanist":    {25, paramsIcon},
	"rogue":       {26, paramsIcon},

	// Jobs
	"paladin":     {27, paramsIcon},
	"monk":        {28, paramsIcon},
	"warrior":     {29, paramsIcon},
	"dragoon":     {30, paramsIcon},
	"bard":        {31, paramsIcon},
	"white_mage":  {32, paramsIcon},
	"black_mage":  {33, paramsIcon},
	"summoner":    {34, paramsIcon},
	"scholar":     {35, paramsIcon},
	"ninja":       {36, paramsIcon},
	"machinist":   {37, paramsIcon},
	"dark_knight": {38, paramsIcon},
	"astrologian": {39, paramsIcon},
	"samurai":     {40, paramsIcon},
	"red_mage":    {41, paramsIcon},
	"blue_mage":   {42, paramsIcon},
	"gunbreaker":  {43, paramsIcon},
	"dancer":      {44, paramsIcon},
	"reaper":      {45, paramsIcon},
	"sage":        {46, paramsIcon},
	"viper":       {101, paramsIcon},
	"pictomancer": {102, paramsIcon},

	// Role markers
	"tank":                {47, paramsIcon},
	"tank_1":              {48, paramsIcon},
	"tank_2":              {49, paramsIcon},
	"healer":              {50, paramsIcon},
	"healer_1":            {51, paramsIcon},
	"healer_2":            {52, paramsIcon},
	"dps":                 {53, paramsIcon},
	"dps_1":               {54, paramsIcon},
	"dps_2":               {55, paramsIcon},
	"dps_3":               {56, paramsIcon},
	"dps_4":               {57, paramsIcon},
	"melee_dps":           {118, paramsIcon},
	"ranged_dps":          {119, paramsIcon},
	"physical_ranged_dps": {120, paramsIcon},
	"magical_ranged_dps":  {121, paramsIcon},
	"pure_healer":         {122, paramsIcon},
	"barrier_healer":      {123, paramsIcon},

	// Enemies
	"small_enemy":  {60, paramsIcon},
	"medium_enemy": {62, paramsIcon},
	"large_enemy":  {64, paramsIcon},

	// Target markers
	"attack_1": {65, paramsIcon},
	"attack_2": {66, paramsIcon},
	"attack_3": {67, paramsIcon},
	"attack_4": {68, paramsIcon},
	"attack_5": {69, paramsIcon},
	"attack_6": {115, paramsIcon},
	"attack_7": {116, paramsIcon},
	"attack_8": {117, paramsIcon},
	"bind_1":   {70, paramsIcon},
	"bind_2":   {71, paramsIcon},
	"bind_3":   {72, paramsIcon},
	"ignore_1": {73, paramsIcon},
	"ignore_2": {74, paramsIcon},

	// Chain markers
	"square_marker":   {75, paramsIcon},
	"circle_marker":   {76, paramsIcon},
	"plus_marker":     {77, paramsIcon},
	"triangle_marker": {78, paramsIcon},

	// Waymarks
	"waymark_a": {79, paramsIcon},
	"waymark_b": {80, paramsIcon},
	"waymark_c": {81, paramsIcon},
	"waymark_d": {82, paramsIcon},
	"waymark_1": {83, paramsIcon},
	"waymark_2": {84, paramsIcon},
	"waymark_3": {85, paramsIcon},
	"waymark_4": {86, paramsIcon},

	// Shapes / text
	"shape_circle":           {87, paramsShape},
	"shape_x":                {88, paramsShape},
	"shape_triangle":         {89, paramsShape},
	"shape_square":           {90, paramsShape},
	"up_arrow":               {94, paramsShape},
	"text":                   {100, paramsShape},
	"rotate":                 {103, paramsShape},
	"highlighted_circle":     {135, paramsShape},
	"highlighted_x":          {136, paramsShape},
	"highlighted_square":     {137, paramsShape},
	"highlighted_triangle":   {138, paramsShape},
	"rotate_clockwise":       {139, paramsShape},
	"rotate_counterclockwise": {140, paramsShape},

	// Effects
	"enhancement":  {113, paramsIcon},
	"enfeeblement": {114, paramsIcon},

	// Lock-on markers
	"lockon_red":    {131, paramsIcon},
	"lockon_blue":   {132, paramsIcon},
	"lockon_purple": {133, paramsIcon},
	"lockon_green":  {134, paramsIcon},

	// Groups
	"group": {105, paramsIcon},
}

var typeNameByID = func() map[uint16]string {
	m := make(map[uint16]string, len(typeTable))
	for name, info := range typeTable {
		m[info.ID] = name
	}
	return m
}()

// TypeID maps a type name to its wire ID.
func TypeID(name string) (uint16, bool) {
	info, ok := typeTable[name]
	return info.ID, ok
}

// TypeName maps a wire ID back to its type name.
func TypeName(id uint16) (string, bool) {
	name, ok := typeNameByID[id]
	return name, ok
}

// TypeParams reports the optional parameters a type supports. Unknown
// types report nothing; encoding rejects them before this matters.
func TypeParams(name string) ParamMask {
	return typeTable[name].Params
}

// KnownType reports whether the name is part of the closed vocabulary.
func KnownType(name string) bool {
	_, ok := typeTable[name]
	return ok
}

// TypeCount is exposed for table sanity checks.
func TypeCount() int {
	return len(typeTable)
}
