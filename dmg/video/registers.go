package video

// STAT (LCD Status) Register bit positions.
//
//	Bit 6 - LYC=LY interrupt enable
//	Bit 5 - Mode 2 (Searching OAM) interrupt enable
//	Bit 4 - Mode 1 (VBlank) interrupt enable
//	Bit 3 - Mode 0 (HBlank) interrupt enable
//	Bit 2 - LYC=LY flag (1 when LY==LYC)
//	Bit 1-0 - current mode
type statFlag = uint8

const (
	statLycIrq       statFlag = 6
	statOamIrq       statFlag = 5
	statVblankIrq    statFlag = 4
	statHblankIrq    statFlag = 3
	statLycCondition statFlag = 2
)

// LCDC (LCD Control) Register bit positions.
//
//	Bit 7 - LCD/PPU enable
//	Bit 6 - Window tile map select (0=9800, 1=9C00)
//	Bit 5 - Window enable
//	Bit 4 - BG/Window tile data select (0=8800 signed, 1=8000 unsigned)
//	Bit 3 - BG tile map select (0=9800, 1=9C00)
//	Bit 2 - OBJ size (0=8x8, 1=8x16)
//	Bit 1 - OBJ enable
//	Bit 0 - BG/Window enable (priority on DMG)
type lcdcFlag = uint8

const (
	lcdDisplayEnable       lcdcFlag = 7
	windowTileMapSelect    lcdcFlag = 6
	windowDisplayEnable    lcdcFlag = 5
	bgWindowTileDataSelect lcdcFlag = 4
	bgTileMapDisplaySelect lcdcFlag = 3
	spriteSize             lcdcFlag = 2
	spriteDisplayEnable    lcdcFlag = 1
	bgDisplay              lcdcFlag = 0
)
