package lcd

import "github.com/thelolagemann/gbcore/pkg/bits"

// Controller is the LCD control register (0xFF40). It is responsible
// for controlling various aspects of the LCD, such as enabling the
// background and window display.
//
//	Bit 7 - LCD Enable                     (0=Off, 1=On)
//	Bit 6 - Window Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
//	Bit 5 - Window Display Enable          (0=Off, 1=On)
//	Bit 4 - BG & Window Tile Data Select   (0=8800-97FF, 1=8000-8FFF)
//	Bit 3 - BG Tile Map Display Select     (0=9800-9BFF, 1=9C00-9FFF)
//	Bit 2 - OBJ (Sprite) Size              (0=8x8, 1=8x16)
//	Bit 1 - OBJ (Sprite) Display Enable    (0=Off, 1=On)
//	Bit 0 - BG/Window Display/Priority     (0=Off, 1=On)
type Controller uint8

// Enabled returns true if the LCD is switched on.
func (c Controller) Enabled() bool {
	return bits.Test(uint8(c), 7)
}

// WindowTileMapAddress returns the start of the window tile map.
func (c Controller) WindowTileMapAddress() uint16 {
	return tileMap(bits.Test(uint8(c), 6))
}

func (c Controller) WindowEnabled() bool {
	return bits.Test(uint8(c), 5)
}

// TileDataAddress returns the start of the tile data shared by the
// background and window.
func (c Controller) TileDataAddress() uint16 {
	if bits.Test(uint8(c), 4) {
		return 0x8000
	}
	return 0x8800
}

// UsingSignedTileData returns true if tile numbers are signed offsets
// from 0x9000.
func (c Controller) UsingSignedTileData() bool {
	return c.TileDataAddress() == 0x8800
}

// BackgroundTileMapAddress returns the start of the background tile map.
func (c Controller) BackgroundTileMapAddress() uint16 {
	return tileMap(bits.Test(uint8(c), 3))
}

// SpriteSize returns the height of a sprite, 8 or 16.
func (c Controller) SpriteSize() uint8 {
	return 8 + bits.Val(uint8(c), 2)*8
}

func (c Controller) SpriteEnabled() bool {
	return bits.Test(uint8(c), 1)
}

func (c Controller) BackgroundEnabled() bool {
	return bits.Test(uint8(c), 0)
}

func tileMap(high bool) uint16 {
	if high {
		return 0x9C00
	}
	return 0x9800
}
