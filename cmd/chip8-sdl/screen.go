package main

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/c8vm/chip8"
)

var (
	// Screen is the render target holding the CHIP-8 framebuffer.
	Screen *sdl.Texture
)

// InitScreen creates the render target for the CHIP-8 video memory.
func InitScreen() {
	var err error

	Screen, err = Renderer.CreateTexture(sdl.PIXELFORMAT_RGB888,
		sdl.TEXTUREACCESS_TARGET, chip8.SCREEN_WIDTH, chip8.SCREEN_HEIGHT)
	if err != nil {
		logger.Fatal("Creating screen texture failed")
	}
}

// RefreshScreen redraws the screen texture from the framebuffer.
func RefreshScreen() {
	if err := Renderer.SetRenderTarget(Screen); err != nil {
		logger.Fatal("Setting render target failed")
	}

	// background
	Renderer.SetDrawColor(143, 145, 133, 255)
	Renderer.Clear()

	// pixel color
	Renderer.SetDrawColor(17, 29, 43, 255)

	VM.ScreenSnapshot().OnEachPixel(func(x, y int, i chip8.ReadableImage) {
		if i.At(x, y) != 0 {
			Renderer.DrawPoint(int32(x), int32(y))
		}
	})

	// restore the render target
	Renderer.SetRenderTarget(nil)
}

// CopyScreen stretches the screen texture onto the render target.
func CopyScreen(x, y, w, h int32) {
	src := sdl.Rect{
		W: chip8.SCREEN_WIDTH,
		H: chip8.SCREEN_HEIGHT,
	}

	Renderer.Copy(Screen, &src, &sdl.Rect{X: x, Y: y, W: w, H: h})
}
