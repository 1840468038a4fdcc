package main

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/c8vm/chip8"
)

const (
	toneHz   = 440
	sampleHz = 44100

	// one 60Hz frame worth of unsigned 8-bit mono samples
	frameSamples = sampleHz / chip8.TimerHz
)

var audioDev sdl.AudioDeviceID

// InitAudio opens a queue-fed audio device for the sound timer tone.
func InitAudio() {
	spec := &sdl.AudioSpec{
		Freq:     sampleHz,
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  512,
	}

	var err error
	audioDev, err = sdl.OpenAudioDevice("", false, spec, nil, 0)
	if err != nil {
		logger.Fatal("Opening audio device failed")
	}

	sdl.PauseAudioDevice(audioDev, false)
}

// QueueTone keeps roughly one frame of square wave queued while the sound
// timer is running. The device plays silence once the queue drains.
func QueueTone() {
	if !VM.Sounding() {
		return
	}
	if sdl.GetQueuedAudioSize(audioDev) > frameSamples*2 {
		return
	}

	buf := make([]byte, frameSamples)
	for i := range buf {
		if (i*toneHz*2/sampleHz)%2 == 0 {
			buf[i] = 0x40
		} else {
			buf[i] = 0xC0
		}
	}
	if err := sdl.QueueAudio(audioDev, buf); err != nil {
		logger.Debug("Queueing audio failed")
	}
}
