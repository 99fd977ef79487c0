// Package audiodevice adapts the ring buffer's stereo frames to the
// ebiten/v2 audio player's pull-callback io.Reader contract, following the
// teacher's StreamReader/Player split (internal/audio/stream.go in the
// original mmlfm-go tree). Underflow is zero-filled per spec §7.
package audiodevice

import (
	"encoding/binary"
	"math"
	"sync"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/voltaicsound/ytterbium/internal/errkind"
	"github.com/voltaicsound/ytterbium/internal/ringbuffer"
)

// StreamReader pulls interleaved stereo float32 frames from a ring buffer,
// zero-filling any shortfall instead of blocking the driver's callback
// (spec §6–§7: ring-buffer underflow surfaces as zero-filled output, never
// as a stall on the audio thread).
type StreamReader struct {
	mu        sync.Mutex
	rb        *ringbuffer.RingBuffer
	underflow func(missingFrames int)
}

// NewStreamReader wraps rb. onUnderflow, if non-nil, is invoked with the
// count of frames that had to be zero-filled on a given Read.
func NewStreamReader(rb *ringbuffer.RingBuffer, onUnderflow func(missingFrames int)) *StreamReader {
	return &StreamReader{rb: rb, underflow: onUnderflow}
}

// Read fills p with interleaved float32 stereo samples pulled from the ring
// buffer, honoring the driver's implicit (min_frames, max_frames) request
// via len(p) (spec §6).
func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	got := r.rb.ReadAvailable(frames)
	if len(got) < frames && r.underflow != nil {
		r.underflow(frames - len(got))
	}
	for i := 0; i < frames; i++ {
		var l, r32 float32
		if i < len(got) {
			l = float32(got[i].L)
			r32 = float32(got[i].R)
		}
		off := i * 8
		binary.LittleEndian.PutUint32(p[off:], math.Float32bits(l))
		binary.LittleEndian.PutUint32(p[off+4:], math.Float32bits(r32))
	}
	return frames * 8, nil
}

// Close is a no-op; the ring buffer outlives any single stream reader.
func (r *StreamReader) Close() error { return nil }

// allowedSampleRates enumerates the rates spec §6 permits.
var allowedSampleRates = map[int]bool{44100: true, 48000: true, 88200: true, 96000: true}

// Player owns the ebiten audio context and a single playing stream.
type Player struct {
	player *ebitaudio.Player
	reader *StreamReader
}

// Open validates sampleRate, builds an ebiten audio context and a player
// that streams from rb once Play is called. Any failure is returned as an AudioFailure error
// (spec §7: bind/audio-open failures are fatal at startup).
func Open(sampleRate int, rb *ringbuffer.RingBuffer, onUnderflow func(int)) (*Player, error) {
	if !allowedSampleRates[sampleRate] {
		return nil, errkind.New("audiodevice.Open", errkind.AudioFailure, nil)
	}
	ctx := ebitaudio.NewContext(sampleRate)
	reader := NewStreamReader(rb, onUnderflow)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, errkind.New("audiodevice.Open", errkind.AudioFailure, err)
	}
	return &Player{player: pl, reader: reader}, nil
}

// Play starts the audio callback pulling frames from the ring buffer.
func (p *Player) Play() { p.player.Play() }

// Stop halts playback and releases the underlying stream.
func (p *Player) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}
