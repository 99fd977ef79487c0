// Command ytterbiumd is the polyphonic additive/FM synthesizer core: it
// binds the UDP control receiver, polls an available MIDI device, runs the
// DSP thread against the voice/filter/limiter graph, and streams the
// result through the audio device.
package main

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/voltaicsound/ytterbium/internal/audiodevice"
	"github.com/voltaicsound/ytterbium/internal/control"
	"github.com/voltaicsound/ytterbium/internal/errkind"
	"github.com/voltaicsound/ytterbium/internal/filter"
	"github.com/voltaicsound/ytterbium/internal/flow"
	"github.com/voltaicsound/ytterbium/internal/ringbuffer"
	"github.com/voltaicsound/ytterbium/internal/voice"
)

var allowedSampleRates = map[int]bool{44100: true, 48000: true, 88200: true, 96000: true}

func main() {
	var (
		address    = pflag.String("address", "0.0.0.0", "bind address for the control receiver")
		ports      = pflag.IntSlice("ports", nil, "UDP receive/send ports (exactly two values)")
		sampleRate = pflag.Int("sample-rate", 48000, "output sample rate")
		cacheDir   = pflag.String("cache-dir", "", "directory to cache built wavetables in (disabled if empty)")
	)
	pflag.Parse()

	logger := log.New(os.Stderr)

	if len(*ports) != 2 {
		logger.Error("exactly two --ports values required (receive, send)")
		os.Exit(1)
	}
	if !allowedSampleRates[*sampleRate] {
		logger.Error("unsupported sample rate", "rate", *sampleRate)
		os.Exit(1)
	}
	inPort := (*ports)[0]

	udpRecv, err := control.ListenUDP(*address, inPort)
	if err != nil {
		logger.Error("failed to bind control receiver", "err", err)
		os.Exit(1)
	}
	logger.Info("control receiver bound", "address", *address, "port", inPort)

	midiPoller, midiErr := control.OpenMidi()
	if midiErr != nil {
		if e, ok := midiErr.(*errkind.Error); ok && e.Kind == errkind.NoMidiDevice {
			logger.Warn("no MIDI device available, continuing without one")
		} else {
			logger.Warn("MIDI initialization failed, continuing without one", "err", midiErr)
		}
		midiPoller = nil
	}

	events := make(chan control.Event, 256)
	var quit atomic.Bool

	go udpRecv.Run(events, func(err error) {
		logger.Warn("dropped malformed control frame", "err", err)
	})
	if midiPoller != nil {
		go midiPoller.Run(events, quit.Load)
	}

	manager := voice.NewManagerWithCache(*sampleRate, *cacheDir)
	flt := filter.New(*sampleRate)
	rb := ringbuffer.New(ringbuffer.DefaultCapacity)
	f := flow.New(manager, flt, rb, events)

	player, err := audiodevice.Open(*sampleRate, rb, func(missing int) {
		logger.Warn("ring buffer underflow", "missing_frames", missing)
	})
	if err != nil {
		logger.Error("failed to open audio device", "err", err)
		os.Exit(1)
	}

	var barrier sync.WaitGroup
	barrier.Add(2)

	var dspDone sync.WaitGroup
	dspDone.Add(1)
	go func() {
		defer dspDone.Done()
		barrier.Done()
		barrier.Wait()
		for !quit.Load() {
			f.Tick()
		}
	}()

	go func() {
		barrier.Done()
		barrier.Wait()
		player.Play()
	}()

	logger.Info("ytterbiumd running", "sample_rate", *sampleRate)
	waitForStdinEOF()

	quit.Store(true)
	rb.Close()
	dspDone.Wait()
	if err := player.Stop(); err != nil {
		logger.Warn("error stopping audio device", "err", err)
	}
	if midiPoller != nil {
		midiPoller.Close()
	}
	udpRecv.Close()
	logger.Info("ytterbiumd shut down cleanly")
}

func waitForStdinEOF() {
	buf := make([]byte, 1)
	for {
		_, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
	}
}
