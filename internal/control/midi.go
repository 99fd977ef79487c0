package control

import (
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/voltaicsound/ytterbium/internal/errkind"
)

// pollCadence is the MIDI thread's fixed poll interval (spec §5).
const pollCadence = 20 * time.Millisecond

// MidiPoller buffers decoded NoteOn/NoteOff events delivered asynchronously
// by the driver and releases them to the caller on a fixed cadence,
// matching the original implementation's read_n-and-sleep poll loop
// (original_source/src/event/receiver.rs) even though gomidi/v2 itself
// delivers MIDI via callback rather than by polling a buffer.
type MidiPoller struct {
	in      drivers.In
	stop    func()
	pending chan Event
}

// OpenMidi opens the first available input port. It returns a
// NoMidiDevice error (surfaced once, non-retried per spec §7) when none
// exists.
func OpenMidi() (*MidiPoller, error) {
	ins, err := midi.InPorts()
	if err != nil {
		return nil, errkind.New("control.OpenMidi", errkind.MidiFailure, err)
	}
	if len(ins) == 0 {
		return nil, errkind.New("control.OpenMidi", errkind.NoMidiDevice, nil)
	}

	p := &MidiPoller{pending: make(chan Event, 256)}
	stop, err := midi.ListenTo(ins[0], p.onMessage)
	if err != nil {
		return nil, errkind.New("control.OpenMidi", errkind.MidiFailure, err)
	}
	p.in = ins[0]
	p.stop = stop
	return p, nil
}

func (p *MidiPoller) onMessage(msg midi.Message, _ int32) {
	var channel, key, velocity uint8
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		p.pending <- Event{Kind: NoteOn, Key: int(key), Velocity: float64(velocity) / 127.0}
	case msg.GetNoteOff(&channel, &key, &velocity):
		p.pending <- Event{Kind: NoteOff, Key: int(key)}
	}
}

// Run drains whatever arrived since the last tick every pollCadence and
// forwards it to out, until closed is set.
func (p *MidiPoller) Run(out chan<- Event, closed func() bool) {
	ticker := time.NewTicker(pollCadence)
	defer ticker.Stop()
	for !closed() {
		<-ticker.C
		draining := true
		for draining {
			select {
			case ev := <-p.pending:
				out <- ev
			default:
				draining = false
			}
		}
	}
}

// Close stops the underlying listener.
func (p *MidiPoller) Close() {
	if p.stop != nil {
		p.stop()
	}
}
