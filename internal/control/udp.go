package control

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"net"

	"github.com/voltaicsound/ytterbium/internal/errkind"
)

// wireMTU bounds a single decoded control frame. No OSC/MIDI wire codec
// library is present anywhere in the example pack, so the UDP control
// protocol is a gob-encoded Event per datagram — the same encoding already
// used for the wavetable disk cache (see DESIGN.md).
const wireMTU = 4096

// UDPReceiver blocks on a UDP socket and decodes one Event per datagram.
type UDPReceiver struct {
	conn *net.UDPConn
	buf  []byte
}

// ListenUDP binds address:port, returning an AudioFailure-free, BadAddress/
// IoFailure-wrapped error on failure (spec §7: bind failures are fatal at
// startup).
func ListenUDP(address string, port int) (*UDPReceiver, error) {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", address, port))
	if err != nil {
		return nil, errkind.New("control.ListenUDP", errkind.BadAddress, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, errkind.New("control.ListenUDP", errkind.IoFailure, err)
	}
	return &UDPReceiver{conn: conn, buf: make([]byte, wireMTU)}, nil
}

// Receive blocks for the next datagram and decodes it. A decode error is
// non-fatal: the caller should log and keep calling Receive (spec §7).
func (r *UDPReceiver) Receive() (Event, error) {
	n, _, err := r.conn.ReadFromUDP(r.buf)
	if err != nil {
		return Event{}, errkind.New("control.Receive", errkind.IoFailure, err)
	}
	var ev Event
	dec := gob.NewDecoder(bytes.NewReader(r.buf[:n]))
	if err := dec.Decode(&ev); err != nil {
		return Event{}, errkind.New("control.Receive", errkind.ControlDecodeFailure, err)
	}
	return ev, nil
}

// Close releases the underlying socket.
func (r *UDPReceiver) Close() error { return r.conn.Close() }

// Run feeds decoded events onto out until Receive returns a fatal IoFailure
// or the connection is closed. Decode failures are reported via onDecodeErr
// and do not stop the loop (spec §7).
func (r *UDPReceiver) Run(out chan<- Event, onDecodeErr func(error)) {
	for {
		ev, err := r.Receive()
		if err != nil {
			if kindOf(err) == errkind.ControlDecodeFailure {
				if onDecodeErr != nil {
					onDecodeErr(err)
				}
				continue
			}
			return
		}
		out <- ev
	}
}

func kindOf(err error) errkind.Kind {
	if e, ok := err.(*errkind.Error); ok {
		return e.Kind
	}
	return errkind.IoFailure
}
