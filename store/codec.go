package store

import (
	"encoding/binary"
	"fmt"
	"io"

	tb "github.com/transitcore/tripbased"
	"github.com/transitcore/tripbased/transfer"
)

// Wire format, per stopping event:
//
//	uint16 feedLen, feed bytes (utf8)
//	uint16 tripIdLen, tripId bytes (utf8)
//	byte   hasStartTime (0 or 1)
//	int32  startTime (big-endian, meaningless if hasStartTime == 0)
//	uint16 routeIdLen, routeId bytes (utf8)
//	int32  stopSequence (big-endian)
//
// A TransferMap encodes as uint32 entry count, then for each entry: the
// origin stopping event, uint32 destination count, and that many
// destination stopping events. This is the format every backend in this
// package persists, independent of whether the backing medium is a single
// file, a sqlite row, a postgres row, or a redis value.
func encodeStoppingEvent(w io.Writer, se tb.StoppingEvent) error {
	if err := writeString16(w, string(se.Feed)); err != nil {
		return err
	}
	if err := writeString16(w, se.Trip.TripId); err != nil {
		return err
	}
	hasStart := byte(0)
	if se.Trip.HasStartTime {
		hasStart = 1
	}
	if _, err := w.Write([]byte{hasStart}); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int32(se.Trip.StartTime)); err != nil {
		return err
	}
	if err := writeString16(w, se.Trip.RouteId); err != nil {
		return err
	}
	return binary.Write(w, binary.BigEndian, int32(se.StopSequence))
}

func decodeStoppingEvent(r io.Reader) (tb.StoppingEvent, error) {
	feed, err := readString16(r)
	if err != nil {
		return tb.StoppingEvent{}, err
	}
	tripId, err := readString16(r)
	if err != nil {
		return tb.StoppingEvent{}, err
	}
	var hasStart [1]byte
	if _, err := io.ReadFull(r, hasStart[:]); err != nil {
		return tb.StoppingEvent{}, err
	}
	var startTime int32
	if err := binary.Read(r, binary.BigEndian, &startTime); err != nil {
		return tb.StoppingEvent{}, err
	}
	routeId, err := readString16(r)
	if err != nil {
		return tb.StoppingEvent{}, err
	}
	var seq int32
	if err := binary.Read(r, binary.BigEndian, &seq); err != nil {
		return tb.StoppingEvent{}, err
	}
	return tb.StoppingEvent{
		Feed: tb.FeedId(feed),
		Trip: tb.TripDescriptor{
			TripId:       tripId,
			HasStartTime: hasStart[0] == 1,
			StartTime:    int(startTime),
			RouteId:      routeId,
		},
		StopSequence: int(seq),
	}, nil
}

func writeString16(w io.Writer, s string) error {
	if len(s) > 1<<16-1 {
		return fmt.Errorf("store: string %q exceeds wire length limit", s)
	}
	if err := binary.Write(w, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString16(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// encodeMap serialises an entire TransferMap to the wire format above.
func encodeMap(w io.Writer, m *transfer.Map) error {
	all := m.All()
	if err := binary.Write(w, binary.BigEndian, uint32(len(all))); err != nil {
		return err
	}
	for origin, dests := range all {
		if err := encodeStoppingEvent(w, origin); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, uint32(len(dests))); err != nil {
			return err
		}
		for _, d := range dests {
			if err := encodeStoppingEvent(w, d); err != nil {
				return err
			}
		}
	}
	return nil
}

// decodeMap reverses encodeMap.
func decodeMap(r io.Reader) (*transfer.Map, error) {
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	entries := make(map[tb.StoppingEvent][]tb.StoppingEvent, count)
	for i := uint32(0); i < count; i++ {
		origin, err := decodeStoppingEvent(r)
		if err != nil {
			return nil, err
		}
		var n uint32
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return nil, err
		}
		dests := make([]tb.StoppingEvent, n)
		for j := uint32(0); j < n; j++ {
			d, err := decodeStoppingEvent(r)
			if err != nil {
				return nil, err
			}
			dests[j] = d
		}
		entries[origin] = dests
	}
	return transfer.FromAll(entries), nil
}
