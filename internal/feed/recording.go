package feed

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rotisserie/eris"
)

// Recording is an ordered list of feed messages, stored as newline-delimited
// JSON. Files ending in .zst are zstd-compressed.
type Recording struct {
	Messages []Message
}

// ReadRecording decodes newline-delimited messages from r. Blank lines are skipped.
func ReadRecording(r io.Reader) (*Recording, error) {
	rec := &Recording{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		bz := bytes.TrimSpace(sc.Bytes())
		if len(bz) == 0 {
			continue
		}
		m, err := Decode(bz)
		if err != nil {
			return nil, eris.Wrapf(err, "line %d", line)
		}
		rec.Messages = append(rec.Messages, m)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "read recording")
	}
	return rec, nil
}

// WriteTo encodes the recording as newline-delimited JSON.
func (rec *Recording) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, m := range rec.Messages {
		bz, err := Encode(m)
		if err != nil {
			return n, err
		}
		k, err := w.Write(append(bz, '\n'))
		n += int64(k)
		if err != nil {
			return n, eris.Wrap(err, "write recording")
		}
	}
	return n, nil
}

// Ticks returns the number of tick messages.
func (rec *Recording) Ticks() int {
	n := 0
	for _, m := range rec.Messages {
		if m.Type == TypeTick {
			n++
		}
	}
	return n
}

// Frames splits the recording so each group ends with one tick. Messages after
// the last tick form a final group.
func (rec *Recording) Frames() [][]Message {
	var out [][]Message
	var cur []Message
	for _, m := range rec.Messages {
		cur = append(cur, m)
		if m.Type == TypeTick {
			out = append(out, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// LoadRecording reads a recording file.
func LoadRecording(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open recording %s", path)
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, eris.Wrapf(err, "zstd %s", path)
		}
		defer zr.Close()
		r = zr
	}
	rec, err := ReadRecording(r)
	if err != nil {
		return nil, eris.Wrapf(err, "recording %s", path)
	}
	return rec, nil
}

// SaveRecording writes rec to path, compressing when path ends in .zst.
func SaveRecording(path string, rec *Recording) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create recording %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = eris.Wrapf(cerr, "close recording %s", path)
		}
	}()
	if !strings.HasSuffix(path, ".zst") {
		_, err = rec.WriteTo(f)
		return err
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		return eris.Wrapf(err, "zstd %s", path)
	}
	if _, err := rec.WriteTo(zw); err != nil {
		zw.Close()
		return err
	}
	return eris.Wrap(zw.Close(), "flush zstd")
}

// Playback feeds a recording to the frame loop without a network: each Drain
// returns the next tick group.
//
// A looping playback tracks the appearance each entity was last assigned. After
// the first pass it drops appearance messages that repeat the current
// assignment, so bound instances survive the wrap instead of being re-cloned.
type Playback struct {
	frames [][]Message
	next   int
	loop   bool
	passes int
	// assigned maps entity to the appearance key of its last assignment.
	assigned map[string]string
}

// Playback returns a player over rec. With loop set it restarts after the last group.
func (rec *Recording) Playback(loop bool) *Playback {
	return &Playback{frames: rec.Frames(), loop: loop, assigned: make(map[string]string)}
}

// Drain returns the next tick group, or nil once the recording is exhausted.
func (p *Playback) Drain() []Message {
	if p.next >= len(p.frames) {
		if !p.loop || len(p.frames) == 0 {
			return nil
		}
		p.next = 0
		p.passes++
	}
	g := p.frames[p.next]
	p.next++
	if !p.loop {
		return g
	}
	out := g
	if p.passes > 0 {
		out = make([]Message, 0, len(g))
	}
	for _, m := range g {
		switch m.Type {
		case TypeAppearance:
			key := appearanceKey(m)
			if p.passes > 0 && p.assigned[m.Entity] == key {
				continue
			}
			p.assigned[m.Entity] = key
		case TypeClear:
			delete(p.assigned, m.Entity)
		}
		if p.passes > 0 {
			out = append(out, m)
		}
	}
	return out
}

// Done reports whether a non-looping playback has run out.
func (p *Playback) Done() bool { return !p.loop && p.next >= len(p.frames) }

func appearanceKey(m Message) string {
	if m.Appearance != nil {
		return "#" + strconv.Itoa(*m.Appearance)
	}
	return m.AppearanceName
}
