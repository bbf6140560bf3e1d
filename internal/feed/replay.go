package feed

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Replayer serves a recording to every websocket client that connects, one
// tick group per interval.
type Replayer struct {
	rec      *Recording
	interval time.Duration
	loop     bool
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewReplayer returns a replayer. With loop set the recording restarts after
// its last frame; appearance assignments are re-sent each pass.
func NewReplayer(rec *Recording, interval time.Duration, loop bool, log zerolog.Logger) *Replayer {
	return &Replayer{
		rec:      rec,
		interval: interval,
		loop:     loop,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler upgrades the request and streams the recording.
func (p *Replayer) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := p.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			p.log.Warn().Err(err).Msg("upgrade failed")
			return
		}
		defer conn.Close()
		log := p.log.With().Str("remote", r.RemoteAddr).Logger()
		log.Info().Int("ticks", p.rec.Ticks()).Msg("replay started")

		// Drain client frames so close handshakes are seen.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.NextReader(); err != nil {
					return
				}
			}
		}()

		t := time.NewTicker(p.interval)
		defer t.Stop()
		frames := p.rec.Frames()
		for len(frames) > 0 {
			for _, group := range frames {
				for _, m := range group {
					bz, err := Encode(m)
					if err != nil {
						log.Error().Err(err).Msg("encode")
						return
					}
					if err := conn.WriteMessage(websocket.TextMessage, bz); err != nil {
						log.Info().Err(err).Msg("replay stopped")
						return
					}
				}
				select {
				case <-gone:
					return
				case <-r.Context().Done():
					return
				case <-t.C:
				}
			}
			if !p.loop {
				break
			}
		}
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "end of recording")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		select {
		case <-gone:
		case <-time.After(time.Second):
		}
		log.Info().Msg("replay finished")
	}
}
