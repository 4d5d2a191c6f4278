package main

import (
	"github.com/gin-gonic/gin"

	"github.com/Zachkp/folio/internal/portfolio"
	"github.com/Zachkp/folio/internal/typing"
)

type heroFrame struct {
	Title        string `json:"title"`
	TitleDone    bool   `json:"titleDone"`
	Subtitle     string `json:"subtitle"`
	SubtitleDone bool   `json:"subtitleDone"`
}

// heroStream types the hero title and then its subtitle as server-sent
// events. The animators live as long as the request.
func heroStream(hc HeroConfig, clock typing.Clock) gin.HandlerFunc {
	return func(c *gin.Context) {
		changed := make(chan struct{}, 1)
		poke := func(typing.State) {
			select {
			case changed <- struct{}{}:
			default:
			}
		}

		title := typing.New(portfolio.HeroTitle, hc.TitleSpeed, hc.TitleDelay, typing.WithClock(clock), typing.OnChange(poke))
		subtitle := typing.New(portfolio.HeroSubtitle, hc.SubtitleSpeed, hc.SubtitleDelay, typing.WithClock(clock), typing.OnChange(poke))
		seq := typing.NewSequence(title, subtitle)
		defer seq.Cancel()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Status(200)

		seq.Start()
		ctx := c.Request.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
			}

			// frames are built from current state, so a missed poke only
			// skips an intermediate frame
			t, s := title.State(), subtitle.State()
			frame := heroFrame{
				Title:        t.Revealed,
				TitleDone:    t.Complete,
				Subtitle:     s.Revealed,
				SubtitleDone: s.Complete,
			}
			c.SSEvent("hero", frame)
			c.Writer.Flush()
			if frame.SubtitleDone {
				return
			}
		}
	}
}
