package termui

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/Zachkp/folio/internal/contact"
)

var (
	styleText    = tcell.StyleDefault
	styleMuted   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleAccent  = tcell.StyleDefault.Foreground(tcell.ColorDeepSkyBlue).Bold(true)
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleSuccess = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleFocus   = tcell.StyleDefault.Reverse(true)
)

// Draw renders every section that overlaps the screen. Sections whose
// detector has not reported them visible stay blank.
func (a *App) Draw() {
	a.screen.Clear()
	_, h := a.screen.Size()
	for _, s := range a.sections {
		top := s.rect.Y - a.scroll
		if top >= h || top+s.rect.H <= 0 {
			continue
		}
		if !s.detector.Visible() {
			continue
		}
		s.draw(a, top)
	}
	a.screen.Show()
}

// put writes text at (x, y) and returns the column after it. Cells off
// screen are skipped.
func (a *App) put(x, y int, text string, style tcell.Style) int {
	w, h := a.screen.Size()
	for _, r := range text {
		if y >= 0 && y < h && x >= 0 && x < w {
			a.screen.SetContent(x, y, r, nil, style)
		}
		x++
	}
	return x
}

func (a *App) putCentered(y int, text string, style tcell.Style) {
	w, _ := a.screen.Size()
	x := (w - len([]rune(text))) / 2
	a.put(max(x, 0), y, text, style)
}

// wrap splits text into lines of at most width runes on word boundaries.
func wrap(text string, width int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	var line []rune
	for _, word := range strings.Fields(text) {
		wr := []rune(word)
		if len(line) > 0 && len(line)+1+len(wr) > width {
			lines = append(lines, string(line))
			line = line[:0]
		}
		if len(line) > 0 {
			line = append(line, ' ')
		}
		line = append(line, wr...)
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return lines
}

func (a *App) drawHero(top int) {
	w, _ := a.screen.Size()
	s := a.section(regionHero)
	mid := top + s.rect.H/2 - 3

	title := a.title.State()
	a.putCentered(mid, title.Revealed+"|", styleAccent)

	sub := a.subtitle.State()
	for i, line := range wrap(sub.Revealed, min(w-4, 72)) {
		a.putCentered(mid+2+i, line, styleText)
	}

	if title.Complete {
		a.putCentered(top+s.rect.H-2, "scroll to explore ↓  (Tab: contact, Esc: quit)", styleMuted)
	}
}

func (a *App) drawProjects(top int) {
	w, _ := a.screen.Size()
	a.put(2, top, "Featured Projects", styleAccent)

	y := top + 2
	for _, p := range a.projects {
		x := a.put(2, y, p.Title, styleText.Bold(true))
		if p.Featured {
			a.put(x+1, y, "[Featured]", styleAccent)
		}
		lines := wrap(p.Description, w-6)
		for i := 0; i < 2 && i < len(lines); i++ {
			a.put(4, y+1+i, lines[i], styleMuted)
		}
		a.put(4, y+3, strings.Join(p.Tags, " · "), styleMuted)
		y += 5
	}
}

func (a *App) drawContact(top int) {
	w, _ := a.screen.Size()
	st := a.form.State()
	a.put(2, top, "Get In Touch", styleAccent)

	if st.Status == contact.StatusSubmitted {
		a.put(2, top+2, "Message Sent Successfully!", styleSuccess)
		for i, line := range wrap("Thank you for reaching out. I'll get back to you within 24 hours.", w-4) {
			a.put(2, top+3+i, line, styleText)
		}
		a.put(2, top+6, "Ctrl+R: send another message", styleMuted)
		return
	}

	labels := map[contact.Field]string{
		contact.FieldName:    "Name *",
		contact.FieldEmail:   "Email *",
		contact.FieldMessage: "Message *",
	}
	y := top + 2
	for i, f := range contact.Fields {
		a.put(2, y, labels[f], styleText)
		style := styleMuted
		if a.focus == i {
			style = styleFocus
		}
		value := st.Values.Get(f)
		field := []rune(value + strings.Repeat(" ", max(0, w-6-len([]rune(value)))))
		a.put(4, y+1, string(field[:min(len(field), max(w-6, 0))]), style)
		if msg, ok := st.Errors[f]; ok {
			a.put(4, y+2, msg, styleError)
		}
		y += 4
	}

	switch {
	case st.Status == contact.StatusSubmitting:
		a.put(2, y, "Sending...", styleMuted)
	case a.notice != "":
		a.put(2, y, a.notice, styleError)
	default:
		a.put(2, y, "Enter: send message", styleMuted)
	}
}
