// feeddemo drives a scrollwindow.ScrollManager against an in-memory
// queryengine.Engine and renders the result with feedlog + bubbletea,
// so the windowing/pagination core can be exercised interactively from
// a real terminal rather than only from unit tests.
//
// Keys: up/k and down/j move the simulated viewport by one row;
// ctrl-c/q quits. There are no page-up/page-down bindings.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"scrollwindow"
	"scrollwindow/feedlog"
	"scrollwindow/queryengine"
)

type chatMessage struct {
	id   string
	ts   int64
	from string
	text string
}

func (m chatMessage) EntityID() scrollwindow.EntityID { return scrollwindow.EntityID(m.id) }
func (m chatMessage) Timestamp() int64                { return m.ts }

func seedMessages(n int) []chatMessage {
	msgs := make([]chatMessage, 0, n)
	for i := 0; i < n; i++ {
		msgs = append(msgs, chatMessage{
			id:   fmt.Sprintf("msg-%d", i),
			ts:   int64(1000 + i),
			from: "user",
			text: fmt.Sprintf("message #%d", i),
		})
	}
	return msgs
}

type model struct {
	manager  *scrollwindow.ScrollManager[chatMessage]
	view     *feedlog.View[chatMessage]
	firstIdx int
	lastIdx  int
}

type visibleSetMsg struct {
	vs scrollwindow.VisibleSet[chatMessage]
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			m.scroll(true)
		case "down", "j":
			m.scroll(false)
		}
	case visibleSetMsg:
		vs := msg.vs
		if len(vs.Items) > 0 {
			m.firstIdx, m.lastIdx = 0, len(vs.Items)-1
		}
	}
	return m, nil
}

func (m *model) scroll(backward bool) {
	vs := m.manager.VisibleSet()
	if len(vs.Items) == 0 {
		return
	}
	if backward && m.firstIdx > 0 {
		m.firstIdx--
		m.lastIdx--
	} else if !backward && m.lastIdx < len(vs.Items)-1 {
		m.firstIdx++
		m.lastIdx++
	}
	m.manager.OnScroll(vs.Items[m.firstIdx].EntityID(), vs.Items[m.lastIdx].EntityID(), backward)
}

func (m model) View() string {
	vs := m.manager.VisibleSet()
	header := lipgloss.NewStyle().Bold(true).Render("feeddemo — scrollwindow demo")
	return header + "\n" + m.view.Render(vs, m.manager.Mode())
}

func main() {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || height <= 0 {
		height = 24
	}
	if width <= 0 {
		width = 80
	}

	engine := queryengine.New[chatMessage]()
	engine.Seed(seedMessages(60))

	cfg := scrollwindow.Config{
		ViewportHeight: (height - 2) * 50,
		MinRowHeight:   50,
		BufferFactor:   2.0,
	}

	logger := log.New(os.Stderr, "scrollwindow: ", log.LstdFlags)
	manager, err := scrollwindow.NewScrollManager[chatMessage](cfg, engine, logger)
	if err != nil {
		log.Fatal(err)
	}

	view := feedlog.New(func(item chatMessage, isAnchor bool) string {
		return fmt.Sprintf("[%d] %s: %s", item.Timestamp(), item.from, item.text)
	}).SetSize(width, height-4)

	m := model{manager: manager, view: view}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := manager.Start(ctx); err != nil {
		log.Fatal(err)
	}

	p := tea.NewProgram(m)

	unsubscribe := manager.Subscribe(func(vs scrollwindow.VisibleSet[chatMessage]) {
		p.Send(visibleSetMsg{vs: vs})
	})
	defer unsubscribe()

	go func() {
		time.Sleep(3 * time.Second)
		engine.Append(chatMessage{id: "live-1", ts: 1060, from: "bot", text: "a new message just arrived"})
	}()

	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}
