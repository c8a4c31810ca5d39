// Spectate tails a public Battlesnake game in the terminal. With no
// -game id it crawls the leaderboard for a recent one, then follows the
// engine's event stream and draws the board live.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/mfranzen/rattler/spectate/discovery"
	"github.com/mfranzen/rattler/spectate/stream"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	faintStyle = lipgloss.NewStyle().Faint(true)
	boardStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 2)
)

func main() {
	gameID := flag.String("game", "", "Game id to watch (default: most recent from the leaderboard)")
	list := flag.Int("list", 0, "Print this many recent game ids and exit")
	engine := flag.String("engine", stream.DefaultConfig().EngineURL, "Engine events URL template")
	maxPlayers := flag.Int("max-players", 10, "Leaderboard depth for discovery")
	delay := flag.Duration("delay", 500*time.Millisecond, "Delay between discovery requests")
	flag.Parse()

	discCfg := discovery.DefaultConfig()
	discCfg.MaxPlayers = *maxPlayers
	discCfg.RequestDelay = *delay
	disc := discovery.New(discCfg)

	if *list > 0 {
		games, err := disc.Recent(*list)
		if err != nil {
			log.Fatal("discovery failed", "err", err)
		}
		for _, g := range games {
			fmt.Printf("%-36s %-20s %s\n", g.ID, g.Player, g.Arena)
		}
		return
	}

	id := *gameID
	if id == "" {
		log.Info("looking for a recent public game")
		games, err := disc.Recent(1)
		if err != nil {
			log.Fatal("discovery failed", "err", err)
		}
		if len(games) == 0 {
			log.Fatal("no public games found on the leaderboard")
		}
		id = games[0].ID
		log.Info("watching", "game", id, "player", games[0].Player, "arena", games[0].Arena)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	streamCfg := stream.DefaultConfig()
	streamCfg.EngineURL = *engine
	frames, err := stream.New(streamCfg).Watch(ctx, id)
	if err != nil {
		log.Fatal("stream connect failed", "game", id, "err", err)
	}

	if _, err := tea.NewProgram(newModel(cancel, id, frames), tea.WithAltScreen()).Run(); err != nil {
		log.Fatal("spectator failed", "err", err)
	}
}

type frameMsg stream.Frame

type endMsg struct{}

type model struct {
	cancel  context.CancelFunc
	gameID  string
	frames  <-chan stream.Frame
	current *stream.Frame
	ended   bool
}

func newModel(cancel context.CancelFunc, gameID string, frames <-chan stream.Frame) model {
	return model{cancel: cancel, gameID: gameID, frames: frames}
}

func waitForFrame(frames <-chan stream.Frame) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-frames
		if !ok {
			return endMsg{}
		}
		return frameMsg(f)
	}
}

func (m model) Init() tea.Cmd {
	return waitForFrame(m.frames)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.cancel()
			return m, tea.Quit
		}
	case frameMsg:
		f := stream.Frame(msg)
		m.current = &f
		return m, waitForFrame(m.frames)
	case endMsg:
		m.ended = true
	}
	return m, nil
}

func (m model) View() string {
	header := titleStyle.Render("spectating " + m.gameID)

	if m.current == nil {
		status := "waiting for the first frame"
		if m.ended {
			status = "stream ended before any frame arrived"
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			faintStyle.Render(status),
			faintStyle.Render("press q to quit"),
		)
	}

	board := boardStyle.Render(strings.TrimRight(m.current.State.Render(""), "\n"))
	panel := panelStyle.Render(m.statusPanel())

	footer := "press q to quit"
	if m.ended {
		footer = "game over, press q to quit"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, board, " ", panel),
		faintStyle.Render(footer),
	)
}

func (m model) statusPanel() string {
	s := m.current.State

	var b strings.Builder
	fmt.Fprintf(&b, "turn %d\n\n", m.current.Turn)
	for i := range s.Snakes {
		sn := &s.Snakes[i]
		fmt.Fprintf(&b, "%c %-20s len %-3d hp %d\n", rune('A'+i), sn.Name, sn.Len(), sn.Health)
	}
	if len(m.current.Deaths) > 0 {
		b.WriteString("\n")
		names := make([]string, 0, len(m.current.Deaths))
		for name := range m.current.Deaths {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "x %-20s %s\n", name, m.current.Deaths[name])
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
