// The arena pits registered strategies against each other in local
// matches and keeps running standings on a live dashboard. Finished
// matches land in a parquet archive that -report reads back.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/mfranzen/rattler/arena/runner"
	"github.com/mfranzen/rattler/arena/store"
	"github.com/mfranzen/rattler/strategy"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	faintStyle = lipgloss.NewStyle().Faint(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func main() {
	strategies := flag.String("strategies", "alphabeta,montecarlo,ensemble", "Comma-separated strategies to pit against each other")
	rounds := flag.Int("rounds", 5, "Times each ordered pairing plays")
	workers := flag.Int("workers", 4, "Concurrent matches")
	budget := flag.Duration("budget", 100*time.Millisecond, "Per-move decision budget")
	trees := flag.Int("trees", 2, "Monte-Carlo trees per decision")
	outDir := flag.String("out-dir", "data/arena", "Directory for match result batches")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Base seed for match food placement")
	report := flag.Bool("report", false, "Print standings from the archive and exit")
	plain := flag.Bool("plain", false, "Log results instead of running the dashboard")
	flag.Parse()

	if *report {
		runReport(*outDir)
		return
	}

	names := splitNames(*strategies)
	if len(names) == 0 {
		log.Fatal("no strategies given")
	}
	for _, name := range names {
		if _, err := strategy.New(name, strategy.Options{}); err != nil {
			log.Fatal("bad strategy list", "err", err)
		}
	}

	opts := strategy.Options{Budget: *budget, Trees: *trees}
	matches := runner.Pairings(names, *rounds, opts, *seed)
	log.Info("starting arena", "strategies", len(names), "matches", len(matches), "workers", *workers, "budget", *budget)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := runner.Run(ctx, *workers, matches)

	var rows []store.MatchRow
	if *plain {
		rows = runPlain(results, len(matches))
	} else {
		final, err := tea.NewProgram(newModel(cancel, results, len(matches)), tea.WithAltScreen()).Run()
		if err != nil {
			log.Fatal("dashboard failed", "err", err)
		}
		rows = final.(model).rows
	}

	if len(rows) == 0 {
		log.Info("no finished matches to archive")
		return
	}
	path, err := store.WriteBatch(*outDir, rows)
	if err != nil {
		log.Fatal("archive write failed", "err", err)
	}
	log.Info("archived matches", "path", path, "matches", len(rows))

	fmt.Println()
	printStandings(store.Standings(rows))
}

// runPlain consumes results without the dashboard, logging one line per
// match. Useful over ssh and in scripts.
func runPlain(results <-chan runner.Result, total int) []store.MatchRow {
	started := time.Now()
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	var rows []store.MatchRow
	done := 0
	for {
		select {
		case res, ok := <-results:
			if !ok {
				return rows
			}
			done++
			if res.Err != nil {
				log.Error("match aborted", "red", res.Red, "blue", res.Blue, "err", res.Err)
				continue
			}
			rows = append(rows, toRow(res))
			log.Info("match finished",
				"n", fmt.Sprintf("%d/%d", done, total),
				"red", res.Red, "blue", res.Blue,
				"winner", orDraw(res.Winner), "turns", res.Turns)
		case <-ticker.C:
			rate := float64(done) / time.Since(started).Seconds()
			log.Info("progress", "done", done, "total", total, "per_sec", fmt.Sprintf("%.2f", rate))
		}
	}
}

type resultMsg runner.Result

type tickMsg time.Time

type doneMsg struct{}

type model struct {
	cancel   context.CancelFunc
	results  <-chan runner.Result
	tbl      table.Model
	rows     []store.MatchRow
	recent   []string
	failures int
	done     int
	total    int
	started  time.Time
	finished bool
}

func newModel(cancel context.CancelFunc, results <-chan runner.Result, total int) model {
	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "Strategy", Width: 14},
			{Title: "W", Width: 4},
			{Title: "L", Width: 4},
			{Title: "D", Width: 4},
			{Title: "Win%", Width: 6},
		}),
		table.WithHeight(8),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true)
	styles.Selected = lipgloss.NewStyle()
	tbl.SetStyles(styles)

	return model{
		cancel:  cancel,
		results: results,
		tbl:     tbl,
		total:   total,
		started: time.Now(),
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForResult(results <-chan runner.Result) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-results
		if !ok {
			return doneMsg{}
		}
		return resultMsg(res)
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForResult(m.results), tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.cancel()
			return m, tea.Quit
		}
	case tickMsg:
		if m.finished {
			return m, nil
		}
		return m, tickCmd()
	case resultMsg:
		res := runner.Result(msg)
		m.done++
		if res.Err != nil {
			m.failures++
			m.recent = push(m.recent, fmt.Sprintf("%s vs %s aborted: %v", res.Red, res.Blue, res.Err))
		} else {
			m.rows = append(m.rows, toRow(res))
			m.recent = push(m.recent, fmt.Sprintf("%s vs %s: %s in %d turns", res.Red, res.Blue, orDraw(res.Winner), res.Turns))
			m.tbl.SetRows(standingsRows(m.rows))
		}
		return m, waitForResult(m.results)
	case doneMsg:
		m.finished = true
		return m, nil
	}

	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := fmt.Sprintf("%d/%d matches", m.done, m.total)
	if m.failures > 0 {
		status += fmt.Sprintf(", %d aborted", m.failures)
	}
	status += fmt.Sprintf(", elapsed %s", time.Since(m.started).Round(time.Second))
	if m.finished {
		status += ", done"
	}

	var recent strings.Builder
	for _, line := range m.recent {
		recent.WriteString(line)
		recent.WriteByte('\n')
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("rattler arena"),
		faintStyle.Render(status),
		boxStyle.Render(m.tbl.View()),
		recent.String(),
		faintStyle.Render("press q to archive and quit"),
	)
}

func push(recent []string, line string) []string {
	recent = append([]string{line}, recent...)
	if len(recent) > 10 {
		recent = recent[:10]
	}
	return recent
}

func toRow(res runner.Result) store.MatchRow {
	return store.MatchRow{
		MatchID:    res.MatchID,
		Red:        res.Red,
		Blue:       res.Blue,
		Winner:     res.Winner,
		Turns:      res.Turns,
		Seed:       res.Seed,
		DurationMs: res.Elapsed.Milliseconds(),
	}
}

func standingsRows(rows []store.MatchRow) []table.Row {
	standings := store.Standings(rows)
	out := make([]table.Row, 0, len(standings))
	for _, st := range standings {
		out = append(out, table.Row{
			st.Strategy,
			strconv.Itoa(st.Wins),
			strconv.Itoa(st.Losses),
			strconv.Itoa(st.Draws),
			fmt.Sprintf("%.0f%%", st.WinRate()*100),
		})
	}
	return out
}

func runReport(dir string) {
	rows, err := store.ReadDir(dir)
	if err != nil {
		log.Fatal("archive read failed", "err", err)
	}
	if len(rows) == 0 {
		log.Fatal("no archived matches", "dir", dir)
	}

	fmt.Printf("%d matches under %s\n\n", len(rows), dir)
	printStandings(store.Standings(rows))
}

func printStandings(standings []store.Standing) {
	fmt.Printf("%-14s %5s %5s %5s %7s %10s\n", "strategy", "won", "lost", "drawn", "win%", "avg turns")
	for _, st := range standings {
		avgTurns := float64(st.Turns) / float64(st.Played())
		fmt.Printf("%-14s %5d %5d %5d %6.1f%% %10.1f\n",
			st.Strategy, st.Wins, st.Losses, st.Draws, st.WinRate()*100, avgTurns)
	}
}

func orDraw(winner string) string {
	if winner == "" {
		return "draw"
	}
	return winner
}

func splitNames(list string) []string {
	var names []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
