// Package discovery finds recent public games to spectate by crawling
// the play.battlesnake.com leaderboards.
package discovery

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "rattler-spectate/1.0"

// Config tunes the leaderboard crawl.
type Config struct {
	// LeaderboardURLs are crawled in order, best players first.
	LeaderboardURLs []string
	// RequestDelay spaces page fetches out of politeness.
	RequestDelay time.Duration
	// MaxPlayers bounds how deep into each leaderboard the crawl goes.
	// Zero means no bound.
	MaxPlayers int
}

func DefaultConfig() Config {
	return Config{
		LeaderboardURLs: []string{
			"https://play.battlesnake.com/leaderboard/standard",
			"https://play.battlesnake.com/leaderboard/standard-duels",
		},
		RequestDelay: 500 * time.Millisecond,
		MaxPlayers:   10,
	}
}

// Game is one spectatable game found on a player's stats page.
type Game struct {
	ID     string
	Player string
	Arena  string
}

// Client crawls leaderboards for game ids.
type Client struct {
	config   Config
	client   *http.Client
	gameIDRe *regexp.Regexp
	playerRe *regexp.Regexp
	arenaRe  *regexp.Regexp
}

func New(config Config) *Client {
	return &Client{
		config:   config,
		client:   &http.Client{Timeout: 30 * time.Second},
		gameIDRe: regexp.MustCompile(`/game/([a-f0-9-]+)`),
		playerRe: regexp.MustCompile(`/leaderboard/[^/]+/([^/]+)/stats`),
		arenaRe:  regexp.MustCompile(`/leaderboard/([^/]+)/?$`),
	}
}

// Recent returns up to limit distinct game ids, walking the configured
// leaderboards top player first. A page that fails to fetch skips to
// the next player; an error comes back only when nothing was found.
func (c *Client) Recent(limit int) ([]Game, error) {
	if limit <= 0 {
		limit = 1
	}

	var games []Game
	seen := make(map[string]bool)
	var firstErr error

	for _, leaderboardURL := range c.config.LeaderboardURLs {
		players, arena, err := c.leaderboardPlayers(leaderboardURL)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if c.config.MaxPlayers > 0 && len(players) > c.config.MaxPlayers {
			players = players[:c.config.MaxPlayers]
		}

		for _, player := range players {
			time.Sleep(c.config.RequestDelay)

			ids, err := c.playerGames(player.statsURL)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			for _, id := range ids {
				if seen[id] {
					continue
				}
				seen[id] = true
				games = append(games, Game{ID: id, Player: player.username, Arena: arena})
				if len(games) >= limit {
					return games, nil
				}
			}
		}
	}

	if len(games) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return games, nil
}

type playerInfo struct {
	username string
	statsURL string
}

// leaderboardPlayers extracts the ranked players from a leaderboard
// page. Stats links resolve against the page URL, so the crawl follows
// whatever host served the leaderboard.
func (c *Client) leaderboardPlayers(leaderboardURL string) ([]playerInfo, string, error) {
	base, err := url.Parse(leaderboardURL)
	if err != nil {
		return nil, "", fmt.Errorf("parse leaderboard url: %w", err)
	}

	doc, err := c.fetch(leaderboardURL)
	if err != nil {
		return nil, "", err
	}

	arena := "unknown"
	if m := c.arenaRe.FindStringSubmatch(base.Path); len(m) >= 2 {
		arena = m[1]
	}

	var players []playerInfo
	seen := make(map[string]bool)
	doc.Find("a[href*='/leaderboard/']").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		m := c.playerRe.FindStringSubmatch(href)
		if len(m) < 2 || seen[m[1]] {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		seen[m[1]] = true
		players = append(players, playerInfo{
			username: m[1],
			statsURL: base.ResolveReference(ref).String(),
		})
	})

	return players, arena, nil
}

// playerGames extracts the game ids linked from a stats page, newest
// first in document order.
func (c *Client) playerGames(statsURL string) ([]string, error) {
	doc, err := c.fetch(statsURL)
	if err != nil {
		return nil, err
	}

	var ids []string
	seen := make(map[string]bool)
	doc.Find("a[href*='/game/']").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		if m := c.gameIDRe.FindStringSubmatch(href); len(m) >= 2 && !seen[m[1]] {
			seen[m[1]] = true
			ids = append(ids, m[1])
		}
	})
	return ids, nil
}

func (c *Client) fetch(pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}
