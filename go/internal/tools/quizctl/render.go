package main

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mcdev12/quizrunner/go/internal/challenge"
	"github.com/mcdev12/quizrunner/go/internal/game/events"
	"github.com/mcdev12/quizrunner/go/internal/models"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = cellStyle.Foreground(lipgloss.Color("#767676"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	eventStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00AFFF"))
)

// scoreboard orders players by score, then nick.
func scoreboard(players []models.Player) []models.Player {
	out := slices.Clone(players)
	slices.SortStableFunc(out, func(a, b models.Player) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(strings.ToLower(a.Nick), strings.ToLower(b.Nick))
	})
	return out
}

func renderState(state models.GameState) string {
	var b strings.Builder

	header := fmt.Sprintf("%s  round %d/%d", strings.ToUpper(string(state.Status)), state.Round, challenge.MaxRounds())
	if state.Mode != "" {
		header += "  " + string(state.Mode)
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")

	if len(state.Players) == 0 {
		b.WriteString(mutedStyle.Render("no players signed up"))
		return b.String()
	}

	players := scoreboard(state.Players)
	rows := make([][]string, 0, len(players))
	for i, p := range players {
		status := "playing"
		if !p.Playing {
			status = "surrendered"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			p.Nick,
			strconv.Itoa(p.Score),
			fmt.Sprintf("%d/%d", p.CorrectCount(), len(p.Log)),
			fmt.Sprintf("%dms", p.PacingInterval),
			status,
			p.ID.String(),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("#", "NICK", "SCORE", "CORRECT", "PACE", "STATUS", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(players) && !players[row].Playing {
				return mutedStyle
			}
			return cellStyle
		})

	b.WriteString(t.Render())
	return b.String()
}

func renderEvent(ev events.Event) string {
	line := eventStyle.Render(string(ev.Type))
	line = ev.Timestamp.Format("15:04:05") + " " + line

	payload, err := events.ParsePayload(ev)
	if err != nil {
		return line + " " + errorStyle.Render(err.Error())
	}

	switch p := payload.(type) {
	case *events.PlayerAnswerPayload:
		pts := okStyle
		if p.Entry.Points <= 0 {
			pts = errorStyle
		}
		return fmt.Sprintf("%s %s %s score=%d pace=%dms", line, p.Nick,
			pts.Render(fmt.Sprintf("%+d", p.Entry.Points)), p.Score, p.PacingInterval)
	case *events.PlayerJoinedPayload:
		return fmt.Sprintf("%s %s %s", line, p.Nick, p.Endpoint)
	case *events.PlayerStatusPayload:
		return fmt.Sprintf("%s %s", line, p.Nick)
	case *events.PlayerEndpointChangedPayload:
		return fmt.Sprintf("%s %s %s -> %s", line, p.Nick, p.OldEndpoint, p.Endpoint)
	case *events.RoundChangedPayload:
		return fmt.Sprintf("%s %d -> %d", line, p.PreviousRound, p.Round)
	case *events.GameStatusPayload:
		return fmt.Sprintf("%s status=%s round=%d", line, p.Status, p.Round)
	default:
		return line
	}
}
