// cmd/pontoon-client/console.go
package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/jason-s-yu/pontoon/internal/cards"
	"github.com/jason-s-yu/pontoon/internal/client"
)

// ConsolePlayer is the interactive front end: it renders the hand and asks
// the user for each decision.
type ConsolePlayer struct {
	client.BasePlayer
	Name string
}

// Play prompts until the user makes a progressing move. Showing the hand
// and changing the bet are local and loop back to the prompt.
func (p *ConsolePlayer) Play(g client.Game) {
	for {
		p.showHand(g)
		choice, _ := pterm.DefaultInteractiveSelect.
			WithDefaultText("Your move").
			WithOptions([]string{"Twist", "Stick", "Change bet", "Toggle ace", "Leave table"}).
			Show()

		switch choice {
		case "Twist":
			if err := g.Twist(); err != nil {
				pterm.Error.Printfln("twist failed: %v", err)
			}
			return
		case "Stick":
			if err := g.Stand(); err != nil {
				pterm.Error.Printfln("stick failed: %v", err)
			}
			return
		case "Leave table":
			if err := g.Abandon(); err != nil {
				pterm.Error.Printfln("leave failed: %v", err)
			}
			return
		case "Change bet":
			p.changeBet(g)
		case "Toggle ace":
			p.toggleAce(g)
		}
	}
}

func (p *ConsolePlayer) showHand(g client.Game) {
	hand := cards.HandOf(g.Hand()...)
	box := pterm.DefaultBox.WithLeftPadding(2).WithRightPadding(2).WithTitle("Your hand").WithTitleTopCenter()
	box.Printfln("%s  (total %d, bet %d, balance %d)", hand, g.Total(), p.Bet(), p.Balance())
}

func (p *ConsolePlayer) changeBet(g client.Game) {
	raw, _ := pterm.DefaultInteractiveTextInput.
		WithDefaultText("New bet").
		WithDefaultValue(fmt.Sprintf("%d", p.Bet())).
		Show()
	if err := g.ChangeBet(atoiOr(raw, 0)); err != nil {
		pterm.Error.Printfln("bet rejected: %v", err)
		return
	}
	pterm.Info.Printfln("bet is now %d", p.Bet())
}

func (p *ConsolePlayer) toggleAce(g client.Game) {
	hand := g.Hand()
	var aces []string
	for i, c := range hand {
		if c.Rank == cards.Ace {
			value := "low"
			if c.AceHigh {
				value = "high"
			}
			aces = append(aces, fmt.Sprintf("%d: %s (%s)", i, c, value))
		}
	}
	if len(aces) == 0 {
		pterm.Info.Println("no aces in hand")
		return
	}
	choice, _ := pterm.DefaultInteractiveSelect.
		WithDefaultText("Which ace?").
		WithOptions(aces).
		Show()
	idx := atoiOr(strings.SplitN(choice, ":", 2)[0], 0)
	high := !hand[idx].AceHigh
	if err := g.SetAceHigh(idx, high); err != nil {
		pterm.Error.Printfln("toggle failed: %v", err)
	}
}

// Finish renders the outcome panel once the dealer reveals.
func (p *ConsolePlayer) Finish(res client.Result) {
	dealer := cards.HandOf(res.DealerHand...)
	box := pterm.DefaultBox.WithLeftPadding(2).WithRightPadding(2).WithTitle("Result").WithTitleTopCenter()
	if res.Won {
		tag := ""
		if res.Pontoon {
			tag = " with a PONTOON"
		}
		box.Printfln("%s wins %+d%s\nDealer held %s (total %d)\nBalance: %d",
			p.Name, res.Delta, tag, dealer, dealer.Total(), res.FinalBalance)
		pterm.Success.Println("You win!")
		return
	}
	box.Printfln("%s loses %d\nDealer held %s (total %d)\nBalance: %d",
		p.Name, -res.Delta, dealer, dealer.Total(), res.FinalBalance)
	pterm.Info.Println("Dealer wins.")
}
