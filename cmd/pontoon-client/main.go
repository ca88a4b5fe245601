// cmd/pontoon-client/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/pontoon/internal/client"
	"github.com/jason-s-yu/pontoon/internal/config"
	"github.com/jason-s-yu/pontoon/internal/ledger"
	"github.com/jason-s-yu/pontoon/internal/registry"
)

func main() {
	var (
		host      = flag.String("host", "", "game server host (empty: ask the directory service)")
		port      = flag.Int("port", config.GamePort(), "game server port")
		name      = flag.String("name", "player", "player name for the bankroll ledger")
		balance   = flag.Int("balance", 100, "starting balance for unknown players")
		bet       = flag.Int("bet", 10, "stake for this hand")
		threshold = flag.Int("auto", 0, "play automatically, twisting below this total")
	)
	flag.Parse()

	logger := logrus.New()
	if level, err := logrus.ParseLevel(config.GetEnv("LOG_LEVEL", "warn")); err == nil {
		logger.SetLevel(level)
	}

	ctx := context.Background()

	store, closeStore, err := openLedger(ctx)
	if err != nil {
		pterm.Error.Printfln("ledger unavailable: %v", err)
		os.Exit(1)
	}
	defer closeStore()

	bankroll, known, err := store.Balance(ctx, *name)
	if err != nil {
		pterm.Error.Printfln("balance lookup failed: %v", err)
		os.Exit(1)
	}
	if !known {
		bankroll = *balance
	}

	var player client.Player
	if *threshold > 0 {
		bot, err := client.NewThresholdPlayer(bankroll, *bet, *threshold)
		if err != nil {
			pterm.Error.Printfln("bad bet: %v", err)
			os.Exit(1)
		}
		player = bot
	} else {
		banner()
		console := &ConsolePlayer{Name: *name}
		console.SetBalance(bankroll)
		if err := console.SetBet(*bet); err != nil {
			pterm.Error.Printfln("bad bet: %v", err)
			os.Exit(1)
		}
		player = console
	}

	target := *host
	if target == "" {
		target, *port = pickHost(ctx)
	}

	session, err := client.Dial(ctx, client.URL(target, *port), player, logger)
	if err != nil {
		pterm.Error.Printfln("disconnected: could not reach %s:%d", target, *port)
		os.Exit(1)
	}

	res, err := session.Run(ctx)
	if errors.Is(err, client.ErrAbandoned) {
		pterm.Info.Println("left the table")
		if err := store.SetBalance(ctx, *name, player.Balance()); err != nil {
			pterm.Error.Printfln("could not persist balance: %v", err)
			os.Exit(1)
		}
		return
	}
	if err != nil {
		pterm.Error.Println("disconnected before the hand finished")
		os.Exit(1)
	}

	if *threshold > 0 {
		outcome := "lost"
		if res.Won {
			outcome = "won"
		}
		fmt.Printf("%s %+d credits (pontoon=%v), balance %d\n", outcome, res.Delta, res.Pontoon, res.FinalBalance)
	}

	if err := store.SetBalance(ctx, *name, res.FinalBalance); err != nil {
		pterm.Error.Printfln("could not persist balance: %v", err)
		os.Exit(1)
	}
}

// openLedger picks the Postgres ledger when DATABASE_URL is set, else the
// in-process one.
func openLedger(ctx context.Context) (ledger.Store, func(), error) {
	if connStr := config.GetEnv("DATABASE_URL", ""); connStr != "" {
		pg, err := ledger.NewPostgresStore(ctx, connStr)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}
	return ledger.NewMemoryStore(), func() {}, nil
}

// pickHost queries the directory service and lets the player choose a
// table.
func pickHost(ctx context.Context) (string, int) {
	hosts, err := registry.ListHosts(ctx, config.RegistryAddr())
	if err != nil {
		pterm.Error.Printfln("directory service unreachable: %v", err)
		os.Exit(1)
	}
	if len(hosts) == 0 {
		pterm.Error.Println("no game servers registered")
		os.Exit(1)
	}
	if len(hosts) == 1 {
		pterm.Info.Printfln("joining %s:%d", hosts[0].Host, hosts[0].Port)
		return hosts[0].Host, hosts[0].Port
	}

	options := make([]string, len(hosts))
	for i, h := range hosts {
		options[i] = fmt.Sprintf("%s:%d", h.Host, h.Port)
	}
	choice, _ := pterm.DefaultInteractiveSelect.WithDefaultText("Choose a table").WithOptions(options).Show()
	for i, opt := range options {
		if opt == choice {
			return hosts[i].Host, hosts[i].Port
		}
	}
	return hosts[0].Host, hosts[0].Port
}

func banner() {
	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("P", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("ontoon", pterm.FgDarkGray.ToStyle()),
	).Render()
	pterm.Println()
}

func atoiOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
