package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wastewise/wastewise/cmd/tui/internal/view"
	"github.com/wastewise/wastewise/internal/config"
	"github.com/wastewise/wastewise/internal/database"
	"github.com/wastewise/wastewise/internal/listing"
	listingStore "github.com/wastewise/wastewise/internal/listing/store"
	"github.com/wastewise/wastewise/internal/transaction"
	txStore "github.com/wastewise/wastewise/internal/transaction/store"
	"github.com/wastewise/wastewise/internal/user"
	userStore "github.com/wastewise/wastewise/internal/user/store"
)

type model struct {
	userService    *user.Service
	listingService *listing.Service
	txService      *transaction.Service

	common      view.CommonModel
	companyName string

	currentView View
	screen      view.View
}

type View int

const (
	ViewLogin      View = 0
	ViewMenu       View = 1
	ViewMarket     View = 2
	ViewMyListings View = 3
	ViewDeals      View = 4
)

func initialModel() model {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	commission, err := cfg.Commission()
	if err != nil {
		slog.Error("invalid commission rate", "error", err)
		os.Exit(1)
	}

	userSvc := user.NewService(userStore.New(db))
	listingSvc := listing.NewService(listingStore.New(db))
	txSvc := transaction.NewService(txStore.New(db), listingSvc,
		transaction.WithCommissionRate(commission),
		transaction.WithStrictOfferQuantity(cfg.Market.StrictOfferQuantity),
	)

	return model{
		userService:    userSvc,
		listingService: listingSvc,
		txService:      txSvc,
		currentView:    ViewLogin,
		screen:         view.NewLoginModel(userSvc),
	}
}

func (m model) Init() tea.Cmd {
	return m.screen.Init()
}

func (m model) open(v View, screen view.View) (tea.Model, tea.Cmd) {
	m.currentView = v
	m.screen = screen

	return m, screen.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				return m.open(ViewMarket, view.NewMarketModel(m.common, m.listingService, m.txService))
			case "2":
				return m.open(ViewMyListings, view.NewMyListingsModel(m.common, m.listingService))
			case "3":
				return m.open(ViewDeals, view.NewDealsModel(m.common, m.txService))
			}

			return m, nil
		}
	case view.LoggedInMsg:
		m.common = view.CommonModel{Principal: msg.Principal}
		m.companyName = msg.CompanyName
		m.currentView = ViewMenu
		m.screen = nil

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		m.screen = nil

		return m, nil
	}

	if m.screen == nil {
		return m, nil
	}

	next, cmd := m.screen.Update(msg)
	if s, ok := next.(view.View); ok {
		m.screen = s
	}

	return m, cmd
}

func (m model) View() string {
	if m.currentView == ViewMenu {
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("WasteWise Trading Desk\n%s (%s)\n\n", m.companyName, m.common.Principal.Role) +
				"1. Browse Marketplace\n" +
				"2. My Listings\n" +
				"3. My Deals\n\n" +
				"q. Quit",
		)
	}

	if m.screen == nil {
		return "Unknown View"
	}

	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(m.screen.ShortHelp())
	title := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(m.screen.Title())

	return lipgloss.JoinVertical(lipgloss.Left, title, m.screen.View(), help)
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
