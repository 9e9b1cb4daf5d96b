package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/wastewise/wastewise/internal/listing"
	"github.com/wastewise/wastewise/internal/transaction"
)

type marketState int

const (
	marketStateBrowse marketState = iota
	marketStateOffer
)

// MarketModel lists the Active marketplace and lets buyers submit offers.
type MarketModel struct {
	CommonModel
	listingService *listing.Service
	txService      *transaction.Service

	state    marketState
	table    table.Model
	listings []*listing.Listing
	form     *huh.Form

	loading bool
	err     error
	status  string
}

func NewMarketModel(common CommonModel, listingSvc *listing.Service, txSvc *transaction.Service) MarketModel {
	return MarketModel{
		CommonModel:    common,
		listingService: listingSvc,
		txService:      txSvc,
		table: newTable([]table.Column{
			{Title: "Listed", Width: 12},
			{Title: "Title", Width: 30},
			{Title: "Material", Width: 16},
			{Title: "Quantity", Width: 14},
			{Title: "Price/Unit", Width: 16},
			{Title: "Location", Width: 16},
		}),
		loading: true,
	}
}

func (m MarketModel) Title() string { return "Marketplace" }
func (m MarketModel) ShortHelp() string {
	if m.state == marketStateOffer {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | o: make offer | r: refresh"
}

func (m MarketModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m MarketModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadMarketMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.listings = msg.listings
			m.refreshTable()
		}

		return m, nil

	case offerResultMsg:
		m.state = marketStateBrowse
		m.form = nil
		m.table.Focus()

		m.err = msg.err
		if msg.err == nil {
			m.status = fmt.Sprintf("Offer submitted on %q. Pay from My Deals to secure it.", msg.title)
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == marketStateOffer {
		return m.updateOffer(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "o":
			return m.enterOfferMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m MarketModel) selected() *listing.Listing {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.listings) {
		return nil
	}

	return m.listings[idx]
}

func (m MarketModel) enterOfferMode() (tea.Model, tea.Cmd) {
	l := m.selected()
	if l == nil {
		return m, nil
	}

	if !m.Principal.Role.CanBuy() {
		m.err = fmt.Errorf("your account (%s) cannot submit offers", m.Principal.Role)
		return m, nil
	}

	validAmount := func(s string) error {
		_, err := parseAmount(s)
		return err
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("quantity").
				Title(fmt.Sprintf("Quantity (%s)", l.Unit)).
				Placeholder(l.Quantity.String()).
				Validate(validAmount),

			huh.NewInput().
				Key("price").
				Title("Total price offered (KES)").
				Placeholder(l.AskingTotal().StringFixed(2)).
				Validate(validAmount),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = marketStateOffer
	m.err = nil
	m.status = ""
	m.table.Blur()

	return m, m.form.Init()
}

func (m MarketModel) updateOffer(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = marketStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.offerCmd()
}

func (m MarketModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading marketplace...")
	}

	header := fmt.Sprintf("Active listings: %s", activeStyle(fmt.Sprint(len(m.listings))))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	)

	if m.state == marketStateOffer && m.form != nil {
		if l := m.selected(); l != nil {
			info := fmt.Sprintf("Offer on %s\n\nListed: %s at %s per unit\nAsking total: %s\n\n",
				l.Title, FormatQuantity(l.Quantity, string(l.Unit)),
				FormatMoney(l.PricePerUnit), FormatMoney(l.AskingTotal()))
			content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel.Render(info+m.form.View()))
		}
	}

	return padded.Render(statusLine(m.status, m.err) + content)
}

func (m *MarketModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.listings))
	for _, l := range m.listings {
		rows = append(rows, table.Row{
			FormatDate(l.CreatedAt),
			l.Title,
			l.MaterialType,
			FormatQuantity(l.Quantity, string(l.Unit)),
			FormatMoney(l.PricePerUnit),
			l.LocationName,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadMarketMsg struct {
	listings []*listing.Listing
	err      error
}

func (m MarketModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		ls, err := m.listingService.ListActive(ctx)
		return loadMarketMsg{listings: ls, err: err}
	}
}

type offerResultMsg struct {
	title string
	err   error
}

func (m MarketModel) offerCmd() tea.Cmd {
	l := m.selected()
	if l == nil {
		return nil
	}

	// Both fields passed validation.
	quantity, _ := parseAmount(m.form.GetString("quantity"))
	price, _ := parseAmount(m.form.GetString("price"))
	p := m.Principal

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.txService.CreateOffer(ctx, p, transaction.OfferParams{
			ListingID:      l.ID,
			AgreedPrice:    price,
			AgreedQuantity: quantity,
		})

		return offerResultMsg{title: l.Title, err: err}
	}
}
