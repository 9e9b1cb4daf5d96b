package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/wastewise/wastewise/internal/listing"
)

type myListingsState int

const (
	myListingsStateBrowse myListingsState = iota
	myListingsStateCreate
)

// MyListingsModel shows the seller's own listings and publishes new ones.
type MyListingsModel struct {
	CommonModel
	listingService *listing.Service

	state    myListingsState
	table    table.Model
	listings []*listing.Listing
	form     *huh.Form

	loading bool
	err     error
	status  string
}

func NewMyListingsModel(common CommonModel, listingSvc *listing.Service) MyListingsModel {
	return MyListingsModel{
		CommonModel:    common,
		listingService: listingSvc,
		table: newTable([]table.Column{
			{Title: "Listed", Width: 12},
			{Title: "Status", Width: 9},
			{Title: "Title", Width: 30},
			{Title: "Quantity", Width: 14},
			{Title: "Price/Unit", Width: 16},
			{Title: "Location", Width: 16},
		}),
		loading: true,
	}
}

func (m MyListingsModel) Title() string { return "My Listings" }
func (m MyListingsModel) ShortHelp() string {
	if m.state == myListingsStateCreate {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | n: new listing | r: refresh"
}

func (m MyListingsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m MyListingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadMyListingsMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.listings = msg.listings
			m.refreshTable()
		}

		return m, nil

	case createListingMsg:
		m.state = myListingsStateBrowse
		m.form = nil
		m.table.Focus()

		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}

		m.status = fmt.Sprintf("Published %q.", msg.title)

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == myListingsStateCreate {
		return m.updateCreate(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "n":
			return m.enterCreateMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

func (m MyListingsModel) enterCreateMode() (tea.Model, tea.Cmd) {
	if !m.Principal.Role.CanSell() {
		m.err = listing.ErrForbidden
		return m, nil
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("title").Title("Title").Validate(required("title")),
			huh.NewInput().Key("material").Title("Material type").
				Placeholder("Scrap Metal, PET, Cardboard...").
				Validate(required("material type")),
			huh.NewInput().Key("location").Title("Location").Validate(required("location")),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("unit").
				Title("Unit").
				Options(
					huh.NewOption("Tons", string(listing.UnitTons)),
					huh.NewOption("Kgs", string(listing.UnitKgs)),
					huh.NewOption("Units", string(listing.UnitUnits)),
				),
			huh.NewInput().Key("quantity").Title("Quantity").
				Validate(func(s string) error {
					_, err := parseAmount(s)
					return err
				}),
			huh.NewInput().Key("price").Title("Price per unit (KES)").
				Validate(func(s string) error {
					d, err := decimal.NewFromString(s)
					if err != nil {
						return fmt.Errorf("not a number")
					}
					if d.IsNegative() {
						return fmt.Errorf("cannot be negative")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = myListingsStateCreate
	m.err = nil
	m.status = ""
	m.table.Blur()

	return m, m.form.Init()
}

func (m MyListingsModel) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = myListingsStateBrowse
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

	return m, m.createCmd()
}

func (m MyListingsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading your listings...")
	}

	if m.state == myListingsStateCreate && m.form != nil {
		return padded.Render(panel.Render("New Listing\n\n" + m.form.View()))
	}

	counts := map[listing.Status]int{}
	for _, l := range m.listings {
		counts[l.Status]++
	}

	header := fmt.Sprintf("Active: %s | Pending: %s | Sold: %s",
		activeStyle(fmt.Sprint(counts[listing.StatusActive])),
		activeStyle(fmt.Sprint(counts[listing.StatusPending])),
		activeStyle(fmt.Sprint(counts[listing.StatusSold])),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	)

	return padded.Render(statusLine(m.status, m.err) + content)
}

func (m *MyListingsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.listings))
	for _, l := range m.listings {
		rows = append(rows, table.Row{
			FormatDate(l.CreatedAt),
			string(l.Status),
			l.Title,
			FormatQuantity(l.Quantity, string(l.Unit)),
			FormatMoney(l.PricePerUnit),
			l.LocationName,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadMyListingsMsg struct {
	listings []*listing.Listing
	err      error
}

func (m MyListingsModel) loadCmd() tea.Cmd {
	sellerID := m.Principal.UserID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		ls, err := m.listingService.ListBySeller(ctx, sellerID)
		return loadMyListingsMsg{listings: ls, err: err}
	}
}

type createListingMsg struct {
	title string
	err   error
}

func (m MyListingsModel) createCmd() tea.Cmd {
	quantity, _ := decimal.NewFromString(m.form.GetString("quantity"))
	price, _ := decimal.NewFromString(m.form.GetString("price"))

	params := listing.CreateParams{
		Title:        m.form.GetString("title"),
		MaterialType: m.form.GetString("material"),
		Quantity:     quantity,
		Unit:         listing.Unit(m.form.GetString("unit")),
		PricePerUnit: price,
		LocationName: m.form.GetString("location"),
	}
	p := m.Principal

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.listingService.Create(ctx, p, params)
		return createListingMsg{title: params.Title, err: err}
	}
}
