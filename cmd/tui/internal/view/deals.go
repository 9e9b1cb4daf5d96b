package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wastewise/wastewise/internal/transaction"
)

// DealsModel shows the transactions the company takes part in and drives
// them through payment, delivery and receipt.
type DealsModel struct {
	CommonModel
	txService *transaction.Service

	table table.Model
	txs   []*transaction.Transaction

	loading bool
	err     error
	status  string
}

func NewDealsModel(common CommonModel, txSvc *transaction.Service) DealsModel {
	return DealsModel{
		CommonModel: common,
		txService:   txSvc,
		table: newTable([]table.Column{
			{Title: "Opened", Width: 12},
			{Title: "Side", Width: 7},
			{Title: "Listing", Width: 28},
			{Title: "Quantity", Width: 14},
			{Title: "Agreed", Width: 16},
			{Title: "Status", Width: 16},
		}),
		loading: true,
	}
}

func (m DealsModel) Title() string     { return "My Deals" }
func (m DealsModel) ShortHelp() string { return "Esc: back | p: pay | d: mark delivered | c: confirm receipt | r: refresh" }

func (m DealsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DealsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDealsMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.txs = msg.txs
			m.refreshTable()
		}

		return m, nil

	case advanceResultMsg:
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}

		m.status = msg.done

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 14)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "p":
			return m, m.advanceCmd(transaction.OpPay)
		case "d":
			return m, m.advanceCmd(transaction.OpMarkDelivered)
		case "c":
			return m, m.advanceCmd(transaction.OpConfirmReceipt)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m DealsModel) selected() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m DealsModel) side(tx *transaction.Transaction) string {
	if tx.SellerID == m.Principal.UserID {
		return "Seller"
	}

	return "Buyer"
}

func (m DealsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading deals...")
	}

	content := boxed(m.table.View())

	if tx := m.selected(); tx != nil {
		title := "listing"
		if tx.Listing != nil {
			title = tx.Listing.Title
		}

		info := fmt.Sprintf(
			"%s\n\nStatus: %s\nAgreed price: %s\nCommission (%s%%): %s\nSeller payout: %s\n\n%s",
			title,
			activeStyle(string(tx.Status)),
			FormatMoney(tx.AgreedPrice),
			tx.CommissionRate.Shift(2).String(),
			FormatMoney(tx.Commission()),
			FormatMoney(tx.SellerPayout()),
			faint.Render(nextStep(tx, m.side(tx))),
		)
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel.Render(info))
	}

	return padded.Render(statusLine(m.status, m.err) + content)
}

// nextStep describes what the viewing side can do with the deal now.
func nextStep(tx *transaction.Transaction, side string) string {
	switch {
	case tx.Status == transaction.StatusPendingPayment && side == "Buyer":
		return "Press p to pay into escrow."
	case tx.Status == transaction.StatusPaidToEscrow && side == "Seller":
		return "Funds are in escrow. Press d once delivered."
	case tx.Status == transaction.StatusDelivered && side == "Buyer":
		return "Press c to confirm receipt and release funds."
	case tx.Status == transaction.StatusCompleted:
		return "Deal closed."
	}

	return "Waiting on the other party."
}

func (m *DealsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		title, unit := "", ""
		if tx.Listing != nil {
			title, unit = tx.Listing.Title, string(tx.Listing.Unit)
		}

		rows = append(rows, table.Row{
			FormatDate(tx.CreatedAt),
			m.side(tx),
			title,
			FormatQuantity(tx.AgreedQuantity, unit),
			FormatMoney(tx.AgreedPrice),
			string(tx.Status),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadDealsMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m DealsModel) loadCmd() tea.Cmd {
	p := m.Principal

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.ListForUser(ctx, p)
		return loadDealsMsg{txs: txs, err: err}
	}
}

type advanceResultMsg struct {
	done string
	err  error
}

func (m DealsModel) advanceCmd(op transaction.Op) tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	p := m.Principal

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var (
			res *transaction.Result
			err error
		)

		switch op {
		case transaction.OpPay:
			res, err = m.txService.Pay(ctx, p, tx.ID)
		case transaction.OpMarkDelivered:
			res, err = m.txService.MarkDelivered(ctx, p, tx.ID)
		case transaction.OpConfirmReceipt:
			res, err = m.txService.ConfirmReceipt(ctx, p, tx.ID)
		}

		if err != nil {
			return advanceResultMsg{err: err}
		}

		return advanceResultMsg{done: fmt.Sprintf("Deal is now %s.", res.Transaction.Status)}
	}
}
