package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/atinyakov/FinWise/internal/client/connectivity"
	"github.com/atinyakov/FinWise/internal/models"
)

var (
	advisoryBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("214")).
				Padding(0, 1)
	advisoryTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("214"))
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("82"))
	incomeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))
	expenseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
)

// renderSurface draws an advisory box or an error line.
func renderSurface(s connectivity.Surface, baseURL string) string {
	if s.Presentation != connectivity.PresentAdvisory {
		return errorStyle.Render(s.Title+":") + " " + s.Message
	}

	var b strings.Builder
	b.WriteString(advisoryTitleStyle.Render(s.Title))
	b.WriteString("\n")
	b.WriteString(s.Message)
	if baseURL != "" {
		fmt.Fprintf(&b, "\nServer: %s", baseURL)
	}
	b.WriteString("\n\nPossible causes:")
	for _, c := range connectivity.AdvisoryCauses {
		b.WriteString("\n  - " + c)
	}
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("Use 'finwise url set <url>' to point at another server."))
	return advisoryBoxStyle.Render(b.String())
}

func renderLoginHint(s connectivity.Surface) string {
	return hintStyle.Render(fmt.Sprintf("%s. %s Run 'finwise login'.", s.Title, s.Message))
}

func renderOK(msg string) string {
	return okStyle.Render(msg)
}

func renderTransactions(txs []models.Transaction, currency string) string {
	if len(txs) == 0 {
		return hintStyle.Render("No transactions.")
	}
	var b strings.Builder
	for i, tx := range txs {
		if i > 0 {
			b.WriteString("\n")
		}
		amount := fmt.Sprintf("%10.2f %s", tx.Amount, currency)
		if tx.Type == models.Expense {
			amount = expenseStyle.Render("-" + strings.TrimSpace(amount))
		} else {
			amount = incomeStyle.Render("+" + strings.TrimSpace(amount))
		}
		fmt.Fprintf(&b, "%s  %-36s  %-14s %s", tx.Date.Format("2006-01-02"), tx.ID, tx.Category, amount)
		if tx.Note != "" {
			b.WriteString("  " + hintStyle.Render(tx.Note))
		}
	}
	return b.String()
}

func renderProfile(u *models.User) string {
	return fmt.Sprintf("%s <%s>\nCurrency: %s\nSign-in:  %s", u.FullName, u.Email, u.Currency, u.Provider)
}
