package telegram

import (
	"fmt"

	"github.com/go-telegram/bot/models"
	"github.com/vexnode/numshop/internal/storage"
)

// MainKeyboard returns the main menu keyboard
func MainKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "🛒 Buy Number", CallbackData: "buy"},
				{Text: "💰 Deposit", CallbackData: "deposit"},
			},
			{
				{Text: "📊 Balance", CallbackData: "balance"},
				{Text: "📱 My Numbers", CallbackData: "numbers"},
			},
			{
				{Text: "🆘 Help", CallbackData: "help"},
			},
		},
	}
}

// CountriesKeyboard lists purchasable countries with price and stock
func CountriesKeyboard(countries []storage.Country, available map[string]int) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton

	for _, c := range countries {
		text := fmt.Sprintf("%s — ₹%d (%d free)", c.Name, c.Price, available[c.Code])
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: text, CallbackData: "buy:" + c.Code},
		})
	}

	rows = append(rows, []models.InlineKeyboardButton{
		{Text: "⬅️ Main Menu", CallbackData: "menu"},
	})

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ConfirmKeyboard returns the purchase confirmation keyboard
func ConfirmKeyboard(countryCode string, price int) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: fmt.Sprintf("✅ Buy — ₹%d", price), CallbackData: "confirm:" + countryCode},
				{Text: "❌ Cancel", CallbackData: "buy"},
			},
		},
	}
}

// DepositKeyboard returns preset deposit amounts
func DepositKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "₹100", CallbackData: "dep:100"},
				{Text: "₹200", CallbackData: "dep:200"},
			},
			{
				{Text: "₹500", CallbackData: "dep:500"},
				{Text: "₹1000", CallbackData: "dep:1000"},
			},
			{
				{Text: "Other Amount", CallbackData: "dep:other"},
			},
			{
				{Text: "⬅️ Main Menu", CallbackData: "menu"},
			},
		},
	}
}

// BackKeyboard returns a single back button
func BackKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "⬅️ Main Menu", CallbackData: "menu"},
			},
		},
	}
}

// AdminKeyboard returns the admin panel keyboard
func AdminKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "📊 Dashboard", CallbackData: "adm_dash"},
				{Text: "📱 Accounts", CallbackData: "adm_accounts"},
			},
			{
				{Text: "➕ Add Resources", CallbackData: "adm_add"},
			},
			{
				{Text: "⬅️ Main Menu", CallbackData: "menu"},
			},
		},
	}
}

// AdminAddKeyboard returns the resource-adding keyboard
func AdminAddKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "🌍 Add Country", CallbackData: "adm_add_country"},
			},
			{
				{Text: "📱 Add Account", CallbackData: "adm_add_account"},
			},
			{
				{Text: "🔢 Load Numbers", CallbackData: "adm_add_numbers"},
			},
			{
				{Text: "⬅️ Back", CallbackData: "admin"},
			},
		},
	}
}
