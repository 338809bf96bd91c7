package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/vexnode/numshop/internal/storage"
	"github.com/vexnode/numshop/internal/upi"
)

func (b *Bot) startHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	from := update.Message.From
	if err := b.storage.CreateUser(from.ID, from.Username); err != nil {
		b.log.Error("create user", "user_id", from.ID, "error", err)
	}

	name := from.FirstName
	if name == "" {
		name = from.Username
	}

	b.log.Info("user started", "user_id", from.ID, "username", from.Username)
	b.sendMessage(ctx, update.Message.Chat.ID, Render(MsgWelcome, P{Name: name}), MainKeyboard())
}

func (b *Bot) helpHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := Render(MsgHelp, P{
		UPIID:   b.cfg.UPIID,
		Minutes: int(b.cfg.NumberLease.Minutes()),
	})
	b.sendMessage(ctx, update.Message.Chat.ID, text, MainKeyboard())
}

// defaultHandler routes free-text input through the FSM.
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	userID := update.Message.From.ID
	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		return
	}

	state := b.states.Get(userID)
	if state == nil {
		b.sendMessage(ctx, update.Message.Chat.ID, Render(MsgUnknown, P{}), MainKeyboard())
		return
	}

	switch state.State {
	case StateWaitDepositAmount:
		b.handleWaitDepositAmount(ctx, update.Message, text)
	case StateWaitUTR:
		b.handleWaitUTR(ctx, update.Message, text, state)
	case StateWaitCountry:
		b.handleWaitCountry(ctx, update.Message, text)
	case StateWaitAccount:
		b.handleWaitAccount(ctx, update.Message, text)
	case StateWaitNumbers:
		b.handleWaitNumbers(ctx, update.Message, text)
	}
}

func (b *Bot) callbackHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	cb := update.CallbackQuery
	data := cb.Data

	// Answer callback to remove loading state
	tgBot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: cb.ID,
	})

	switch {
	case data == "menu":
		b.showMainMenu(ctx, cb)
	case data == "buy":
		b.showCountries(ctx, cb)
	case strings.HasPrefix(data, "buy:"):
		b.showConfirm(ctx, cb, strings.TrimPrefix(data, "buy:"))
	case strings.HasPrefix(data, "confirm:"):
		b.handlePurchase(ctx, cb, strings.TrimPrefix(data, "confirm:"))
	case data == "deposit":
		b.showDeposit(ctx, cb)
	case strings.HasPrefix(data, "dep:"):
		b.handleDepositChoice(ctx, cb, strings.TrimPrefix(data, "dep:"))
	case data == "balance":
		b.showBalance(ctx, cb)
	case data == "numbers":
		b.showMyNumbers(ctx, cb)
	case data == "help":
		b.editMessage(ctx, cb.Message, Render(MsgHelp, P{
			UPIID:   b.cfg.UPIID,
			Minutes: int(b.cfg.NumberLease.Minutes()),
		}), BackKeyboard())
	case data == "admin":
		b.showAdminPanel(ctx, cb)
	case data == "adm_dash":
		b.showDashboard(ctx, cb)
	case data == "adm_accounts":
		b.showAccounts(ctx, cb)
	case data == "adm_add":
		b.showAdminAdd(ctx, cb)
	case strings.HasPrefix(data, "adm_add_"):
		b.handleAdminAdd(ctx, cb, strings.TrimPrefix(data, "adm_add_"))
	default:
		b.log.Warn("unknown callback", "data", data, "user_id", cb.From.ID)
	}
}

func (b *Bot) showMainMenu(ctx context.Context, cb *models.CallbackQuery) {
	b.states.Clear(cb.From.ID)

	name := cb.From.FirstName
	if name == "" {
		name = cb.From.Username
	}
	b.editMessage(ctx, cb.Message, Render(MsgWelcome, P{Name: name}), MainKeyboard())
}

// resolveUser loads the caller's row, handling the not-registered and
// banned cases with user-visible replies.
func (b *Bot) resolveUser(ctx context.Context, cb *models.CallbackQuery) *storage.User {
	user, err := b.storage.GetUser(cb.From.ID)
	if errors.Is(err, storage.ErrNotFound) {
		b.editMessage(ctx, cb.Message, Render(MsgStartFirst, P{}), nil)
		return nil
	}
	if err != nil {
		b.log.Error("get user", "user_id", cb.From.ID, "error", err)
		b.editMessage(ctx, cb.Message, Render(MsgPurchaseFailed, P{}), MainKeyboard())
		return nil
	}
	if user.IsBanned {
		b.editMessage(ctx, cb.Message, Render(MsgBanned, P{}), nil)
		return nil
	}
	return user
}

// --- Buy flow ---

func (b *Bot) showCountries(ctx context.Context, cb *models.CallbackQuery) {
	countries, err := b.storage.ListCountries()
	if err != nil {
		b.log.Error("list countries", "error", err)
		return
	}

	if len(countries) == 0 {
		b.editMessage(ctx, cb.Message, Render(MsgNoCountries, P{}), BackKeyboard())
		return
	}

	available := make(map[string]int, len(countries))
	for _, c := range countries {
		n, err := b.storage.AvailableNumberCount(c.Code)
		if err != nil {
			b.log.Error("count numbers", "country", c.Code, "error", err)
		}
		available[c.Code] = n
	}

	text := Render(MsgCountries, P{Minutes: int(b.cfg.NumberLease.Minutes())})
	b.editMessage(ctx, cb.Message, text, CountriesKeyboard(countries, available))
}

func (b *Bot) showConfirm(ctx context.Context, cb *models.CallbackQuery, code string) {
	country, err := b.storage.GetCountry(code)
	if errors.Is(err, storage.ErrCountryNotFound) {
		b.showCountries(ctx, cb)
		return
	}
	if err != nil {
		b.log.Error("get country", "code", code, "error", err)
		return
	}

	available, err := b.storage.AvailableNumberCount(code)
	if err != nil {
		b.log.Error("count numbers", "country", code, "error", err)
	}
	if available == 0 {
		b.editMessage(ctx, cb.Message, Render(MsgUnavailable, P{Country: country.Name}), BackKeyboard())
		return
	}

	text := Render(MsgConfirmPurchase, P{
		Country:   country.Name,
		Price:     country.Price,
		Available: available,
		Minutes:   int(b.cfg.NumberLease.Minutes()),
	})
	b.editMessage(ctx, cb.Message, text, ConfirmKeyboard(code, country.Price))
}

func (b *Bot) handlePurchase(ctx context.Context, cb *models.CallbackQuery, code string) {
	user := b.resolveUser(ctx, cb)
	if user == nil {
		return
	}

	result, err := b.storage.PurchaseNumber(user.ID, code, b.cfg.NumberLease)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrInsufficientBalance):
		country, cerr := b.storage.GetCountry(code)
		price := 0
		if cerr == nil {
			price = country.Price
		}
		b.editMessage(ctx, cb.Message, Render(MsgInsufficientBalance, P{
			Price:   price,
			Balance: user.Balance,
		}), DepositKeyboard())
		return
	case errors.Is(err, storage.ErrNoNumbers), errors.Is(err, storage.ErrNoAccounts):
		b.editMessage(ctx, cb.Message, Render(MsgUnavailable, P{Country: code}), BackKeyboard())
		return
	case errors.Is(err, storage.ErrUserBanned):
		b.editMessage(ctx, cb.Message, Render(MsgBanned, P{}), nil)
		return
	case errors.Is(err, storage.ErrCountryNotFound):
		b.showCountries(ctx, cb)
		return
	default:
		b.log.Error("purchase", "user_id", user.ID, "country", code, "error", err)
		b.editMessage(ctx, cb.Message, Render(MsgPurchaseFailed, P{}), MainKeyboard())
		return
	}

	b.log.Info("number purchased",
		"user_id", user.ID,
		"order_id", result.OrderID,
		"number", result.PhoneNumber,
		"price", result.Price,
	)

	text := Render(MsgPurchaseSuccess, P{
		Phone:   result.PhoneNumber,
		Country: result.CountryName,
		Price:   result.Price,
		Balance: result.NewBalance,
		Minutes: int(b.cfg.NumberLease.Minutes()),
	})
	b.editMessage(ctx, cb.Message, text, MainKeyboard())
}

// --- Deposit flow ---

func (b *Bot) showDeposit(ctx context.Context, cb *models.CallbackQuery) {
	text := Render(MsgDeposit, P{
		Amount: b.cfg.MinDeposit,
		UPIID:  b.cfg.UPIID,
	})
	b.editMessage(ctx, cb.Message, text, DepositKeyboard())
}

func (b *Bot) handleDepositChoice(ctx context.Context, cb *models.CallbackQuery, choice string) {
	user := b.resolveUser(ctx, cb)
	if user == nil {
		return
	}

	if choice == "other" {
		b.states.Set(user.ID, StateWaitDepositAmount, nil)
		b.editMessage(ctx, cb.Message, Render(MsgDepositAmount, P{Amount: b.cfg.MinDeposit}), BackKeyboard())
		return
	}

	amount, err := strconv.Atoi(choice)
	if err != nil || cb.Message.Message == nil {
		return
	}

	b.createPayment(ctx, cb.Message.Message.Chat.ID, user.ID, amount)
}

func (b *Bot) handleWaitDepositAmount(ctx context.Context, msg *models.Message, text string) {
	amount, err := strconv.Atoi(text)
	if err != nil || amount < b.cfg.MinDeposit {
		b.sendMessage(ctx, msg.Chat.ID, Render(MsgInvalidAmount, P{Amount: b.cfg.MinDeposit}), nil)
		return
	}

	b.createPayment(ctx, msg.Chat.ID, msg.From.ID, amount)
}

// createPayment opens a pending payment and walks the user through the
// UPI transfer: QR photo, instructions, then wait for the UTR.
func (b *Bot) createPayment(ctx context.Context, chatID, userID int64, amount int) {
	payment, err := b.storage.CreatePayment(userID, amount, b.cfg.MinDeposit, b.cfg.PaymentTimeout)
	if errors.Is(err, storage.ErrBelowMinimum) {
		b.sendMessage(ctx, chatID, Render(MsgInvalidAmount, P{Amount: b.cfg.MinDeposit}), DepositKeyboard())
		return
	}
	if err != nil {
		b.log.Error("create payment", "user_id", userID, "error", err)
		b.sendMessage(ctx, chatID, Render(MsgPaymentFailed, P{}), DepositKeyboard())
		return
	}

	b.log.Info("payment created", "payment_id", payment.ID, "user_id", userID, "amount", amount)

	caption := Render(MsgPaymentCreated, P{
		PaymentID: payment.ID,
		Amount:    amount,
		UPIID:     b.cfg.UPIID,
		Minutes:   int(b.cfg.PaymentTimeout.Minutes()),
	})

	uri := upi.PayURI(b.cfg.UPIID, b.cfg.PayeeName, amount, payment.ID)
	png, err := upi.QRPNG(uri)
	if err != nil {
		b.log.Error("generate qr", "payment_id", payment.ID, "error", err)
		b.sendMessage(ctx, chatID, caption, BackKeyboard())
	} else {
		b.sendPhoto(ctx, chatID, png, caption)
	}

	b.states.Set(userID, StateWaitUTR, map[string]interface{}{
		"payment_id": payment.ID,
		"amount":     amount,
	})
}

func (b *Bot) handleWaitUTR(ctx context.Context, msg *models.Message, text string, state *UserState) {
	userID := msg.From.ID
	paymentID, ok := state.Data["payment_id"].(int64)
	if !ok {
		b.states.Clear(userID)
		return
	}
	amount, _ := state.Data["amount"].(int)

	if !upi.ValidUTR(text) {
		b.sendMessage(ctx, msg.Chat.ID, Render(MsgInvalidUTR, P{}), nil)
		return
	}

	expired, err := b.storage.CheckExpiry(paymentID)
	if err != nil {
		b.log.Error("check expiry", "payment_id", paymentID, "error", err)
	}
	if expired {
		b.states.Clear(userID)
		b.sendMessage(ctx, msg.Chat.ID, Render(MsgPaymentExpired, P{PaymentID: paymentID}), MainKeyboard())
		return
	}

	balance, err := b.storage.VerifyUTR(paymentID, text)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrDuplicateUTR):
		b.sendMessage(ctx, msg.Chat.ID, Render(MsgDuplicateUTR, P{}), nil)
		return
	case errors.Is(err, storage.ErrExpired):
		b.states.Clear(userID)
		b.sendMessage(ctx, msg.Chat.ID, Render(MsgPaymentExpired, P{PaymentID: paymentID}), MainKeyboard())
		return
	default:
		b.log.Error("verify utr", "payment_id", paymentID, "error", err)
		b.states.Clear(userID)
		b.sendMessage(ctx, msg.Chat.ID, Render(MsgVerifyFailed, P{}), MainKeyboard())
		return
	}

	b.states.Clear(userID)
	b.log.Info("payment verified", "payment_id", paymentID, "user_id", userID, "amount", amount)

	b.sendMessage(ctx, msg.Chat.ID, Render(MsgPaymentVerified, P{
		Amount:  amount,
		Balance: balance,
	}), MainKeyboard())

	b.notifyAdmins(ctx, Render(MsgAdminPayment, P{
		Name:   msg.From.Username,
		UserID: userID,
		Amount: amount,
		UTR:    text,
	}))
}

// --- Balance / My numbers ---

func (b *Bot) showBalance(ctx context.Context, cb *models.CallbackQuery) {
	user := b.resolveUser(ctx, cb)
	if user == nil {
		return
	}

	text := Render(MsgBalance, P{
		Balance: user.Balance,
		Amount:  user.TotalSpent,
		Count:   user.TotalNumbers,
	})
	b.editMessage(ctx, cb.Message, text, MainKeyboard())
}

func (b *Bot) showMyNumbers(ctx context.Context, cb *models.CallbackQuery) {
	user := b.resolveUser(ctx, cb)
	if user == nil {
		return
	}

	orders, err := b.storage.ActiveOrders(user.ID)
	if err != nil {
		b.log.Error("active orders", "user_id", user.ID, "error", err)
		return
	}

	if len(orders) == 0 {
		b.editMessage(ctx, cb.Message, Render(MsgNoNumbers, P{}), MainKeyboard())
		return
	}

	entries := make([]NumberEntry, 0, len(orders))
	for _, o := range orders {
		entries = append(entries, NumberEntry{
			Phone:       o.PhoneNumber,
			Country:     o.CountryName,
			OTP:         o.OTPCode,
			MinutesLeft: minutesUntil(o.ExpiresAt),
		})
	}

	b.editMessage(ctx, cb.Message, Render(MsgMyNumbers, P{Numbers: entries}), MainKeyboard())
}
