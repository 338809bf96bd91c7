package telegram

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/vexnode/numshop/internal/storage"
)

var (
	phoneRegex = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	otpRegex   = regexp.MustCompile(`^\d{4,6}$`)
)

func (b *Bot) adminCommandHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	if !b.isAdmin(update.Message.From.ID) {
		b.sendMessage(ctx, update.Message.Chat.ID, Render(MsgAccessDenied, P{}), nil)
		return
	}

	b.sendMessage(ctx, update.Message.Chat.ID, Render(MsgAdminPanel, P{}), AdminKeyboard())
}

func (b *Bot) showAdminPanel(ctx context.Context, cb *models.CallbackQuery) {
	if !b.isAdmin(cb.From.ID) {
		b.editMessage(ctx, cb.Message, Render(MsgAccessDenied, P{}), nil)
		return
	}

	b.states.Clear(cb.From.ID)
	b.editMessage(ctx, cb.Message, Render(MsgAdminPanel, P{}), AdminKeyboard())
}

func (b *Bot) showDashboard(ctx context.Context, cb *models.CallbackQuery) {
	if !b.isAdmin(cb.From.ID) {
		b.editMessage(ctx, cb.Message, Render(MsgAccessDenied, P{}), nil)
		return
	}

	stats, err := b.collectStats()
	if err != nil {
		b.log.Error("collect stats", "error", err)
		b.editMessage(ctx, cb.Message, Render(MsgPurchaseFailed, P{}), AdminKeyboard())
		return
	}

	b.editMessage(ctx, cb.Message, Render(MsgDashboard, P{Stats: stats}), AdminKeyboard())
}

func (b *Bot) collectStats() (*Stats, error) {
	users, err := b.storage.UsersCount()
	if err != nil {
		return nil, err
	}

	countries, err := b.storage.ListCountries()
	if err != nil {
		return nil, err
	}

	accounts, freeAccounts, err := b.storage.AccountCounts()
	if err != nil {
		return nil, err
	}

	totalNumbers, freeNumbers, err := b.storage.NumberCounts()
	if err != nil {
		return nil, err
	}

	revenue, err := b.storage.Revenue()
	if err != nil {
		return nil, err
	}

	return &Stats{
		Users:        users,
		Countries:    len(countries),
		Accounts:     accounts,
		FreeAccounts: freeAccounts,
		TotalNumbers: totalNumbers,
		FreeNumbers:  freeNumbers,
		Revenue:      revenue,
		UPIID:        b.cfg.UPIID,
	}, nil
}

func (b *Bot) showAccounts(ctx context.Context, cb *models.CallbackQuery) {
	if !b.isAdmin(cb.From.ID) {
		b.editMessage(ctx, cb.Message, Render(MsgAccessDenied, P{}), nil)
		return
	}

	accounts, err := b.storage.ListAccounts()
	if err != nil {
		b.log.Error("list accounts", "error", err)
		b.editMessage(ctx, cb.Message, Render(MsgPurchaseFailed, P{}), AdminKeyboard())
		return
	}

	if len(accounts) == 0 {
		b.editMessage(ctx, cb.Message, Render(MsgNoAccountsYet, P{}), AdminKeyboard())
		return
	}

	entries := make([]AccountEntry, 0, len(accounts))
	for _, a := range accounts {
		entries = append(entries, AccountEntry{
			ID:     a.ID,
			Phone:  a.PhoneNumber,
			Status: accountStatus(a),
			Served: a.NumbersServed,
		})
	}

	b.editMessage(ctx, cb.Message, Render(MsgAccountList, P{Accounts: entries}), AdminKeyboard())
}

func accountStatus(a storage.Account) string {
	switch {
	case !a.IsActive:
		return "disabled"
	case a.IsInUse:
		return "in use"
	default:
		return "free"
	}
}

func (b *Bot) showAdminAdd(ctx context.Context, cb *models.CallbackQuery) {
	if !b.isAdmin(cb.From.ID) {
		b.editMessage(ctx, cb.Message, Render(MsgAccessDenied, P{}), nil)
		return
	}

	b.editMessage(ctx, cb.Message, Render(MsgAdminPanel, P{}), AdminAddKeyboard())
}

func (b *Bot) handleAdminAdd(ctx context.Context, cb *models.CallbackQuery, what string) {
	if !b.isAdmin(cb.From.ID) {
		b.editMessage(ctx, cb.Message, Render(MsgAccessDenied, P{}), nil)
		return
	}

	switch what {
	case "country":
		b.states.Set(cb.From.ID, StateWaitCountry, nil)
		b.editMessage(ctx, cb.Message, Render(MsgAddCountryPrompt, P{}), AdminAddKeyboard())
	case "account":
		b.states.Set(cb.From.ID, StateWaitAccount, nil)
		b.editMessage(ctx, cb.Message, Render(MsgAddAccountPrompt, P{}), AdminAddKeyboard())
	case "numbers":
		b.states.Set(cb.From.ID, StateWaitNumbers, nil)
		b.editMessage(ctx, cb.Message, Render(MsgAddNumbersPrompt, P{}), AdminAddKeyboard())
	}
}

// handleWaitCountry parses "CODE Name price", e.g. "IN India 50".
func (b *Bot) handleWaitCountry(ctx context.Context, msg *models.Message, text string) {
	if !b.isAdmin(msg.From.ID) {
		return
	}

	fields := strings.Fields(text)
	if len(fields) < 3 {
		b.sendMessage(ctx, msg.Chat.ID, Render(MsgBadInput, P{}), nil)
		return
	}

	code := strings.ToUpper(fields[0])
	price, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil || price <= 0 {
		b.sendMessage(ctx, msg.Chat.ID, Render(MsgBadInput, P{}), nil)
		return
	}
	name := strings.Join(fields[1:len(fields)-1], " ")

	if err := b.storage.UpsertCountry(code, name, price); err != nil {
		b.log.Error("upsert country", "code", code, "error", err)
		b.sendMessage(ctx, msg.Chat.ID, Render(MsgBadInput, P{}), nil)
		return
	}

	b.states.Clear(msg.From.ID)
	b.log.Info("country saved", "code", code, "name", name, "price", price)
	b.sendMessage(ctx, msg.Chat.ID, Render(MsgCountryAdded, P{
		Country: name,
		Code:    code,
		Price:   price,
	}), AdminKeyboard())
}

// handleWaitAccount parses "session-string [phone]".
func (b *Bot) handleWaitAccount(ctx context.Context, msg *models.Message, text string) {
	if !b.isAdmin(msg.From.ID) {
		return
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}

	session := fields[0]
	phone := ""
	if len(fields) > 1 {
		phone = fields[1]
	}

	if len(session) < 50 {
		b.sendMessage(ctx, msg.Chat.ID, Render(MsgBadInput, P{}), nil)
		return
	}

	account, err := b.storage.AddAccount(session, phone)
	if errors.Is(err, storage.ErrAlreadyExists) {
		b.sendMessage(ctx, msg.Chat.ID, Render(MsgBadInput, P{}), nil)
		return
	}
	if err != nil {
		b.log.Error("add account", "error", err)
		b.sendMessage(ctx, msg.Chat.ID, Render(MsgBadInput, P{}), nil)
		return
	}

	b.states.Clear(msg.From.ID)
	b.log.Info("account added", "account_id", account.ID, "phone", phone)
	b.sendMessage(ctx, msg.Chat.ID, Render(MsgAccountAdded, P{OrderID: account.ID}), AdminKeyboard())
}

// handleWaitNumbers parses "CODE +num1 +num2 ...".
func (b *Bot) handleWaitNumbers(ctx context.Context, msg *models.Message, text string) {
	if !b.isAdmin(msg.From.ID) {
		return
	}

	fields := strings.Fields(text)
	if len(fields) < 2 {
		b.sendMessage(ctx, msg.Chat.ID, Render(MsgBadInput, P{}), nil)
		return
	}

	code := strings.ToUpper(fields[0])
	added := 0
	for _, phone := range fields[1:] {
		if !phoneRegex.MatchString(phone) {
			continue
		}
		isNew, err := b.storage.AddNumber(code, phone)
		if err != nil {
			b.log.Error("add number", "phone", phone, "error", err)
			continue
		}
		if isNew {
			added++
		}
	}

	b.states.Clear(msg.From.ID)
	b.log.Info("numbers loaded", "country", code, "added", added)
	b.sendMessage(ctx, msg.Chat.ID, Render(MsgNumbersAdded, P{
		Code:  code,
		Count: added,
	}), AdminKeyboard())
}

// otpCommandHandler implements /otp <order_id> <code>: attaches a
// received OTP to an active order and forwards it to the buyer. This is
// the manual stand-in for automatic OTP sourcing.
func (b *Bot) otpCommandHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if !b.isAdmin(update.Message.From.ID) {
		b.sendMessage(ctx, update.Message.Chat.ID, Render(MsgAccessDenied, P{}), nil)
		return
	}

	args := strings.Fields(update.Message.Text)
	if len(args) != 3 || !otpRegex.MatchString(args[2]) {
		b.sendMessage(ctx, update.Message.Chat.ID, Render(MsgOTPUsage, P{}), nil)
		return
	}

	orderID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		b.sendMessage(ctx, update.Message.Chat.ID, Render(MsgOTPUsage, P{}), nil)
		return
	}
	code := args[2]

	order, err := b.storage.GetOrder(orderID)
	if err != nil || order.Status != storage.OrderActive {
		b.sendMessage(ctx, update.Message.Chat.ID, Render(MsgUserNotFound, P{}), nil)
		return
	}

	if err := b.storage.AttachOTP(orderID, code); err != nil {
		b.log.Error("attach otp", "order_id", orderID, "error", err)
		b.sendMessage(ctx, update.Message.Chat.ID, Render(MsgUserNotFound, P{}), nil)
		return
	}

	number, err := b.storage.GetNumber(order.NumberID)
	phone := ""
	if err == nil {
		phone = number.PhoneNumber
	}

	forward := Render(MsgOTPForward, P{Phone: phone, Code: code})
	if err := b.SendNotification(ctx, order.UserID, forward); err != nil {
		b.log.Error("forward otp", "order_id", orderID, "user_id", order.UserID, "error", err)
	}

	b.log.Info("otp forwarded", "order_id", orderID, "user_id", order.UserID)
	b.sendMessage(ctx, update.Message.Chat.ID, Render(MsgOTPAttached, P{OrderID: orderID}), nil)
}

func (b *Bot) banCommandHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.setBanned(ctx, update, true)
}

func (b *Bot) unbanCommandHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.setBanned(ctx, update, false)
}

func (b *Bot) setBanned(ctx context.Context, update *models.Update, banned bool) {
	if update.Message == nil {
		return
	}
	if !b.isAdmin(update.Message.From.ID) {
		b.sendMessage(ctx, update.Message.Chat.ID, Render(MsgAccessDenied, P{}), nil)
		return
	}

	args := strings.Fields(update.Message.Text)
	if len(args) != 2 {
		b.sendMessage(ctx, update.Message.Chat.ID, Render(MsgBanUsage, P{}), nil)
		return
	}

	userID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		b.sendMessage(ctx, update.Message.Chat.ID, Render(MsgBanUsage, P{}), nil)
		return
	}

	if err := b.storage.SetBanned(userID, banned); err != nil {
		b.sendMessage(ctx, update.Message.Chat.ID, Render(MsgUserNotFound, P{}), nil)
		return
	}

	kind := MsgBanDone
	if !banned {
		kind = MsgUnbanDone
	}
	b.log.Info("ban state changed", "user_id", userID, "banned", banned)
	b.sendMessage(ctx, update.Message.Chat.ID, Render(kind, P{UserID: userID}), nil)
}

func minutesUntil(t time.Time) int {
	left := int(time.Until(t).Minutes())
	if left < 0 {
		return 0
	}
	return left
}
