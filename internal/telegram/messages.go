package telegram

import (
	"strings"
	"text/template"
)

// MsgKind selects one of the canned user-facing messages.
type MsgKind string

const (
	MsgWelcome             MsgKind = "welcome"
	MsgHelp                MsgKind = "help"
	MsgBalance             MsgKind = "balance"
	MsgBanned              MsgKind = "banned"
	MsgStartFirst          MsgKind = "start_first"
	MsgUnknown             MsgKind = "unknown"
	MsgCountries           MsgKind = "countries"
	MsgNoCountries         MsgKind = "no_countries"
	MsgConfirmPurchase     MsgKind = "confirm_purchase"
	MsgInsufficientBalance MsgKind = "insufficient_balance"
	MsgUnavailable         MsgKind = "unavailable"
	MsgPurchaseSuccess     MsgKind = "purchase_success"
	MsgPurchaseFailed      MsgKind = "purchase_failed"
	MsgMyNumbers           MsgKind = "my_numbers"
	MsgNoNumbers           MsgKind = "no_numbers"
	MsgDeposit             MsgKind = "deposit"
	MsgDepositAmount       MsgKind = "deposit_amount"
	MsgInvalidAmount       MsgKind = "invalid_amount"
	MsgPaymentCreated      MsgKind = "payment_created"
	MsgPaymentFailed       MsgKind = "payment_failed"
	MsgInvalidUTR          MsgKind = "invalid_utr"
	MsgDuplicateUTR        MsgKind = "duplicate_utr"
	MsgPaymentExpired      MsgKind = "payment_expired"
	MsgPaymentVerified     MsgKind = "payment_verified"
	MsgVerifyFailed        MsgKind = "verify_failed"
	MsgAdminPayment        MsgKind = "admin_payment"
	MsgAccessDenied        MsgKind = "access_denied"
	MsgAdminPanel          MsgKind = "admin_panel"
	MsgDashboard           MsgKind = "dashboard"
	MsgAccountList         MsgKind = "account_list"
	MsgNoAccountsYet       MsgKind = "no_accounts_yet"
	MsgAddCountryPrompt    MsgKind = "add_country_prompt"
	MsgAddAccountPrompt    MsgKind = "add_account_prompt"
	MsgAddNumbersPrompt    MsgKind = "add_numbers_prompt"
	MsgCountryAdded        MsgKind = "country_added"
	MsgAccountAdded        MsgKind = "account_added"
	MsgNumbersAdded        MsgKind = "numbers_added"
	MsgBadInput            MsgKind = "bad_input"
	MsgOTPForward          MsgKind = "otp_forward"
	MsgOTPAttached         MsgKind = "otp_attached"
	MsgOTPUsage            MsgKind = "otp_usage"
	MsgBanUsage            MsgKind = "ban_usage"
	MsgBanDone             MsgKind = "ban_done"
	MsgUnbanDone           MsgKind = "unban_done"
	MsgUserNotFound        MsgKind = "user_not_found"
)

// NumberEntry is one row of the "my numbers" listing.
type NumberEntry struct {
	Phone       string
	Country     string
	OTP         string
	MinutesLeft int
}

// AccountEntry is one row of the admin account listing.
type AccountEntry struct {
	ID     int64
	Phone  string
	Status string
	Served int
}

// Stats feeds the admin dashboard message.
type Stats struct {
	Users        int
	Countries    int
	Accounts     int
	FreeAccounts int
	TotalNumbers int
	FreeNumbers  int
	Revenue      int
	UPIID        string
}

// P is the payload for Render. Each message kind reads the fields it
// needs and ignores the rest.
type P struct {
	Name      string
	UserID    int64
	Amount    int
	Balance   int
	Price     int
	Available int
	Phone     string
	Country   string
	Code      string
	Minutes   int
	PaymentID int64
	OrderID   int64
	UPIID     string
	UTR       string
	Count     int
	Numbers   []NumberEntry
	Accounts  []AccountEntry
	Stats     *Stats
}

var messages = map[MsgKind]*template.Template{
	MsgWelcome: tmpl(`👋 Welcome{{if .Name}}, <b>{{.Name}}</b>{{end}}!

I sell short-lived virtual numbers for receiving OTPs.

• Pick a country and buy a number
• OTPs sent to it are forwarded here
• Top up your balance via UPI

Choose an action 👇`),

	MsgHelp: tmpl(`🆘 <b>How it works</b>

1. Deposit via UPI to <code>{{.UPIID}}</code> and send your UTR here
2. Buy a number for the country you need
3. OTPs arrive in this chat while the number is yours
4. Numbers expire automatically after {{.Minutes}} minutes

Use the menu buttons to get around.`),

	MsgBalance: tmpl(`💰 <b>Your balance:</b> ₹{{.Balance}}

Total spent: ₹{{.Amount}}
Numbers bought: {{.Count}}`),

	MsgBanned:     tmpl(`🚫 Your account is banned. Contact support if you believe this is a mistake.`),
	MsgStartFirst: tmpl(`Please use /start first.`),
	MsgUnknown:    tmpl(`Please use the menu buttons or commands. Type /help for assistance.`),

	MsgCountries:   tmpl(`🌍 <b>Select a country</b>` + "\n\n" + `Prices are per number, valid for {{.Minutes}} minutes.`),
	MsgNoCountries: tmpl(`😔 No countries are available right now. Please check back later.`),

	MsgConfirmPurchase: tmpl(`<b>{{.Country}}</b>

💰 Price: ₹{{.Price}}
🟢 Available: {{.Available}}
⏰ Duration: {{.Minutes}} minutes

OTPs will be forwarded here automatically.`),

	MsgInsufficientBalance: tmpl(`❌ <b>Insufficient balance</b>

Required: ₹{{.Price}}
Your balance: ₹{{.Balance}}

Please deposit first.`),

	MsgUnavailable: tmpl(`❌ <b>Temporarily unavailable</b>

No numbers left for {{.Country}}. Try another country or come back later.`),

	MsgPurchaseSuccess: tmpl(`✅ <b>Purchase successful!</b>

📞 Number: <code>{{.Phone}}</code>
🌍 Country: {{.Country}}
💰 Amount: ₹{{.Price}}
⏰ Expires in: {{.Minutes}} minutes
💳 New balance: ₹{{.Balance}}

Keep this chat open to receive OTPs.`),

	MsgPurchaseFailed: tmpl(`❌ <b>Purchase failed</b>

An error occurred. Please try again or contact support.`),

	MsgMyNumbers: tmpl(`📱 <b>Your active numbers</b>
{{range .Numbers}}
📞 <code>{{.Phone}}</code> — {{.Country}}
{{if .OTP}}🔑 OTP: <code>{{.OTP}}</code>
{{end}}⏰ Expires in {{.MinutesLeft}} min
{{end}}`),

	MsgNoNumbers: tmpl(`📭 <b>No active numbers</b>

You don't have any active numbers. Buy one from the main menu.`),

	MsgDeposit: tmpl(`💰 <b>Deposit</b>

Minimum: ₹{{.Amount}}
UPI ID: <code>{{.UPIID}}</code>

Pick an amount or enter your own.`),

	MsgDepositAmount: tmpl(`Enter the amount in INR (minimum ₹{{.Amount}}), e.g. <code>100</code> or <code>500</code>.`),

	MsgInvalidAmount: tmpl(`❌ Enter a whole number of at least ₹{{.Amount}}.`),

	MsgPaymentCreated: tmpl(`💰 <b>Payment #{{.PaymentID}}</b>

Amount: ₹{{.Amount}}
UPI ID: <code>{{.UPIID}}</code>

1. Pay with any UPI app, or scan the QR above
2. Copy the UTR / transaction reference from the receipt
3. Send that UTR here as a message

⏰ Payment expires in {{.Minutes}} minutes.`),

	MsgPaymentFailed: tmpl(`❌ Failed to create the payment. Please try again.`),

	MsgInvalidUTR: tmpl(`❌ That doesn't look like a UTR. It is 10–20 letters and digits, e.g. <code>AXIS12345678</code>.`),

	MsgDuplicateUTR: tmpl(`❌ This UTR has already been used. Each transfer can be claimed once.`),

	MsgPaymentExpired: tmpl(`⌛ <b>Payment expired</b>

Payment #{{.PaymentID}} is no longer valid. Start a new deposit from the menu.`),

	MsgPaymentVerified: tmpl(`✅ <b>Payment verified!</b>

Amount: ₹{{.Amount}}
New balance: ₹{{.Balance}}

Thank you!`),

	MsgVerifyFailed: tmpl(`❌ <b>Verification failed</b>

The payment could not be verified. Check the payment ID and try again, or contact support.`),

	MsgAdminPayment: tmpl(`💰 Payment verified
User: {{.Name}} ({{.UserID}})
Amount: ₹{{.Amount}}
UTR: <code>{{.UTR}}</code>`),

	MsgAccessDenied: tmpl(`❌ Access denied.`),

	MsgAdminPanel: tmpl(`🛠 <b>Admin panel</b>

Select an option:`),

	MsgDashboard: tmpl(`📊 <b>Dashboard</b>

👥 Users: {{.Stats.Users}}
🌍 Countries: {{.Stats.Countries}}
📱 Accounts: {{.Stats.Accounts}} ({{.Stats.FreeAccounts}} free)
🔢 Numbers: {{.Stats.TotalNumbers}} ({{.Stats.FreeNumbers}} free)
💰 Revenue: ₹{{.Stats.Revenue}}

UPI ID: <code>{{.Stats.UPIID}}</code>`),

	MsgAccountList: tmpl(`📱 <b>Accounts</b>
{{range .Accounts}}
#{{.ID}} {{if .Phone}}<code>{{.Phone}}</code>{{else}}(no phone){{end}} — {{.Status}}, served {{.Served}}
{{end}}`),

	MsgNoAccountsYet: tmpl(`📭 No accounts registered yet.`),

	MsgAddCountryPrompt: tmpl(`Send the country as:

<code>CODE Name price</code>

e.g. <code>IN India 50</code>`),

	MsgAddAccountPrompt: tmpl(`Send the account as:

<code>session-string [phone]</code>`),

	MsgAddNumbersPrompt: tmpl(`Send numbers as:

<code>CODE +15551234 +15555678 ...</code>`),

	MsgCountryAdded: tmpl(`✅ Country <b>{{.Country}}</b> ({{.Code}}) saved at ₹{{.Price}}.`),
	MsgAccountAdded: tmpl(`✅ Account #{{.OrderID}} added.`),
	MsgNumbersAdded: tmpl(`✅ Added {{.Count}} new numbers for {{.Code}}.`),
	MsgBadInput:     tmpl(`❌ Couldn't parse that. Check the format and try again.`),

	MsgOTPForward: tmpl(`🔑 <b>OTP received</b>

📞 <code>{{.Phone}}</code>
Code: <code>{{.Code}}</code>`),

	MsgOTPAttached:  tmpl(`✅ OTP forwarded to the buyer of order #{{.OrderID}}.`),
	MsgOTPUsage:     tmpl(`Usage: <code>/otp &lt;order_id&gt; &lt;code&gt;</code>`),
	MsgBanUsage:     tmpl(`Usage: <code>/ban &lt;user_id&gt;</code>`),
	MsgBanDone:      tmpl(`🚫 User {{.UserID}} banned.`),
	MsgUnbanDone:    tmpl(`✅ User {{.UserID}} unbanned.`),
	MsgUserNotFound: tmpl(`❌ Not found.`),
}

// Render produces the user-facing text for a message kind. All templated
// responses go through here so wording lives in one place.
func Render(kind MsgKind, p P) string {
	t, ok := messages[kind]
	if !ok {
		return ""
	}

	var sb strings.Builder
	if err := t.Execute(&sb, p); err != nil {
		return ""
	}
	return strings.TrimSpace(sb.String())
}

func tmpl(s string) *template.Template {
	return template.Must(template.New("").Parse(s))
}
