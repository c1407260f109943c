package http

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/hlog"
)

// Flash is a one-shot message rendered on the main page.
type Flash struct {
	Category string // "success" or "error"
	Message  string
}

type indexData struct {
	Product string
	Count   int
	Flash   *Flash
}

type successData struct {
	Product string
	Action  string // "subscribe" or "unsubscribe"
}

type confirmData struct {
	Product string
	Email   string
	Token   string
}

const mainHTML = `<!DOCTYPE html>
<html>
<head>
	<title>{{.Product}} - Newsletter</title>
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<style>
		body { font-family: sans-serif; max-width: 600px; margin: 50px auto; padding: 20px; }
		.stats { background: #e3f2fd; padding: 15px; border-radius: 10px; text-align: center; margin-bottom: 20px; }
		.message { margin: 20px 0; padding: 15px; border-radius: 10px; }
		.success { background: #d4edda; color: #155724; }
		.error { background: #f8d7da; color: #721c24; }
		.form-section { margin: 30px 0; padding: 25px; background: #f8f9fa; border-radius: 10px; }
		input[type="email"] { width: 100%; padding: 12px; margin: 10px 0; box-sizing: border-box; }
		button { padding: 12px 25px; border: none; border-radius: 5px; cursor: pointer; color: white; background: #667eea; }
		button.unsubscribe { background: #ee5a24; }
	</style>
</head>
<body>
	<h1>{{.Product}}</h1>
	<div class="stats">{{.Count}} active subscribers receiving weekly updates</div>
	{{with .Flash}}<div class="message {{.Category}}">{{.Message}}</div>{{end}}
	<div class="form-section">
		<h3>Subscribe to {{.Product}}</h3>
		<form method="POST" action="/subscribe">
			<input type="email" name="email" placeholder="Enter your email address" required>
			<button type="submit">Subscribe Now</button>
		</form>
	</div>
	<div class="form-section">
		<h3>Unsubscribe from {{.Product}}</h3>
		<form method="POST" action="/unsubscribe">
			<input type="email" name="email" placeholder="Enter your email address" required>
			<button type="submit" class="unsubscribe">Unsubscribe</button>
		</form>
	</div>
</body>
</html>
`

const successHTML = `<!DOCTYPE html>
<html>
<head>
	<title>{{.Product}} - {{if eq .Action "subscribe"}}Subscribed{{else}}Unsubscribed{{end}}</title>
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<style>
		body { font-family: sans-serif; max-width: 600px; margin: 50px auto; padding: 20px; text-align: center; }
		.info { background: #f8f9fa; padding: 20px; border-radius: 10px; margin: 20px 0; }
		a.button { background: #667eea; color: white; padding: 12px 25px; border-radius: 5px; text-decoration: none; }
	</style>
</head>
<body>
	{{if eq .Action "subscribe"}}
	<h1>Welcome to {{.Product}}!</h1>
	<div class="info">
		<p><strong>Subscription confirmed.</strong></p>
		<p>You'll receive the latest news in your inbox every week.</p>
	</div>
	{{else}}
	<h1>Successfully unsubscribed</h1>
	<div class="info">
		<p><strong>You've been unsubscribed from {{.Product}}.</strong></p>
		<p>If you change your mind, you can always subscribe again.</p>
	</div>
	{{end}}
	<a href="/" class="button">Back to homepage</a>
</body>
</html>
`

const confirmHTML = `<!DOCTYPE html>
<html>
<head>
	<title>{{.Product}} - Confirm Unsubscribe</title>
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<style>
		body { font-family: sans-serif; max-width: 600px; margin: 50px auto; padding: 20px; text-align: center; }
		.warning { background: #fff3cd; padding: 20px; border-radius: 10px; margin: 20px 0; color: #856404; }
		button, a.button { background: #ee5a24; color: white; padding: 12px 25px; border: none; border-radius: 5px; cursor: pointer; text-decoration: none; }
		a.cancel { background: #6c757d; }
	</style>
</head>
<body>
	<h1>{{.Product}} Unsubscribe</h1>
	<div class="warning">
		<h3>Are you sure you want to unsubscribe?</h3>
		<p><strong>Email:</strong> {{.Email}}</p>
	</div>
	<form method="POST" action="/unsubscribe" style="display: inline;">
		<input type="hidden" name="token" value="{{.Token}}">
		<input type="hidden" name="confirm" value="yes">
		<button type="submit">Yes, unsubscribe me</button>
	</form>
	<a href="/" class="button cancel">Cancel</a>
</body>
</html>
`

var (
	mainTmpl    = template.Must(template.New("main").Parse(mainHTML))
	successTmpl = template.Must(template.New("success").Parse(successHTML))
	confirmTmpl = template.Must(template.New("confirm").Parse(confirmHTML))
)

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) error {
	return s.renderIndex(w, r, nil)
}

// renderIndex renders the subscribe/unsubscribe form with the live active
// subscriber count. A failing count is rendered as zero rather than an
// error page.
func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, flash *Flash) error {
	count, err := s.SubscriptionService.CountActive()
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to count subscribers")
		count = 0
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return mainTmpl.Execute(w, indexData{Product: s.Product, Count: count, Flash: flash})
}

func (s *Server) renderSuccess(w http.ResponseWriter, action string) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return successTmpl.Execute(w, successData{Product: s.Product, Action: action})
}

func (s *Server) renderConfirm(w http.ResponseWriter, email, token string) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return confirmTmpl.Execute(w, confirmData{Product: s.Product, Email: email, Token: token})
}
