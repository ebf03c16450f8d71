package mailer

import "html/template"

const layoutTmpl = `{{define "layout"}}<div style="font-family: Arial, sans-serif; padding: 20px; color: #333; max-width: 600px;">
	<h2 style="color: #e07a9b;">Baby Bliss</h2>
	{{template "content" .}}
	<p style="margin-top: 30px; font-size: 12px; color: #999;">This is an automated message from Baby Bliss. Please do not reply to this email.</p>
</div>{{end}}`

const bookingReceivedTmpl = `{{define "content"}}
	<p>Hi {{.Booking.ClientName}},</p>
	<p>Thank you for choosing Baby Bliss! We have received your booking request and will confirm it shortly.</p>
	<table style="border-collapse: collapse;">
		<tr><td style="padding: 4px 12px 4px 0;"><strong>Reference</strong></td><td>{{.Booking.Reference}}</td></tr>
		<tr><td style="padding: 4px 12px 4px 0;"><strong>Event date</strong></td><td>{{date .Booking.EventDate}}{{with .Booking.EventTime}} at {{.}}{{end}}</td></tr>
		<tr><td style="padding: 4px 12px 4px 0;"><strong>Venue</strong></td><td>{{.Booking.Venue}}</td></tr>
		<tr><td style="padding: 4px 12px 4px 0;"><strong>Package</strong></td><td>{{title .Booking.Package}}</td></tr>
		<tr><td style="padding: 4px 12px 4px 0;"><strong>Total</strong></td><td>{{money .Booking.TotalAmount}}</td></tr>
	</table>
	{{with .LookupURL}}<p>You can check the status of your booking any time: <a href="{{.}}">{{.}}</a></p>{{end}}
{{end}}`

const bookingStatusTmpl = `{{define "content"}}
	<p>Hi {{.Booking.ClientName}},</p>
	{{if eq .Status "confirmed"}}<p>Great news! Your booking <strong>{{.Booking.Reference}}</strong> for {{date .Booking.EventDate}} has been <strong>confirmed</strong>. We can't wait to celebrate with you.</p>
	{{else if eq .Status "cancelled"}}<p>Your booking <strong>{{.Booking.Reference}}</strong> for {{date .Booking.EventDate}} has been <strong>cancelled</strong>. If this is unexpected, please contact us.</p>
	{{else if eq .Status "completed"}}<p>Thank you for celebrating with Baby Bliss! Your booking <strong>{{.Booking.Reference}}</strong> is now complete.</p>
	{{else}}<p>The status of your booking <strong>{{.Booking.Reference}}</strong> is now <strong>{{.Status}}</strong>.</p>{{end}}
	{{with .LookupURL}}<p>Booking details: <a href="{{.}}">{{.}}</a></p>{{end}}
{{end}}`

const messageReplyTmpl = `{{define "content"}}
	<p>Hi {{.Message.Name}},</p>
	<p>Thank you for reaching out{{with .Message.Subject}} about "{{.}}"{{end}}. Here is our reply:</p>
	<div style="border-left: 3px solid #e07a9b; padding-left: 12px; white-space: pre-wrap;">{{.Message.Reply}}</div>
	<p style="color: #777;">Your original message:</p>
	<div style="color: #777; white-space: pre-wrap;">{{.Message.Body}}</div>
{{end}}`

func mustParse(name, content string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Parse(layoutTmpl + content))
}

var (
	bookingReceivedPage = mustParse("booking_received", bookingReceivedTmpl)
	bookingStatusPage   = mustParse("booking_status", bookingStatusTmpl)
	messageReplyPage    = mustParse("message_reply", messageReplyTmpl)
)
