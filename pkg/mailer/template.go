package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

var notificationTmpl = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background:#f5f5f5;font-family:Arial,sans-serif;">
  <div style="max-width:600px;margin:20px auto;background:#ffffff;border-radius:8px;overflow:hidden;">
    <div style="background:{{.Color}};color:#ffffff;padding:16px 24px;">
      <h2 style="margin:0;">{{.Icon}} {{.Title}}</h2>
    </div>
    <div style="padding:24px;color:#333333;line-height:1.5;">
      <p>{{.Content}}</p>
    </div>
    <div style="padding:12px 24px;background:#fafafa;color:#999999;font-size:12px;">
      This is an automated notification. Please do not reply to this email.
    </div>
  </div>
</body>
</html>`))

var (
	typeColors = map[string]string{
		"course":     "#4caf50",
		"assignment": "#2196f3",
		"quiz":       "#ff9800",
		"system":     "#9c27b0",
		"message":    "#e91e63",
		"schedule":   "#607d8b",
	}
	typeIcons = map[string]string{
		"course":     "🎓",
		"assignment": "📝",
		"quiz":       "❓",
		"system":     "⚙️",
		"message":    "💬",
		"schedule":   "📅",
	}
)

// RenderNotificationEmail produces the HTML body for a notification email.
func RenderNotificationEmail(title, content, notificationType string) (string, error) {
	color, ok := typeColors[notificationType]
	if !ok {
		color = "#607d8b"
	}
	icon := typeIcons[notificationType]

	var buf bytes.Buffer
	err := notificationTmpl.Execute(&buf, struct {
		Title, Content, Color, Icon string
	}{title, content, color, icon})
	if err != nil {
		return "", fmt.Errorf("render notification email: %w", err)
	}
	return buf.String(), nil
}
