package service

import (
	"bytes"
	"clariasense/internal/models"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"
)

const (
	violationSubject = "🚨 Out of Parameters Detected"
	refillSubject    = "🚨 Water Running Out"

	parametersSeparator = " , "
)

const mailHeader = `<div style="background-color: white; padding: 20px; font-family: Arial, sans-serif; color: #333;">
  <div style="display: flex; align-items: center; border-bottom: 2px solid #ccc; padding-bottom: 10px;">
    <div style="flex-shrink: 0; margin-right: 10px;">
      <img src="{{.LogoURL}}" alt="Logo" style="width: 40px; height: 40px;">
    </div>
    <h3 style="margin: 0;">{{.Heading}}</h3>
  </div>`

const mailFooter = `
  <footer style="margin-top: 20px; font-size: 12px; color: #777; border-top: 2px solid #ccc; padding-top: 10px;">
    This is an automated message. Please do not reply.<br>
    <a href="{{.UnsubscribeURL}}" style="color: #007BFF; text-decoration: none;">Unsubscribe</a>
  </footer>
</div>`

var templateFuncs = template.FuncMap{
	"num": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}

var violationTemplate = template.Must(template.New("violation").Funcs(templateFuncs).Parse(mailHeader + `
  <p><strong>Out of Parameters:</strong> {{.Parameters}}</p>
  <p><strong>Recorded Data when out of Parameters occurred:</strong></p>
  <ul style="list-style-type: none; padding: 0;">
    <li><strong>pH Level:</strong> {{num .PH}} pH</li>
    <li><strong>TDS:</strong> {{num .TDS}} ppm</li>
    <li><strong>Temperature:</strong> {{num .Temp}} °C</li>
  </ul>
  <p><strong>Time and Date:</strong> {{.Timestamp}}</p>` + mailFooter))

var refillTemplate = template.Must(template.New("refill").Parse(mailHeader + `
  <p>The water is almost running out. Please refill the water tank</p>` + mailFooter))

type mailFrame struct {
	LogoURL        string
	Heading        string
	UnsubscribeURL string
}

type violationMail struct {
	mailFrame
	Parameters string
	PH         float64
	TDS        float64
	Temp       float64
	Timestamp  string
}

// unsubscribeURL builds <base>/unsubscribe?email=<escaped>.
func unsubscribeURL(base, email string) string {
	return strings.TrimRight(base, "/") + "/unsubscribe?email=" + url.QueryEscape(email)
}

func logoURL(base string) string {
	return strings.TrimRight(base, "/") + "/clariaSenseLogo.png"
}

func renderViolationMail(base, email string, v models.ThresholdViolation) (models.MailMessage, error) {
	var buf bytes.Buffer
	err := violationTemplate.Execute(&buf, violationMail{
		mailFrame: mailFrame{
			LogoURL:        logoURL(base),
			Heading:        violationSubject,
			UnsubscribeURL: unsubscribeURL(base, email),
		},
		Parameters: v.ParametersText(parametersSeparator),
		PH:         v.PH,
		TDS:        v.TDS,
		Temp:       v.Temp,
		Timestamp:  v.Timestamp,
	})
	if err != nil {
		return models.MailMessage{}, fmt.Errorf("render violation mail: %w", err)
	}
	return models.MailMessage{Subject: violationSubject, HTML: buf.String()}, nil
}

func renderRefillMail(base, email string) (models.MailMessage, error) {
	var buf bytes.Buffer
	err := refillTemplate.Execute(&buf, mailFrame{
		LogoURL:        logoURL(base),
		Heading:        "🚨 Water Almost Runs Out!",
		UnsubscribeURL: unsubscribeURL(base, email),
	})
	if err != nil {
		return models.MailMessage{}, fmt.Errorf("render refill mail: %w", err)
	}
	return models.MailMessage{Subject: refillSubject, HTML: buf.String()}, nil
}
