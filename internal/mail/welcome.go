package mail

import (
	"bytes"
	htmltemplate "html/template"
	"text/template"
)

var welcomeText = template.Must(template.New("welcome.txt").Parse(
	`Hi {{.Firstname}} {{.Lastname}},

Welcome to CourseMarket! Your account is ready. Browse the catalog and pick your first course.

The CourseMarket team
`))

var welcomeHTML = htmltemplate.Must(htmltemplate.New("welcome.html").Parse(
	`<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif">
    <h2>Welcome, {{.Firstname}} {{.Lastname}}!</h2>
    <p>Your account is ready. Browse the catalog and pick your first course.</p>
    <p>The CourseMarket team</p>
  </body>
</html>
`))

// Welcome builds the signup greeting for to.
func Welcome(to, firstname, lastname string) (Message, error) {
	data := struct{ Firstname, Lastname string }{firstname, lastname}

	var text, html bytes.Buffer
	if err := welcomeText.Execute(&text, data); err != nil {
		return Message{}, err
	}
	if err := welcomeHTML.Execute(&html, data); err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: "Welcome to CourseMarket",
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
