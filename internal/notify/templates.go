package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/seeg/onehcm/internal/synthesis"
)

// Recipient identifies the candidate an email is addressed to.
type Recipient struct {
	Email     string
	FirstName string
	LastName  string
}

func (r Recipient) displayName() string {
	name := strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
	if name == "" {
		return "Madame, Monsieur"
	}
	return name
}

var htmlLayout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="fr"><body style="font-family:Arial,sans-serif;color:#1f2933">
<p>Bonjour {{.Name}},</p>
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}<p>Cordialement,<br>L'equipe Talent Source de la SEEG</p>
</body></html>`))

type layoutData struct {
	Name       string
	Paragraphs []string
}

func render(to Recipient, subject string, paragraphs ...string) (Message, error) {
	data := layoutData{Name: to.displayName(), Paragraphs: paragraphs}

	var html bytes.Buffer
	if err := htmlLayout.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render email: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Bonjour %s,\n\n", data.Name)
	for _, p := range paragraphs {
		text.WriteString(p)
		text.WriteString("\n\n")
	}
	text.WriteString("Cordialement,\nL'equipe Talent Source de la SEEG\n")

	return Message{
		To:      strings.TrimSpace(to.Email),
		Subject: subject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

// ApplicationReceived confirms a new application for jobTitle.
func ApplicationReceived(to Recipient, jobTitle string) (Message, error) {
	return render(to,
		fmt.Sprintf("Candidature reçue : %s", jobTitle),
		fmt.Sprintf("Nous avons bien reçu votre candidature au poste de %s.", jobTitle),
		"Votre dossier va être étudié par nos équipes. Vous serez informé(e) de chaque étape du processus.",
	)
}

var verdictWording = map[synthesis.Verdict]string{
	synthesis.VerdictEmbauche:   "Nous avons le plaisir de vous annoncer que votre candidature a été retenue.",
	synthesis.VerdictIncubation: "Votre candidature a retenu notre attention et a été placée en incubation. Nous reviendrons vers vous prochainement.",
	synthesis.VerdictRefuse:     "Après étude attentive de votre dossier, nous ne pouvons pas donner une suite favorable à votre candidature.",
}

// StatusChanged informs the candidate of the final decision for jobTitle.
func StatusChanged(to Recipient, jobTitle string, verdict synthesis.Verdict) (Message, error) {
	wording, ok := verdictWording[verdict]
	if !ok {
		return Message{}, fmt.Errorf("unknown verdict %q", verdict)
	}
	return render(to,
		fmt.Sprintf("Suite de votre candidature : %s", jobTitle),
		fmt.Sprintf("Votre candidature au poste de %s a été examinée.", jobTitle),
		wording,
	)
}
