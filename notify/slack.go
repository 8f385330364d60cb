package notify

import (
	"fmt"

	"github.com/slack-go/slack"
)

// slackTexts are the per-template message headlines posted to the
// maintenance channel.
var slackTexts = map[string]string{
	TemplateOrderCreated:             "Nova solicitação de serviço aberta",
	TemplateSafetyReviewRequested:    "OSSM aguardando validação de segurança (CIPA)",
	TemplateLabEvaluationRequested:   "OSSM aguardando avaliação do laboratório",
	TemplateExecutionReady:           "OSSM liberada para execução do serviço",
	TemplateLabReevaluationRequested: "OSSM aguardando reavaliação do laboratório",
	TemplateOrderClosed:              "OSSM finalizada",
	TemplateOrderRejected:            "Solicitação de serviço reprovada",
}

// SlackNotifier posts one webhook message per transition to the team
// channel. It complements the direct mail scripts rather than replacing
// them.
type SlackNotifier struct {
	WebhookURL string

	// post is swappable in tests.
	post func(url string, msg *slack.WebhookMessage) error
}

// NewSlackNotifier creates a SlackNotifier for the given webhook URL.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{WebhookURL: webhookURL, post: slack.PostWebhook}
}

// Notify posts the transition message and who was mailed about it.
func (s *SlackNotifier) Notify(template string, orderID int64, recipients []string) error {
	text, ok := slackTexts[template]
	if !ok {
		text = "Atualização de ordem de serviço"
	}

	msg := &slack.WebhookMessage{
		Attachments: []slack.Attachment{{
			Title: fmt.Sprintf("%s (ordem #%d)", text, orderID),
			Fields: []slack.AttachmentField{
				{Title: "Ordem", Value: fmt.Sprintf("#%d", orderID), Short: true},
				{Title: "Notificados", Value: fmt.Sprintf("%d destinatário(s)", len(recipients)), Short: true},
			},
		}},
	}

	if err := s.post(s.WebhookURL, msg); err != nil {
		return fmt.Errorf("posting slack webhook: %w", err)
	}
	return nil
}
