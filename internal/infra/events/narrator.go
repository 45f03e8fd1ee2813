package events

import "github.com/cineflixpay/ashley-assistant-go/internal/domain"

// Parâmetros de voz da Ashley. O cliente alimenta isso direto na API de
// síntese de fala do dispositivo.
const (
	speechLang  = "pt-BR"
	speechRate  = 0.95
	speechPitch = 1.2
)

// SpeechNarrator emits speak events on the session stream so the client
// can voice the bot's messages. Best-effort by design: no delivery
// guarantee and no error surface.
type SpeechNarrator struct {
	broker  *Broker
	enabled bool
}

// NewSpeechNarrator creates a narrator. With enabled=false every Speak
// call is a silent no-op.
func NewSpeechNarrator(broker *Broker, enabled bool) *SpeechNarrator {
	return &SpeechNarrator{broker: broker, enabled: enabled}
}

// Speak publishes a speak event for the session. Texto vazio é ignorado.
func (n *SpeechNarrator) Speak(sessionID, text string) {
	if !n.enabled || text == "" {
		return
	}
	n.broker.Publish(sessionID, domain.Event{
		Type: domain.EventSpeak,
		Speech: &domain.Speech{
			Text:  text,
			Lang:  speechLang,
			Rate:  speechRate,
			Pitch: speechPitch,
		},
	})
}
