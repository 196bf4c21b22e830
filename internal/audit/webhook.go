package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// WebhookObserver дублирует контрольные точки во внешний приёмник аудита.
// Поля проходят ту же маскировку, что и лог; ошибки доставки не влияют
// на сам OAuth-поток
type WebhookObserver struct {
	url    string
	client *http.Client
}

func NewWebhookObserver(url string, timeout time.Duration) *WebhookObserver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookObserver{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type webhookEvent struct {
	RequestID string            `json:"request_id,omitempty"`
	Title     string            `json:"title"`
	Fields    map[string]string `json:"fields,omitempty"`
	At        time.Time         `json:"at"`
}

func (o *WebhookObserver) Step(requestID, title string, fields map[string]string) {
	masked := make(map[string]string, len(fields))
	for key, value := range fields {
		safe, ok := safeValue(key, value)
		if !ok || safe == "" {
			continue
		}
		masked[key] = safe
	}

	event := webhookEvent{
		RequestID: requestID,
		Title:     title,
		Fields:    masked,
		At:        time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("ошибка сериализации аудит-события: %v", err)
		return
	}

	resp, err := o.client.Post(o.url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("ошибка отправки аудит-события на webhook: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("%v", fmt.Errorf("webhook ответил статусом %d", resp.StatusCode))
	}
}
