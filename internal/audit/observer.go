// Package audit — структурированный аудит-лог OAuth-обмена.
// Сервис дергает наблюдателя в контрольных точках; значения с секретами
// маскируются до эмиссии, полные токены в лог не попадают никогда.
package audit

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// Observer вызывается Session Manager'ом в контрольных точках потока.
// requestID может быть пустым, fields — произвольные метаданные шага
type Observer interface {
	Step(requestID, title string, fields map[string]string)
}

// ключи, значения которых не эмитятся вовсе
var droppedKeys = map[string]bool{
	"client_secret": true,
	"access_token":  true,
	"refresh_token": true,
	"private_key":   true,
}

// Mask сокращает чувствительное значение до вида "abcdef...wxyz"
func Mask(value string) string {
	const left, right = 6, 4
	if len(value) <= left+right {
		if value == "" {
			return ""
		}
		return value[:1] + "..."
	}
	return value[:left] + "..." + value[len(value)-right:]
}

func safeValue(key, value string) (string, bool) {
	lower := strings.ToLower(key)
	if droppedKeys[lower] {
		return "", false
	}
	if lower == "token_len" || strings.HasSuffix(lower, "token_length") {
		return value, true
	}
	if strings.Contains(lower, "token") ||
		strings.Contains(lower, "code") ||
		strings.Contains(lower, "state") ||
		strings.Contains(lower, "client_id") {
		return Mask(value), true
	}
	return value, true
}

// LogObserver пишет шаги в общий лог процесса
type LogObserver struct{}

func NewLogObserver() *LogObserver {
	return &LogObserver{}
}

func (o *LogObserver) Step(requestID, title string, fields map[string]string) {
	rid := ""
	if requestID != "" {
		rid = fmt.Sprintf("[RID=%s]", requestID)
	}
	log.Printf("%s[OAUTH2] %s%s", rid, title, formatFields(fields))
}

func formatFields(fields map[string]string) string {
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		safe, ok := safeValue(key, fields[key])
		if !ok || safe == "" {
			continue
		}
		parts = append(parts, key+"="+safe)
	}

	if len(parts) == 0 {
		return ""
	}
	return " | " + strings.Join(parts, " ")
}

// NopObserver для тестов и отключённого аудита
type NopObserver struct{}

func (NopObserver) Step(string, string, map[string]string) {}

// MultiObserver рассылает шаг всем вложенным наблюдателям
type MultiObserver []Observer

func (m MultiObserver) Step(requestID, title string, fields map[string]string) {
	for _, observer := range m {
		observer.Step(requestID, title, fields)
	}
}
