// Package ui — интерфейс взаимодействия с пользователем, потребляемый
// сервисами клиента. Фатальные ошибки показываются блокирующим alert,
// временные — ненавязчивым feedback, потому что операция повторится сама.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// UI — коллаборатор пользовательского интерфейса.
type UI interface {
	// Alert показывает блокирующее сообщение об ошибке.
	Alert(msg string)
	// Confirm задаёт вопрос да/нет и возвращает выбор пользователя.
	Confirm(msg string) bool
	// Feedback показывает неблокирующее уведомление на durationSeconds секунд.
	Feedback(msg string, durationSeconds int)
}

// Console — консольная реализация UI для CLI.
type Console struct {
	Out io.Writer
	In  io.Reader
}

var _ UI = (*Console)(nil)

// NewConsole создаёт консольный UI поверх стандартных потоков.
func NewConsole() *Console {
	return &Console{Out: os.Stdout, In: os.Stdin}
}

func (c *Console) Alert(msg string) {
	fmt.Fprintf(c.Out, "! %s\n", msg)
}

func (c *Console) Confirm(msg string) bool {
	fmt.Fprintf(c.Out, "%s [y/N]: ", msg)
	r := bufio.NewReader(c.In)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func (c *Console) Feedback(msg string, _ int) {
	fmt.Fprintf(c.Out, "→ %s\n", msg)
}

// Silent — реализация UI, молча собирающая сообщения; используется в тестах
// и при фоновом запуске без терминала.
type Silent struct {
	Alerts    []string
	Feedbacks []string
	// ConfirmAnswer возвращается из Confirm.
	ConfirmAnswer bool
}

var _ UI = (*Silent)(nil)

func (s *Silent) Alert(msg string)           { s.Alerts = append(s.Alerts, msg) }
func (s *Silent) Confirm(msg string) bool    { return s.ConfirmAnswer }
func (s *Silent) Feedback(msg string, _ int) { s.Feedbacks = append(s.Feedbacks, msg) }
