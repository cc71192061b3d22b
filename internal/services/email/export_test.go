// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import "github.com/wneessen/go-mail"

func (s *Service) BuildMessage(to, subject, body string) (*mail.Msg, error) {
	return s.buildMessage(to, subject, body)
}

func (s *Service) ClientOptionCount() int {
	return len(s.clientOptions())
}
