// Package logger prints panel bus events as "[tag] detail" lines.
package logger

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"panelcode-go/bus"
)

var topicAll = bus.T("panel", "#")

type Service struct {
	W io.Writer

	// Heartbeat, when positive, adds an uptime line at that interval.
	Heartbeat time.Duration
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	sub := conn.Subscribe(topicAll)
	defer conn.Unsubscribe(sub)

	var tick <-chan time.Time
	if s.Heartbeat > 0 {
		t := time.NewTicker(s.Heartbeat)
		defer t.Stop()
		tick = t.C
	}
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			s.line("log", "stopping")
			return
		case t := <-tick:
			s.line("heartbeat", "up "+strconv.FormatInt(int64(t.Sub(start)/time.Second), 10)+"s")
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			s.write(msg)
		}
	}
}

// Start the logger service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}

func (s *Service) write(msg *bus.Message) {
	_, _ = io.WriteString(s.W, Line(msg)+"\n")
}

func (s *Service) line(tag, detail string) {
	_, _ = io.WriteString(s.W, "["+tag+"] "+detail+"\n")
}

// Line renders a bus message as "[tag] rest/of/topic payload", where tag is
// the second topic token.
func Line(msg *bus.Message) string {
	tag := "panel"
	var rest []string
	if msg.Topic.Len() > 1 {
		tag = msg.Topic.At(1)
		rest = msg.Topic[2:]
	}
	detail := strings.Join(rest, "/")
	if p := Format(msg.Payload); p != "" {
		if detail != "" {
			detail += " "
		}
		detail += p
	}
	return "[" + tag + "] " + detail
}

// Format renders a bus payload without reflection.
func Format(p any) string {
	switch v := p.(type) {
	case nil:
		return ""
	case interface{ String() string }:
		return v.String()
	case string:
		return v
	case error:
		return v.Error()
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	default:
		return "?"
	}
}
