package hl7v2

import (
	"strings"
	"time"
)

// AckCode is the MSA-1 acknowledgment code.
type AckCode string

const (
	AckAccept AckCode = "AA"
	AckError  AckCode = "AE"
	AckReject AckCode = "AR"
)

const hl7Stamp = "20060102150405"

// Acknowledge renders the original-mode ACK for msg using the delimiters msg
// declared. Sender and receiver are swapped, MSA-2 echoes the control id and
// a non-empty text is escaped into MSA-3.
func Acknowledge(msg *Message, code AckCode, text string, now time.Time) []byte {
	seps := msg.Separators
	now = now.UTC()

	ackType := "ACK"
	if trigger := msg.Trigger(); trigger != "" {
		ackType += seps.Component + trigger
	}
	processing := "P"
	if msh := msg.GetSegment("MSH"); msh != nil && msh.GetField(11) != "" {
		processing = msh.GetField(11)
	}

	msh := strings.Join([]string{
		"MSH",
		seps.Component + seps.Repetition + seps.Escape + seps.SubComponent,
		msg.ReceivingApp, msg.ReceivingFac,
		msg.SendingApp, msg.SendingFac,
		now.Format(hl7Stamp),
		"",
		ackType,
		"ACK" + now.Format(hl7Stamp+".000"),
		processing,
		msg.Version,
	}, seps.Field)

	msa := []string{"MSA", string(code), msg.ControlID}
	if text != "" {
		msa = append(msa, escapeText(text, seps))
	}
	return []byte(msh + "\r" + strings.Join(msa, seps.Field))
}

// escapeText applies the HL7 \F\ \S\ \R\ \T\ \E\ escapes so text can sit in
// a single field.
func escapeText(text string, seps Separators) string {
	esc := seps.Escape
	var b strings.Builder
	for _, r := range text {
		switch c := string(r); c {
		case esc:
			b.WriteString(esc + "E" + esc)
		case seps.Field:
			b.WriteString(esc + "F" + esc)
		case seps.Component:
			b.WriteString(esc + "S" + esc)
		case seps.Repetition:
			b.WriteString(esc + "R" + esc)
		case seps.SubComponent:
			b.WriteString(esc + "T" + esc)
		case "\r", "\n":
			b.WriteByte(' ')
		default:
			b.WriteString(c)
		}
	}
	return b.String()
}
