package imapbox

import (
	"bytes"
	"io"
	"mime"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/mikey/mail-agent/internal/core"
)

func messageFromBuffer(buf *imapclient.FetchMessageBuffer, bodySection *imap.FetchItemBodySection) core.Message {
	msg := core.Message{UID: uint32(buf.UID)}

	if buf.Envelope != nil {
		msg.Subject = buf.Envelope.Subject
		msg.Date = buf.Envelope.Date
		if len(buf.Envelope.From) > 0 {
			msg.From = buf.Envelope.From[0].Addr()
		}
	}

	for _, flag := range buf.Flags {
		msg.Flags = append(msg.Flags, string(flag))
		if flag == imap.FlagSeen {
			msg.Seen = true
		}
	}

	raw := buf.FindBodySection(bodySection)
	if len(raw) > 0 {
		msg.TextBody, msg.HTMLBody = parseBodies(raw)
		if msg.TextBody == "" && msg.HTMLBody != "" {
			if converted, err := htmltomarkdown.ConvertString(msg.HTMLBody); err == nil {
				msg.TextBody = strings.TrimSpace(converted)
			}
		}
	}

	return msg
}

// parseBodies walks the MIME tree and collects the plain-text and HTML
// parts. Attachments are skipped; only inline text ends up in the
// message body.
func parseBodies(raw []byte) (textBody, htmlBody string) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		// Not a parseable MIME message, treat the raw payload as text
		return string(raw), ""
	}

	var text, html strings.Builder
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		mediaType, _, err := mime.ParseMediaType(header.Get("Content-Type"))
		if err != nil {
			mediaType = "text/plain"
		}

		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		switch mediaType {
		case "text/html":
			html.Write(body)
		default:
			text.Write(body)
		}
	}

	return strings.TrimSpace(text.String()), strings.TrimSpace(html.String())
}
