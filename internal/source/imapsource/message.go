package imapsource

import (
	"bytes"
	"encoding/base64"
	"html"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"

	"outreach-engine/internal/domain"
)

type message struct {
	MessageID string
	From      string
	Subject   string
	Text      string
}

var reTags = regexp.MustCompile(`(?is)<[^>]+>`)

// parseMessage extracts the fields the pipeline needs from a raw RFC822
// message, preferring the plain-text MIME part and falling back to stripped
// HTML. Unparseable input degrades to treating the raw bytes as text.
func parseMessage(raw []byte, fallbackFrom, fallbackSubject string) message {
	out := message{From: fallbackFrom, Subject: fallbackSubject}
	if len(raw) == 0 {
		return out
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		out.Text = string(raw)
		out.MessageID = fingerprint(out)
		return out
	}

	h := msg.Header
	if id := strings.TrimSpace(h.Get("Message-Id")); id != "" {
		out.MessageID = id
	} else {
		out.MessageID = strings.TrimSpace(h.Get("Message-ID"))
	}
	if s := decodeRFC2047(h.Get("Subject")); s != "" {
		out.Subject = s
	}
	if f := decodeRFC2047(h.Get("From")); f != "" {
		out.From = f
	}

	body, _ := io.ReadAll(io.LimitReader(msg.Body, 6<<20))
	plain, htmlPart := textParts(h, body)

	switch {
	case strings.TrimSpace(plain) != "":
		out.Text = plain
	case strings.TrimSpace(htmlPart) != "":
		out.Text = htmlToText(htmlPart)
	default:
		out.Text = string(body)
	}

	if out.MessageID == "" {
		out.MessageID = fingerprint(out)
	}
	return out
}

func fingerprint(m message) string {
	head := m.Text
	if len(head) > 100 {
		head = head[:100]
	}
	return domain.StableID(domain.RawPost{Author: m.From, Content: m.Subject + " " + head})
}

// textParts walks the MIME tree and returns the longest text/plain and
// text/html parts found.
func textParts(h mail.Header, body []byte) (plain, htmlPart string) {
	ct := h.Get("Content-Type")
	cte := strings.ToLower(strings.TrimSpace(h.Get("Content-Transfer-Encoding")))

	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return string(decodeCTE(body, cte)), ""
	}
	mediaType = strings.ToLower(mediaType)

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return string(decodeCTE(body, cte)), ""
		}
		mr := multipart.NewReader(bytes.NewReader(body), boundary)

		var bestPlain, bestHTML string
		for {
			p, err := mr.NextPart()
			if err != nil {
				break
			}
			partCTE := strings.ToLower(strings.TrimSpace(p.Header.Get("Content-Transfer-Encoding")))
			pMedia, _, _ := mime.ParseMediaType(p.Header.Get("Content-Type"))
			pMedia = strings.ToLower(pMedia)

			b, _ := io.ReadAll(io.LimitReader(p, 6<<20))
			b = decodeCTE(b, partCTE)

			if strings.HasPrefix(pMedia, "multipart/") {
				pl, ht := textParts(mail.Header(p.Header), b)
				if len(pl) > len(bestPlain) {
					bestPlain = pl
				}
				if len(ht) > len(bestHTML) {
					bestHTML = ht
				}
				continue
			}

			switch {
			case strings.HasPrefix(pMedia, "text/plain"):
				if len(b) > len(bestPlain) {
					bestPlain = string(b)
				}
			case strings.HasPrefix(pMedia, "text/html"):
				if len(b) > len(bestHTML) {
					bestHTML = string(b)
				}
			}
		}
		return bestPlain, bestHTML
	}

	s := decodeCTE(body, cte)
	if strings.HasPrefix(mediaType, "text/html") {
		return "", string(s)
	}
	return string(s), ""
}

func decodeCTE(b []byte, cte string) []byte {
	switch cte {
	case "base64":
		dec := base64.NewDecoder(base64.StdEncoding, bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, 6<<20))
		return out
	case "quoted-printable":
		dec := quotedprintable.NewReader(bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, 6<<20))
		return out
	default:
		return b
	}
}

func decodeRFC2047(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	dec := new(mime.WordDecoder)
	out, err := dec.DecodeHeader(s)
	if err != nil {
		return s
	}
	return out
}

func htmlToText(s string) string {
	s = reTags.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
