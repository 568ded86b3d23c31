package gateway

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// wordDecoder decodes RFC 2047 encoded-words in headers, resolving legacy
// charsets through x/text
var wordDecoder = mime.WordDecoder{CharsetReader: charsetReader}

// charsetReader resolves a charset label to a decoding reader
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, err
	}
	return enc.NewDecoder().Reader(input), nil
}

// DecodeSubject decodes an RFC 2047 encoded Subject header, falling back to
// the raw value when decoding fails
func DecodeSubject(raw string) string {
	decoded, err := wordDecoder.DecodeHeader(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ExtractText pulls the plain text content out of an email message. For
// multipart messages it prefers text/plain parts; anything else falls back
// to the raw body.
func ExtractText(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")

	if !strings.Contains(strings.ToLower(contentType), "multipart/") {
		return decodeBody(msg.Body, contentType)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		bodyBytes, readErr := io.ReadAll(msg.Body)
		if readErr != nil {
			return "", readErr
		}
		return string(bodyBytes), nil
	}

	boundary := params["boundary"]
	if boundary == "" {
		bodyBytes, readErr := io.ReadAll(msg.Body)
		if readErr != nil {
			return "", readErr
		}
		return string(bodyBytes), nil
	}

	var textParts []string
	reader := multipart.NewReader(msg.Body, boundary)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		partType := part.Header.Get("Content-Type")
		if partType == "" || strings.Contains(strings.ToLower(partType), "text/plain") {
			text, err := decodeBody(part, partType)
			if err == nil && text != "" {
				textParts = append(textParts, text)
			}
		}
	}

	if len(textParts) == 0 {
		return "", nil
	}
	return strings.Join(textParts, "\n"), nil
}

// decodeBody reads a body and converts legacy charsets to UTF-8
func decodeBody(body io.Reader, contentType string) (string, error) {
	charset := ""
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil {
			charset = params["charset"]
		}
	}

	if charset != "" && !strings.EqualFold(charset, "utf-8") && !strings.EqualFold(charset, "us-ascii") {
		if decoded, err := charsetReader(charset, body); err == nil {
			body = decoded
		}
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}
	return buf.String(), nil
}
