package wrapped

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var photoExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
	".heic": true, ".heif": true, ".bmp": true, ".tif": true, ".tiff": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".m4v": true, ".avi": true,
	".mkv": true, ".webm": true, ".3gp": true,
}

var audioExts = map[string]bool{
	".mp3": true, ".m4a": true, ".aac": true, ".ogg": true,
	".opus": true, ".wav": true, ".flac": true,
}

// Messenger writes automated notices ("X set the nickname...", theme changes)
// into the same messages array as real texts. They carry the sender's name but
// are not conversation, so the loader drops them.
var systemNickMarkers = []string{"ustawil", "ustawila", "ustawiono"}

// Markers of UTF-8 text that was decoded once too often on the way out of the
// export (Messenger dumps are notorious for this).
var mojibakeMarkers = []string{
	"Ã", "Å", "Â", "Ð",
	"Ñ", "â", "‚", "�",
}

type rawMediaItem struct {
	URI string
}

func (m *rawMediaItem) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		m.URI = s
		return nil
	}
	var obj struct {
		URI    string `json:"uri"`
		URIAlt string `json:"URI"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		// Unknown media shapes are skipped, not fatal.
		return nil
	}
	m.URI = obj.URI
	if m.URI == "" {
		m.URI = obj.URIAlt
	}
	return nil
}

type rawMessage struct {
	SenderName    string            `json:"sender_name"`
	SenderNameAlt string            `json:"senderName"`
	TimestampMS   *json.Number      `json:"timestamp_ms"`
	Timestamp     *json.Number      `json:"timestamp"`
	Content       *string           `json:"content"`
	Text          *string           `json:"text"`
	Photos        []json.RawMessage `json:"photos"`
	Videos        []json.RawMessage `json:"videos"`
	AudioFiles    []json.RawMessage `json:"audio_files"`
	AudioFilesAlt []json.RawMessage `json:"audioFiles"`
	GIFs          []json.RawMessage `json:"gifs"`
	Files         []json.RawMessage `json:"files"`
	Media         []rawMediaItem    `json:"media"`
}

// LoadMessages reads a single DM export and returns the message sequence plus
// the number of entries skipped as malformed or automated system notices.
//
// The export is expected to be a JSON object with a "messages" (or "Messages")
// array; the decoder streams the array so a multi-year history never has to be
// resident twice.
func LoadMessages(path string) ([]Message, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("LoadMessages: open input: %w", err)
	}
	defer f.Close()

	// Exports are often one huge line; use a larger buffer than default.
	dec := json.NewDecoder(bufio.NewReaderSize(f, 1<<20))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, 0, fmt.Errorf("LoadMessages: read first token: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, 0, fmt.Errorf("LoadMessages: expected top-level JSON object, got %v", tok)
	}

	var messages []Message
	skipped := 0
	foundArray := false

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, 0, fmt.Errorf("LoadMessages: read object key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, 0, fmt.Errorf("LoadMessages: expected string key, got %T", keyTok)
		}

		if !foundArray && (key == "messages" || key == "Messages") {
			tok, err := dec.Token()
			if err != nil {
				return nil, 0, fmt.Errorf("LoadMessages: read %q value: %w", key, err)
			}
			if d, ok := tok.(json.Delim); !ok || d != '[' {
				return nil, 0, fmt.Errorf("LoadMessages: %q must be an array", key)
			}
			foundArray = true
			for dec.More() {
				var raw rawMessage
				if err := dec.Decode(&raw); err != nil {
					return nil, 0, fmt.Errorf("LoadMessages: decode message entry: %w", err)
				}
				msg, ok := fromRaw(raw)
				if !ok {
					skipped++
					continue
				}
				messages = append(messages, msg)
			}
			if tok, err := dec.Token(); err != nil {
				return nil, 0, fmt.Errorf("LoadMessages: read closing array token: %w", err)
			} else if d, ok := tok.(json.Delim); !ok || d != ']' {
				return nil, 0, fmt.Errorf("LoadMessages: expected closing ']', got %v", tok)
			}
			continue
		}

		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			return nil, 0, fmt.Errorf("LoadMessages: skip key %q value: %w", key, err)
		}
	}

	if !foundArray {
		return nil, 0, errors.New("LoadMessages: input JSON must contain a 'messages' array")
	}
	return messages, skipped, nil
}

func fromRaw(raw rawMessage) (Message, bool) {
	num := raw.TimestampMS
	if num == nil {
		num = raw.Timestamp
	}
	if num == nil {
		return Message{}, false
	}
	ts, err := num.Int64()
	if err != nil {
		return Message{}, false
	}

	sender := strings.TrimSpace(raw.SenderName)
	if sender == "" {
		sender = strings.TrimSpace(raw.SenderNameAlt)
	}
	if sender == "" {
		sender = "Unknown"
	} else {
		sender = maybeFixMojibake(sender)
	}

	content := raw.Content
	if content == nil {
		content = raw.Text
	}
	text := ""
	if content != nil {
		text = maybeFixMojibake(*content)
		if isIgnoredSystemMessage(text) {
			return Message{}, false
		}
	}

	msg := Message{
		Sender:      sender,
		TimestampMS: ts,
		Text:        text,
		Photos:      len(raw.Photos),
		Videos:      len(raw.Videos),
		Audio:       len(raw.AudioFiles) + len(raw.AudioFilesAlt),
		GIFs:        len(raw.GIFs),
		Files:       len(raw.Files),
	}
	for _, item := range raw.Media {
		if item.URI == "" {
			continue
		}
		switch ext := strings.ToLower(filepath.Ext(item.URI)); {
		case photoExts[ext]:
			msg.Photos++
		case videoExts[ext]:
			msg.Videos++
		case audioExts[ext]:
			msg.Audio++
		}
	}
	return msg, true
}

func isIgnoredSystemMessage(content string) bool {
	normalized := normalizeForMatch(content)
	if strings.Contains(normalized, "motyw") {
		return true
	}
	if !strings.Contains(normalized, "nick") {
		return false
	}
	for _, marker := range systemNickMarkers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}

// maybeFixMojibake re-encodes suspicious text through latin-1 and cp1252 and
// keeps whichever round trip leaves the fewest mojibake markers behind.
func maybeFixMojibake(text string) string {
	count := countMojibakeMarkers(text)
	if count == 0 {
		return text
	}
	best, bestScore := text, count
	for _, enc := range []encoding.Encoding{charmap.ISO8859_1, charmap.Windows1252} {
		encoded, err := enc.NewEncoder().String(text)
		if err != nil {
			continue
		}
		if !utf8.ValidString(encoded) {
			continue
		}
		if score := countMojibakeMarkers(encoded); score < bestScore {
			best, bestScore = encoded, score
		}
	}
	return best
}

func countMojibakeMarkers(text string) int {
	total := 0
	for _, marker := range mojibakeMarkers {
		total += strings.Count(text, marker)
	}
	return total
}
