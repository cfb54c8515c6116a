package gopher

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Item is one directory entry in the JSON menu payload
type Item struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Hostname string `json:"hostname"`
	Port     int    `json:"port"`
	Selector string `json:"selector"`
}

// Menu is the JSON menu payload handed to the content dispatcher
type Menu struct {
	Items []Item `json:"items"`
}

// ParseMenu decodes an RFC 1436 directory listing. Parsing is lenient:
// lines without tabs become info lines and a bad port is left as zero.
func ParseMenu(data []byte) Menu {
	menu := Menu{Items: []Item{}}
	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimRight(raw, "\r")
		if line == "." {
			break
		}
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if fields[0] == "" {
			// no type tag to dispatch on
			continue
		}
		if len(fields) < 2 {
			name := line
			if line[0] == 'i' {
				name = line[1:]
			}
			menu.Items = append(menu.Items, Item{Type: "i", Name: name})
			continue
		}

		item := Item{
			Type:     line[:1],
			Name:     fields[0][1:],
			Selector: fields[1],
		}
		if len(fields) > 2 {
			item.Hostname = fields[2]
		}
		if len(fields) > 3 {
			item.Port, _ = strconv.Atoi(strings.TrimSpace(fields[3]))
		}
		menu.Items = append(menu.Items, item)
	}
	return menu
}

// EncodeMenu renders the JSON menu payload
func EncodeMenu(m Menu) ([]byte, error) {
	return json.Marshal(m)
}

// UnstuffText strips the lone-dot terminator and undoes dot-stuffing of
// a text item. Line endings are preserved.
func UnstuffText(data []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(data))
	for _, line := range bytes.SplitAfter(data, []byte("\n")) {
		if string(bytes.TrimRight(line, "\r\n")) == "." {
			break
		}
		if bytes.HasPrefix(line, []byte("..")) {
			line = line[1:]
		}
		out.Write(line)
	}
	return out.Bytes()
}
