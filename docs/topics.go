// Package docs embeds the onyx help topics.
//
// readme.md is the index: every "* name: summary" line of it names a topic
// stored in name.md, in the order the topics are shown.
package docs

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

//go:embed *.md
var docs embed.FS

// Index is the topic listing every other topic.
const Index = "readme"

// Topic is an entry of the index.
type Topic struct {
	Name    string
	Summary string
}

var indexLine = regexp.MustCompile(`^\*\s+([^:]+):\s*(.*)$`)

// Topics returns the topics of the index, in index order.
func Topics() ([]Topic, error) {
	content, err := docs.ReadFile(Index + ".md")
	if err != nil {
		return nil, fmt.Errorf("cannot read the topic index: %w", err)
	}
	var topics []Topic
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		m := indexLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		topics = append(topics, Topic{Name: strings.TrimSpace(m[1]), Summary: strings.TrimSpace(m[2])})
	}
	return topics, scanner.Err()
}

// GetAllTopics returns the names of the indexed topics, in index order.
func GetAllTopics() ([]string, error) {
	topics, err := Topics()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Name
	}
	return names, nil
}

// GetTopic returns the content of a topic: the index, an indexed topic, or
// "*" for all indexed topics.
func GetTopic(topic string) (string, error) {
	return GetTopics(topic)
}

// GetTopics returns the content of the given topics, one after the other.
// Unknown topics are rejected with the list of the known ones.
func GetTopics(topics ...string) (string, error) {
	known, err := GetAllTopics()
	if err != nil {
		return "", err
	}
	var names []string
	for _, topic := range topics {
		switch {
		case topic == "*":
			names = append(names, known...)
		case topic == Index || slices.Contains(known, topic):
			names = append(names, topic)
		default:
			return "", fmt.Errorf("unknown topic %q, want one of: %s", topic, strings.Join(known, ", "))
		}
	}

	var b bytes.Buffer
	for _, name := range names {
		content, err := docs.ReadFile(name + ".md")
		if err != nil {
			return "", fmt.Errorf("topic %q is indexed but missing: %w", name, err)
		}
		b.Write(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}
