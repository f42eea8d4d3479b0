// Package stats derives the chart series shown next to the conversation.
//
// Both groupings are recomputed from a conversation snapshot on every call.
// Keys keep the order in which they were first seen in the log, so a chart
// renders dates chronologically as long as messages are appended in time order.
package stats

import "chatstats-backend/internal/models"

// Point is a single named value of a chart series.
type Point struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Counts is an ordered series of per-key message counts. Every Value is >= 1.
type Counts []Point

// Total returns the sum of all values.
func (c Counts) Total() int {
	total := 0
	for _, p := range c {
		total += p.Value
	}
	return total
}

// Map returns the counts keyed by name.
func (c Counts) Map() map[string]int {
	m := make(map[string]int, len(c))
	for _, p := range c {
		m[p.Name] = p.Value
	}
	return m
}

// ByDate counts messages per SentAt date.
func ByDate(snapshot []models.Message) Counts {
	return countBy(snapshot, func(m models.Message) string { return m.SentAt })
}

// BySender counts messages per sender label.
func BySender(snapshot []models.Message) Counts {
	return countBy(snapshot, func(m models.Message) string { return m.Sender })
}

func countBy(snapshot []models.Message, key func(models.Message) string) Counts {
	index := make(map[string]int)
	counts := make(Counts, 0)
	for _, msg := range snapshot {
		k := key(msg)
		if i, ok := index[k]; ok {
			counts[i].Value++
			continue
		}
		index[k] = len(counts)
		counts = append(counts, Point{Name: k, Value: 1})
	}
	return counts
}
