package stats

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"chatstats-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC)
}

func TestByDate(t *testing.T) {
	snapshot := []models.Message{
		models.NewGreeting(day(1)),
		models.NewUserMessage("a", day(1)),
		models.NewAssistantMessage("b", day(1)),
		models.NewUserMessage("c", day(2)),
		models.NewAssistantMessage("d", day(2)),
		models.NewUserMessage("e", day(4)),
	}

	got := ByDate(snapshot)
	assert.Equal(t, Counts{
		{Name: "2024-03-01", Value: 3},
		{Name: "2024-03-02", Value: 2},
		{Name: "2024-03-04", Value: 1},
	}, got)
}

func TestBySender(t *testing.T) {
	snapshot := []models.Message{
		models.NewGreeting(day(1)),
		models.NewUserMessage("a", day(1)),
		models.NewAssistantMessage("b", day(1)),
		models.NewUserMessage("c", day(2)),
	}

	got := BySender(snapshot)
	assert.Equal(t, Counts{
		{Name: models.SenderAssistant, Value: 2},
		{Name: models.SenderUser, Value: 2},
	}, got)
}

func TestCounts_KeysFollowFirstSeenOrder(t *testing.T) {
	snapshot := []models.Message{
		models.NewUserMessage("late", day(9)),
		models.NewUserMessage("early", day(3)),
		models.NewUserMessage("late again", day(9)),
	}

	got := ByDate(snapshot)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-03-09", got[0].Name)
	assert.Equal(t, "2024-03-03", got[1].Name)
}

func TestCounts_Empty(t *testing.T) {
	assert.Empty(t, ByDate(nil))
	assert.Empty(t, BySender([]models.Message{}))
	assert.Zero(t, ByDate(nil).Total())
}

func TestCounts_SumMatchesSnapshotLength(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for n := 0; n < 50; n++ {
		snapshot := make([]models.Message, 0, n)
		for i := 0; i < n; i++ {
			when := day(1 + rng.Intn(5))
			if rng.Intn(2) == 0 {
				snapshot = append(snapshot, models.NewUserMessage("u", when))
			} else {
				snapshot = append(snapshot, models.NewAssistantMessage("a", when))
			}
		}

		byDate := ByDate(snapshot)
		bySender := BySender(snapshot)
		assert.Equal(t, n, byDate.Total(), "by-date sum for n=%d", n)
		assert.Equal(t, n, bySender.Total(), "by-sender sum for n=%d", n)
		for _, p := range append(byDate, bySender...) {
			assert.GreaterOrEqual(t, p.Value, 1)
		}
	}
}

func TestCounts_Map(t *testing.T) {
	c := Counts{{Name: "user", Value: 3}, {Name: "ChatGPT", Value: 4}}
	assert.Equal(t, map[string]int{"user": 3, "ChatGPT": 4}, c.Map())
}

func TestPieSlices_CyclesPalette(t *testing.T) {
	c := make(Counts, 0, 6)
	for i := 0; i < 6; i++ {
		c = append(c, Point{Name: fmt.Sprintf("s%d", i), Value: i + 1})
	}

	got := PieSlices(c)
	require.Len(t, got, 6)
	assert.Equal(t, "#0088FE", got[0].Color)
	assert.Equal(t, "#FF8042", got[3].Color)
	assert.Equal(t, "#0088FE", got[4].Color)
	assert.Equal(t, "s5", got[5].Name)
	assert.Equal(t, 6, got[5].Value)
}

func ExampleBySender() {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	log := []models.Message{
		models.NewGreeting(now),
		models.NewUserMessage("What is a goroutine?", now),
		models.NewAssistantMessage("A lightweight thread managed by the Go runtime.", now),
	}

	for _, p := range BySender(log) {
		fmt.Printf("%s=%d\n", p.Name, p.Value)
	}
	// Output:
	// ChatGPT=2
	// user=1
}
