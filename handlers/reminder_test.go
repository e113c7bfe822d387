package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"assistente-tarefas/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Quarta-feira fixa para tornar os grupos determinísticos
var reminderNow = time.Date(2025, 7, 9, 15, 30, 0, 0, time.UTC)

func dueOn(day time.Time) string {
	return day.Format("2006-01-02") + " 23:59"
}

func TestBucketTasksBoundaries(t *testing.T) {
	today := time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		{ID: 1, Title: "Hoje", DueDate: dueOn(today)},
		{ID: 2, Title: "Amanhã", DueDate: dueOn(today.AddDate(0, 0, 1))},
		{ID: 3, Title: "Em três dias", DueDate: dueOn(today.AddDate(0, 0, 3))},
		{ID: 4, Title: "Em seis dias", DueDate: dueOn(today.AddDate(0, 0, 6))},
		{ID: 5, Title: "Em sete dias", DueDate: dueOn(today.AddDate(0, 0, 7))},
		{ID: 6, Title: "Ontem", DueDate: dueOn(today.AddDate(0, 0, -1))},
		{ID: 7, Title: "Sem data", DueDate: ""},
		{ID: 8, Title: "Data ilegível", DueDate: "soon"},
	}

	dueToday, dueTomorrow, upcoming := bucketTasks(tasks, reminderNow)

	require.Len(t, dueToday, 1)
	assert.Equal(t, 1, dueToday[0].ID)
	require.Len(t, dueTomorrow, 1)
	assert.Equal(t, 2, dueTomorrow[0].ID)
	// O dia 7 exato fica fora de todos os grupos, assim como o passado
	require.Len(t, upcoming, 2)
	assert.Equal(t, 3, upcoming[0].ID)
	assert.Equal(t, 4, upcoming[1].ID)
}

func TestBuildDigestSectionsAndNames(t *testing.T) {
	today := time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)
	d := dispatchWith(&fakeStore{}, fakeOracle{})
	d.SetUserDirectory(fakeDirectory{"99": "Alice"})
	scanner := NewReminderScanner(d, nil, 0)

	tasks := []models.Task{
		{ID: 1, Title: "Report", DueDate: dueOn(today), AssigneeID: "99"},
		{ID: 2, Title: "Slides", DueDate: dueOn(today.AddDate(0, 0, 3))},
	}

	digest := scanner.buildDigest(context.Background(), tasks, reminderNow)

	assert.Contains(t, digest, "**📅 Weekly Task Reminders!**")
	assert.Contains(t, digest, "**🔥 Due Today:**")
	assert.Contains(t, digest, "**🗓️ Upcoming (Next 7 Days):**")
	assert.NotContains(t, digest, "**⏰ Due Tomorrow:**")
	assert.Contains(t, digest, "- **ID 1:** Report")
	assert.Contains(t, digest, "(Assigned: Alice)")
	assert.Contains(t, digest, "- **ID 2:** Slides")
}

func TestBuildDigestEmptyWhenNothingFits(t *testing.T) {
	d := dispatchWith(&fakeStore{}, fakeOracle{})
	scanner := NewReminderScanner(d, nil, 0)

	tasks := []models.Task{{ID: 1, Title: "Longe", DueDate: "2030-01-01 23:59"}}

	assert.Empty(t, scanner.buildDigest(context.Background(), tasks, reminderNow))
}

func TestScanOnceSendsDigest(t *testing.T) {
	today := time.Now().UTC().Format("2006-01-02")
	store := &fakeStore{tasks: []models.Task{
		{ID: 1, Title: "Report", Status: models.StatusPending, DueDate: today + " 23:59"},
	}}
	d := dispatchWith(store, fakeOracle{})
	var sent []string
	scanner := NewReminderScanner(d, func(text string) error {
		sent = append(sent, text)
		return nil
	}, 0)

	scanner.scanOnce(context.Background())

	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "**🔥 Due Today:**")
	assert.Contains(t, sent[0], "Report")
}

func TestScanOnceTruncatesLongDigest(t *testing.T) {
	today := time.Now().UTC().Format("2006-01-02")
	store := &fakeStore{}
	for i := 1; i <= 60; i++ {
		store.tasks = append(store.tasks, models.Task{
			ID:      i,
			Title:   fmt.Sprintf("Tarefa com título bastante comprido número %03d", i),
			Status:  models.StatusPending,
			DueDate: today + " 23:59",
		})
	}
	d := dispatchWith(store, fakeOracle{})
	var sent []string
	scanner := NewReminderScanner(d, func(text string) error {
		sent = append(sent, text)
		return nil
	}, 0)

	scanner.scanOnce(context.Background())

	require.Len(t, sent, 1)
	assert.LessOrEqual(t, len(sent[0]), maxMessageLen)
	assert.True(t, strings.HasSuffix(sent[0], "...(truncated)"))
}

func TestScanOnceReportsReadFailure(t *testing.T) {
	store := &fakeStore{readErr: errors.New("planilha fora do ar")}
	d := dispatchWith(store, fakeOracle{})
	var sent []string
	scanner := NewReminderScanner(d, func(text string) error {
		sent = append(sent, text)
		return nil
	}, 0)

	scanner.scanOnce(context.Background())

	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "⚠️ Error encountered while generating task reminders")
}

func TestScanOnceWithoutSendIsNoop(t *testing.T) {
	d := dispatchWith(&fakeStore{}, fakeOracle{})
	scanner := NewReminderScanner(d, nil, 0)

	assert.NotPanics(t, func() { scanner.scanOnce(context.Background()) })
}

func TestNewReminderScannerDefaultInterval(t *testing.T) {
	d := dispatchWith(&fakeStore{}, fakeOracle{})

	assert.Equal(t, defaultReminderInterval, NewReminderScanner(d, nil, 0).interval)
	assert.Equal(t, time.Hour, NewReminderScanner(d, nil, time.Hour).interval)
}
