package client

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/teamboard/internal/api"
	"github.com/stretchr/testify/assert"
)

func TestTaskFromAPI_KeepsDueDay(t *testing.T) {
	edt := time.FixedZone("EDT", -4*60*60)
	orig := dueDateLocation
	dueDateLocation = edt
	t.Cleanup(func() { dueDateLocation = orig })

	// date columns decode as UTC midnight
	task := taskFromAPI(&api.Task{ID: "t1", Title: "Report", DueDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)})

	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, edt), task.DueDate)
}
