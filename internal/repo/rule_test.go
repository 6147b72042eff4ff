package repo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleList_ScansTimeColumns(t *testing.T) {
	c, mock := newMockClient(t)
	mentor := uuid.New()

	// lib/pq decodes "time" columns into time.Time on 0000-01-01.
	nine := time.Date(0, 1, 1, 9, 0, 0, 0, time.UTC)
	// The active filter is rendered as a bare boolean column, not a placeholder.
	mock.ExpectQuery(`FROM "availability_rules" WHERE .*"is_active"`).
		WithArgs(mentor).
		WillReturnRows(sqlmock.NewRows(ruleColumns).
			AddRow(uuid.New(), mentor, 0, nine, []byte("10:30:00"), 30, "Asia/Bangkok", true, fixedNow, fixedNow))

	rules, err := c.Rules.List(context.Background(), mentor, true)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, TimeOfDay{Hour: 9}, rules[0].StartTime)
	assert.Equal(t, TimeOfDay{Hour: 10, Minute: 30}, rules[0].EndTime)
}

func TestRuleDelete_NotOwned(t *testing.T) {
	c, mock := newMockClient(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "availability_rules"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := c.Rules.Delete(context.Background(), uuid.New(), uuid.New())
	assert.True(t, IsNotFound(err))
}

func TestRuleCreate(t *testing.T) {
	c, mock := newMockClient(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "availability_rules"`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 0, "09:00:00", "10:00:00", 30, "UTC", true, fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := &AvailabilityRule{
		MentorID:            uuid.New(),
		StartTime:           TimeOfDay{Hour: 9},
		EndTime:             TimeOfDay{Hour: 10},
		SlotDurationMinutes: 30,
		Timezone:            "UTC",
		IsActive:            true,
	}
	require.NoError(t, c.Rules.Create(context.Background(), r))
	assert.NotEqual(t, uuid.Nil, r.ID)
}
