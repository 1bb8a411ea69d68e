package model

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordWireFormat(t *testing.T) {
	e := validEvent()
	e.Subtype = SubtypeNone

	data, err := sonic.Marshal(e.ToRecord())
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, sonic.Unmarshal(data, &raw))
	assert.Equal(t, "AH", raw["subjectId"])
	assert.Equal(t, "mass", raw["dosageUnit"])
	assert.Nil(t, raw["subtype"])
	assert.Nil(t, raw["updatedAt"])
	assert.Contains(t, raw, "createdAt")
}

func TestRecordToEvent(t *testing.T) {
	subtype := "iv"
	updated := baseTime.Add(time.Minute)
	rec := IntakeRecord{
		ID:           "r1",
		SubjectID:    "EI",
		DosageAmount: 1.5,
		DosageUnit:   "volume",
		Subtype:      &subtype,
		Timestamp:    baseTime,
		CreatedAt:    baseTime,
		UpdatedAt:    &updated,
	}

	e, err := rec.ToEvent()
	require.NoError(t, err)
	assert.Equal(t, SubjectB, e.Subject)
	assert.Equal(t, UnitVolume, e.DosageUnit)
	assert.Equal(t, SubtypeIV, e.Subtype)
	assert.Equal(t, &updated, e.UpdatedAt)

	rec.SubjectID = "??"
	_, err = rec.ToEvent()
	assert.True(t, IsValidationError(err))

	rec.SubjectID = "EI"
	rec.DosageAmount = -1
	_, err = rec.ToEvent()
	assert.True(t, IsValidationError(err))
}
